package domain

import (
	"errors"
	"testing"
)

func TestCheckDimensions(t *testing.T) {
	tests := []struct {
		name    string
		vec     []float32
		dim     int
		wantErr bool
	}{
		{"exact", []float32{1, 2, 3}, 3, false},
		{"too short", []float32{1, 2}, 3, true},
		{"too long", []float32{1, 2, 3, 4}, 3, true},
		{"unchecked", []float32{1}, 0, false},
		{"empty vector", nil, 3, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckDimensions(tc.vec, tc.dim)
			if tc.wantErr {
				if !errors.Is(err, ErrVectorDimMismatch) {
					t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
