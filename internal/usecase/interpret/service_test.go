package interpret

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/metrics"
)

// --- Mocks ---

type mockText struct {
	reply            string
	err              error
	calls            int
	lastInstructions string
	lastText         string
}

func (m *mockText) Complete(_ context.Context, instructions, text string) (string, error) {
	m.calls++
	m.lastInstructions = instructions
	m.lastText = text
	return m.reply, m.err
}

type mockVocab struct {
	values map[string][]string
	err    error
	calls  int
}

func (m *mockVocab) ListDistinct(_ context.Context, field string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.values[field], nil
}

func newVocab() *mockVocab {
	return &mockVocab{values: map[string][]string{
		job.FieldJobCategory:  {"福祉専門職", "IT・エンジニア職"},
		job.FieldBusinessType: {"児童発達支援", "Webサービス"},
	}}
}

const rawQuery = "東京で年収800万以上のエンジニア"

// --- Tests ---

func TestInterpret_FullReply(t *testing.T) {
	text := &mockText{reply: `{"keyword":"エンジニア","filters":{"salary":800,"title":null,"job_category":null,"business_type":null,"location":"東京都","limit":null}}`}
	svc := New(text, newVocab(), zap.NewNop())

	res := svc.Interpret(context.Background(), rawQuery)

	if res.Keyword != "エンジニア" {
		t.Errorf("Keyword = %q", res.Keyword)
	}
	want := map[string]any{"salary": 800, "location": "東京都"}
	if got := res.Filters.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("Filters = %v, want %v", got, want)
	}
	if res.Degraded {
		t.Error("Degraded = true")
	}
	if text.lastText != rawQuery {
		t.Errorf("user text = %q", text.lastText)
	}
}

func TestInterpret_PromptCarriesSortedVocabulary(t *testing.T) {
	text := &mockText{reply: `{}`}
	New(text, newVocab(), nil).Interpret(context.Background(), rawQuery)

	if !strings.Contains(text.lastInstructions, "IT・エンジニア職, 福祉専門職") {
		t.Errorf("categories not sorted into prompt:\n%s", text.lastInstructions)
	}
	if !strings.Contains(text.lastInstructions, "Webサービス, 児童発達支援") {
		t.Errorf("business types not sorted into prompt:\n%s", text.lastInstructions)
	}
}

func TestInterpret_VocabularyFetchedEveryCall(t *testing.T) {
	vocab := newVocab()
	svc := New(&mockText{reply: `{}`}, vocab, nil)

	svc.Interpret(context.Background(), "a")
	svc.Interpret(context.Background(), "b")

	if vocab.calls != 4 {
		t.Errorf("expected 4 vocabulary lookups, got %d", vocab.calls)
	}
}

func TestInterpret_VocabularyFailureStillInterprets(t *testing.T) {
	text := &mockText{reply: `{"keyword":"保育士","filters":{"salary":null,"title":"保育士","job_category":null,"business_type":null,"location":null,"limit":null}}`}
	svc := New(text, &mockVocab{err: errors.New("db down")}, nil)

	res := svc.Interpret(context.Background(), "保育士を探しています")

	if text.calls != 1 {
		t.Fatalf("expected interpreter to be called, got %d", text.calls)
	}
	if res.Degraded || res.Keyword != "保育士" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestInterpret_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"service error", "", errors.New("timeout")},
		{"not json", "I think you want engineers", nil},
		{"array", `[]`, nil},
		{"missing filters", `{"keyword":"x"}`, nil},
		{"extra top-level key", `{"keyword":"x","filters":{"salary":null,"title":null,"job_category":null,"business_type":null,"location":null,"limit":null},"note":"x"}`, nil},
		{"missing filter key", `{"keyword":"x","filters":{"salary":null}}`, nil},
		{"unknown filter key", `{"keyword":"x","filters":{"salary":null,"title":null,"job_category":null,"business_type":null,"location":null,"remote":true}}`, nil},
		{"wrong string type", `{"keyword":"x","filters":{"salary":null,"title":5,"job_category":null,"business_type":null,"location":null,"limit":null}}`, nil},
		{"fractional salary", `{"keyword":"x","filters":{"salary":800.5,"title":null,"job_category":null,"business_type":null,"location":null,"limit":null}}`, nil},
		{"non-numeric salary", `{"keyword":"x","filters":{"salary":"八百","title":null,"job_category":null,"business_type":null,"location":null,"limit":null}}`, nil},
		{"keyword not string", `{"keyword":["x"],"filters":{"salary":null,"title":null,"job_category":null,"business_type":null,"location":null,"limit":null}}`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.InterpretationTotal.WithLabelValues("degraded"))

			svc := New(&mockText{reply: tc.reply, err: tc.err}, newVocab(), zap.NewNop())
			res := svc.Interpret(context.Background(), rawQuery)

			if res.Keyword != rawQuery {
				t.Errorf("Keyword = %q, want raw query", res.Keyword)
			}
			if !res.Filters.IsEmpty() {
				t.Errorf("Filters = %v, want empty", res.Filters.Map())
			}
			if !res.Degraded {
				t.Error("Degraded = false")
			}
			if after := testutil.ToFloat64(metrics.InterpretationTotal.WithLabelValues("degraded")); after != before+1 {
				t.Errorf("degraded counter = %f, want %f", after, before+1)
			}
		})
	}
}

func TestInterpret_BlankKeywordKeepsFilters(t *testing.T) {
	text := &mockText{reply: `{"keyword":"  ","filters":{"salary":null,"title":null,"job_category":null,"business_type":null,"location":"東京都","limit":null}}`}
	res := New(text, newVocab(), nil).Interpret(context.Background(), rawQuery)

	if res.Keyword != rawQuery {
		t.Errorf("Keyword = %q, want raw query", res.Keyword)
	}
	if res.Filters.Location == nil || *res.Filters.Location != "東京都" {
		t.Errorf("filters must be kept: %v", res.Filters.Map())
	}
	if res.Degraded {
		t.Error("blank keyword is not a degradation")
	}
}

func TestInterpret_NullKeywordKeepsFilters(t *testing.T) {
	text := &mockText{reply: `{"keyword":null,"filters":{"salary":500,"title":null,"job_category":null,"business_type":null,"location":null,"limit":null}}`}
	res := New(text, newVocab(), nil).Interpret(context.Background(), rawQuery)

	if res.Keyword != rawQuery || res.Filters.Salary == nil {
		t.Errorf("unexpected result: %q %v", res.Keyword, res.Filters.Map())
	}
}

func TestInterpret_NormalizesValues(t *testing.T) {
	text := &mockText{reply: `{"keyword":"営業","filters":{"salary":"600","title":"","job_category":"  営業職 ","business_type":null,"location":"   ","limit":0}}`}
	res := New(text, newVocab(), nil).Interpret(context.Background(), "営業")

	want := map[string]any{"salary": 600, "job_category": "営業職"}
	if got := res.Filters.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("Filters = %v, want %v", got, want)
	}
}

func TestInterpret_NegativeSalaryDropped(t *testing.T) {
	text := &mockText{reply: `{"keyword":"営業","filters":{"salary":-100,"title":null,"job_category":null,"business_type":null,"location":null,"limit":3}}`}
	res := New(text, newVocab(), nil).Interpret(context.Background(), "営業")

	want := map[string]any{"limit": 3}
	if got := res.Filters.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("Filters = %v, want %v", got, want)
	}
}

func TestInterpret_BlankQueryStillCallsService(t *testing.T) {
	text := &mockText{reply: `{"keyword":"","filters":{"salary":null,"title":null,"job_category":null,"business_type":null,"location":null,"limit":null}}`}
	New(text, newVocab(), nil).Interpret(context.Background(), "")

	if text.calls != 1 {
		t.Errorf("expected 1 call, got %d", text.calls)
	}
}
