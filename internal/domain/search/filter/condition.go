package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/jobdex/internal/domain/job"
)

// Op is a predicate operator.
type Op int

const (
	// OpMinSalary keeps rows whose min_salary is set and >= threshold.
	OpMinSalary Op = iota + 1
	// OpContains keeps rows whose text attribute contains the value, case-insensitively.
	OpContains
)

// Condition is a single typed predicate over a job posting.
type Condition struct {
	op        Op
	field     string
	value     string
	threshold int
}

// NewMinSalary creates a lower-bound salary predicate.
func NewMinSalary(threshold int) (Condition, error) {
	if threshold <= 0 {
		return Condition{}, fmt.Errorf("salary threshold must be positive, got %d", threshold)
	}
	return Condition{op: OpMinSalary, field: job.FieldMinSalary, threshold: threshold}, nil
}

// NewContains creates a substring predicate over a text field.
func NewContains(field, value string) (Condition, error) {
	switch field {
	case job.FieldTitle, job.FieldJobCategory, job.FieldBusinessType, job.FieldLocation:
	default:
		return Condition{}, fmt.Errorf("field %q does not support substring match", field)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Condition{}, fmt.Errorf("value is required for field %q", field)
	}
	return Condition{op: OpContains, field: field, value: value}, nil
}

// Op returns the operator.
func (c Condition) Op() Op { return c.op }

// Field returns the column the predicate applies to.
func (c Condition) Field() string { return c.field }

// Value returns the substring for OpContains.
func (c Condition) Value() string { return c.value }

// Threshold returns the lower bound for OpMinSalary.
func (c Condition) Threshold() int { return c.threshold }

// Matches evaluates the predicate in-process with the same semantics as the SQL compiler.
func (c Condition) Matches(j *job.Job) bool {
	switch c.op {
	case OpMinSalary:
		s, ok := j.MinSalary()
		return ok && s >= c.threshold
	case OpContains:
		attr := j.Text(c.field)
		if attr == "" {
			return false
		}
		return strings.Contains(Fold(attr), Fold(c.value))
	}
	return false
}

// MatchesAll reports whether j satisfies every condition.
func MatchesAll(conds []Condition, j *job.Job) bool {
	for _, c := range conds {
		if !c.Matches(j) {
			return false
		}
	}
	return true
}

// Fold is the case-folding used for substring matching.
func Fold(s string) string { return strings.ToLower(s) }
