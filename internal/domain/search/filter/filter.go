package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/domain/job"
)

// Recognized filter keys.
const (
	KeySalary       = "salary"
	KeyTitle        = "title"
	KeyJobCategory  = "job_category"
	KeyBusinessType = "business_type"
	KeyLocation     = "location"
	KeyLimit        = "limit"

	// KeyMinSalary is the advanced search form alias of KeySalary.
	KeyMinSalary = "min_salary"
)

// DefaultLimit is the result count cap when no limit filter is present.
const DefaultLimit = 5

// Filters is a normalized filter set. A nil field means the criterion is absent;
// a non-nil field always holds a positive number or a non-blank trimmed string.
type Filters struct {
	Salary       *int
	Title        *string
	JobCategory  *string
	BusinessType *string
	Location     *string
	Limit        *int
}

// Normalize canonicalizes raw parameters into Filters, silently dropping malformed values.
func Normalize(raw map[string][]string) Filters {
	f, _ := Parse(raw)
	return f
}

// Parse canonicalizes raw parameters into Filters.
// Multi-valued parameters collapse to their first element. Unparseable or non-positive
// numbers are dropped and reported in the returned error (wrapping ErrMalformedFilterInput);
// the Filters value is usable either way.
func Parse(raw map[string][]string) (Filters, error) {
	var (
		f    Filters
		errs []error
	)

	// A blank salary leaves room for the min_salary alias.
	salaryKey := KeySalary
	if v, _ := first(raw, KeySalary); strings.TrimSpace(v) == "" {
		salaryKey = KeyMinSalary
	}
	if v, ok := first(raw, salaryKey); ok {
		n, err := positiveInt(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", salaryKey, err))
		}
		f.Salary = n
	}
	if v, ok := first(raw, KeyLimit); ok {
		n, err := positiveInt(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyLimit, err))
		}
		f.Limit = n
	}

	f.Title = text(raw, KeyTitle)
	f.JobCategory = text(raw, KeyJobCategory)
	f.BusinessType = text(raw, KeyBusinessType)
	f.Location = text(raw, KeyLocation)

	return f, errors.Join(errs...)
}

// String returns a pointer to the trimmed value, or nil when it is blank.
func String(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Int returns a pointer to n, or nil when n is not positive.
func Int(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// IsEmpty reports whether no criterion (including limit) is present.
func (f Filters) IsEmpty() bool {
	return f.Salary == nil && f.Title == nil && f.JobCategory == nil &&
		f.BusinessType == nil && f.Location == nil && f.Limit == nil
}

// Map renders the filters as a key->value mapping containing present keys only.
func (f Filters) Map() map[string]any {
	m := make(map[string]any)
	if f.Salary != nil {
		m[KeySalary] = *f.Salary
	}
	for _, kv := range f.texts() {
		m[kv.key] = kv.value
	}
	if f.Limit != nil {
		m[KeyLimit] = *f.Limit
	}
	return m
}

// Params renders the filters back into raw parameter form; Normalize(f.Params()) == f.
func (f Filters) Params() map[string][]string {
	p := make(map[string][]string)
	for k, v := range f.Map() {
		switch x := v.(type) {
		case int:
			p[k] = []string{strconv.Itoa(x)}
		case string:
			p[k] = []string{x}
		}
	}
	return p
}

// TextValues returns present text filter values in predicate precedence order.
func (f Filters) TextValues() []string {
	kvs := f.texts()
	out := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, kv.value)
	}
	return out
}

// LimitOr returns the limit filter, def when absent, clamped to max when max > 0.
func (f Filters) LimitOr(def, maxLimit int) int {
	n := def
	if f.Limit != nil {
		n = *f.Limit
	}
	if n <= 0 {
		n = DefaultLimit
	}
	if maxLimit > 0 && n > maxLimit {
		n = maxLimit
	}
	return n
}

// Conditions compiles the filters into AND-combined predicates in fixed precedence:
// salary, title, job_category, business_type, location. Limit is not a predicate.
// Values the constructors reject (a hand-built non-positive salary or blank string) are skipped.
func (f Filters) Conditions() []Condition {
	var conds []Condition
	if f.Salary != nil {
		if c, err := NewMinSalary(*f.Salary); err == nil {
			conds = append(conds, c)
		}
	}
	for _, kv := range f.texts() {
		if c, err := NewContains(kv.field, kv.value); err == nil {
			conds = append(conds, c)
		}
	}
	return conds
}

type textFilter struct {
	key   string
	field string
	value string
}

func (f Filters) texts() []textFilter {
	all := []struct {
		key, field string
		v          *string
	}{
		{KeyTitle, job.FieldTitle, f.Title},
		{KeyJobCategory, job.FieldJobCategory, f.JobCategory},
		{KeyBusinessType, job.FieldBusinessType, f.BusinessType},
		{KeyLocation, job.FieldLocation, f.Location},
	}
	out := make([]textFilter, 0, len(all))
	for _, a := range all {
		if a.v != nil {
			out = append(out, textFilter{key: a.key, field: a.field, value: *a.v})
		}
	}
	return out
}

// first returns the first element of a multi-valued parameter. Later elements are ignored.
func first(raw map[string][]string, key string) (string, bool) {
	vs, ok := raw[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func text(raw map[string][]string, key string) *string {
	v, ok := first(raw, key)
	if !ok {
		return nil
	}
	return String(v)
}

// positiveInt parses v; blank is absent without error.
func positiveInt(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer: %w", v, domain.ErrMalformedFilterInput)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%d is not positive: %w", n, domain.ErrMalformedFilterInput)
	}
	return &n, nil
}
