package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/domain/search/filter"
	"github.com/kailas-cloud/jobdex/internal/domain/search/mode"
)

// MaxQueryLength is the maximum allowed query or keyword length in runes.
const MaxQueryLength = 4096

// KeyKeyword is the structured-path ranking phrase parameter.
const KeyKeyword = "keyword"

// criteriaKeys are the structured parameters that make a search worth running.
// Limit alone is not a criterion.
var criteriaKeys = []string{
	KeyKeyword,
	filter.KeyJobCategory,
	filter.KeyBusinessType,
	filter.KeyLocation,
	filter.KeyMinSalary,
	filter.KeySalary,
	filter.KeyTitle,
}

// Request is a validated search request for either entry path.
type Request struct {
	searchMode mode.Mode
	query      string
	keyword    string
	filters    filter.Filters
	debug      bool
	criteria   bool
	malformed  error
}

// NewNatural validates a free-text query. A blank query is valid but carries no criteria.
func NewNatural(query string, debug bool) (Request, error) {
	if len([]rune(query)) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidQuery)
	}
	return Request{
		searchMode: mode.Natural,
		query:      query,
		debug:      debug,
		criteria:   strings.TrimSpace(query) != "",
	}, nil
}

// NewStructured builds a request from form parameters. Malformed numeric values are
// dropped and reported by Malformed; they never fail the request.
func NewStructured(params map[string][]string) (Request, error) {
	keyword := ""
	if vs := params[KeyKeyword]; len(vs) > 0 {
		keyword = strings.TrimSpace(vs[0])
	}
	if len([]rune(keyword)) > MaxQueryLength {
		return Request{}, fmt.Errorf("keyword too long (max %d chars): %w", MaxQueryLength, domain.ErrInvalidQuery)
	}

	f, malformed := filter.Parse(params)

	return Request{
		searchMode: mode.Structured,
		keyword:    keyword,
		filters:    f,
		criteria:   hasCriteria(params),
		malformed:  malformed,
	}, nil
}

// Mode returns the entry path.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Query returns the raw natural-language query.
func (r *Request) Query() string { return r.query }

// Keyword returns the trimmed structured keyword ("" when absent).
func (r *Request) Keyword() string { return r.keyword }

// Filters returns the normalized structured filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Debug reports whether the interpretation should be echoed to the caller.
func (r *Request) Debug() bool { return r.debug }

// HasCriteria reports whether the request carries anything to search for.
func (r *Request) HasCriteria() bool { return r.criteria }

// Malformed returns the normalizer report for dropped values, or nil.
func (r *Request) Malformed() error { return r.malformed }

// RankingKeyword picks the structured ranking phrase: the keyword, else the present
// text filter values joined by a space, else fallback.
func (r *Request) RankingKeyword(fallback string) string {
	if r.keyword != "" {
		return r.keyword
	}
	if joined := strings.Join(r.filters.TextValues(), " "); joined != "" {
		return joined
	}
	return fallback
}

func hasCriteria(params map[string][]string) bool {
	for _, k := range criteriaKeys {
		if vs := params[k]; len(vs) > 0 && strings.TrimSpace(vs[0]) != "" {
			return true
		}
	}
	return false
}
