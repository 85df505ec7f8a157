package interpret

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/jobdex/internal/domain/search/filter"
)

// Top-level and filter keys the reply must carry, no more and no fewer.
const (
	replyKeyword = "keyword"
	replyFilters = "filters"
)

var (
	stringKeys  = []string{filter.KeyTitle, filter.KeyJobCategory, filter.KeyBusinessType, filter.KeyLocation}
	integerKeys = []string{filter.KeySalary, filter.KeyLimit}
)

var errContract = errors.New("reply violates output contract")

// parseReply strictly decodes the interpreter reply into a keyword and raw filter
// parameters. Any deviation from the output contract is an error.
func parseReply(reply string) (string, map[string][]string, error) {
	top, err := decodeObject([]byte(reply))
	if err != nil {
		return "", nil, err
	}
	if err := exactKeys(top, replyKeyword, replyFilters); err != nil {
		return "", nil, err
	}

	keyword, err := decodeString(top[replyKeyword])
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", replyKeyword, err)
	}

	rawFilters, err := decodeObject(top[replyFilters])
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", replyFilters, err)
	}
	if err := exactKeys(rawFilters, append(append([]string{}, integerKeys...), stringKeys...)...); err != nil {
		return "", nil, fmt.Errorf("%s: %w", replyFilters, err)
	}

	params := make(map[string][]string)
	for _, k := range stringKeys {
		v, err := decodeString(rawFilters[k])
		if err != nil {
			return "", nil, fmt.Errorf("%s.%s: %w", replyFilters, k, err)
		}
		if v != "" {
			params[k] = []string{v}
		}
	}
	for _, k := range integerKeys {
		v, err := decodeInteger(rawFilters[k])
		if err != nil {
			return "", nil, fmt.Errorf("%s.%s: %w", replyFilters, k, err)
		}
		if v != "" {
			params[k] = []string{v}
		}
	}
	return keyword, params, nil
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("expected JSON object: %w", errContract)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode object: %v: %w", err, errContract)
	}
	return m, nil
}

func exactKeys(m map[string]json.RawMessage, keys ...string) error {
	if len(m) != len(keys) {
		return fmt.Errorf("expected %d keys, got %d: %w", len(keys), len(m), errContract)
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return fmt.Errorf("missing key %q: %w", k, errContract)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeString accepts null or a JSON string. Null yields "".
func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected string or null: %w", errContract)
	}
	return s, nil
}

// decodeInteger accepts null, a JSON integer, or a string holding an integer.
// It returns the decimal text (or "" for null/blank); positivity is left to the normalizer.
func decodeInteger(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("expected integer or null: %w", errContract)
	}

	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return "", fmt.Errorf("expected integer, got %s: %w", x, errContract)
		}
		return strconv.FormatInt(n, 10), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return "", nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", fmt.Errorf("expected numeric string, got %q: %w", x, errContract)
		}
		return strconv.Itoa(n), nil
	}
	return "", fmt.Errorf("expected integer or null: %w", errContract)
}
