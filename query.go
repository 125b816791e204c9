package p2p

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Query holds parameters for an API call. The service uses a bracketed query
// syntax for nested values: k=v, k[]=v, k[k2]=v, k[k2][]=v and k[k2][k3]=v.
// Values may be strings, numbers, bools, time.Time, slices, or nested maps
// (two levels deep, matching what the service accepts).
type Query map[string]any

// Encode renders the query in the service's bracket syntax. Keys are emitted
// in sorted order at every level, so two logically identical queries always
// encode identically. Slice element order is preserved.
func (q Query) Encode() (string, error) {
	if len(q) == 0 {
		return "", nil
	}

	var pairs []string
	for _, k := range sortedKeys(q) {
		encoded, err := encodeValue(k, q[k], 0)
		if err != nil {
			return "", err
		}
		pairs = append(pairs, encoded...)
	}
	return strings.Join(pairs, "&"), nil
}

// Clone returns a shallow copy one level deep, enough for callers that add
// top-level parameters without mutating a shared default query.
func (q Query) Clone() Query {
	out := make(Query, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

const maxQueryDepth = 2

func encodeValue(key string, value any, depth int) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{key + "=" + url.QueryEscape(v)}, nil
	case bool, int, int64, float64:
		return []string{fmt.Sprintf("%s=%v", key, v)}, nil
	case time.Time:
		return []string{key + "=" + url.QueryEscape(v.UTC().Format("2006-01-02T15:04:05Z"))}, nil
	case []string:
		pairs := make([]string, 0, len(v))
		for _, item := range v {
			pairs = append(pairs, key+"[]="+url.QueryEscape(item))
		}
		return pairs, nil
	case []int:
		pairs := make([]string, 0, len(v))
		for _, item := range v {
			pairs = append(pairs, fmt.Sprintf("%s[]=%d", key, item))
		}
		return pairs, nil
	case []any:
		pairs := make([]string, 0, len(v))
		for _, item := range v {
			switch item.(type) {
			case string, bool, int, int64, float64:
				pairs = append(pairs, fmt.Sprintf("%s[]=%v", key, item))
			default:
				return nil, fmt.Errorf("p2p: unsupported slice element %T for %q", item, key)
			}
		}
		return pairs, nil
	case Query:
		return encodeMap(key, v, depth)
	case map[string]any:
		return encodeMap(key, v, depth)
	default:
		return nil, fmt.Errorf("p2p: unsupported query value %T for %q", value, key)
	}
}

func encodeMap(key string, m map[string]any, depth int) ([]string, error) {
	if depth >= maxQueryDepth {
		return nil, fmt.Errorf("p2p: query nesting too deep at %q", key)
	}
	var pairs []string
	for _, k := range sortedKeys(m) {
		sub, err := encodeValue(fmt.Sprintf("%s[%s]", key, k), m[k], depth+1)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, sub...)
	}
	return pairs, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
