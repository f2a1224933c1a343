package mealie

import (
	"sort"
	"strings"
)

// SnakeCase converts a server key to the client's key convention: an
// underscore is inserted before every ASCII uppercase letter that is not
// the first character, and the result is lower-cased. Runs of capitals get
// one underscore per letter, so "orgURL" becomes "org_u_r_l".
func SnakeCase(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// Normalize returns a copy of a decoded JSON value with every object key
// passed through SnakeCase, recursing into nested objects and arrays.
// Scalars are returned unchanged and the input is never modified.
//
// Keys are visited in sorted order; when two keys collapse to the same
// snake_case key the lexicographically last one wins.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(t))
		for _, k := range keys {
			out[SnakeCase(k)] = Normalize(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	default:
		return v
	}
}
