// Package resolve suggests the closest known name for mistyped input.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxDistance is the largest edit distance still worth suggesting.
const maxDistance = 3

var ErrEmptyQuery = errors.New("empty search query")

// UnknownError reports a name that matched no candidate exactly.
type UnknownError struct {
	Kind        string
	Query       string
	Suggestions []string
}

func (e *UnknownError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "unknown %s %q", e.Kind, e.Query)
	switch len(e.Suggestions) {
	case 0:
	case 1:
		_, _ = fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestions[0])
	default:
		_, _ = fmt.Fprintf(&b, " (did you mean one of: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

type lowerSource []string

func (s lowerSource) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerSource) Len() int            { return len(s) }

// Lookup returns the candidate equal to query ignoring case, or an
// *UnknownError listing the best suggestions.
func Lookup(kind, query string, candidates []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	for _, c := range candidates {
		if strings.EqualFold(c, query) {
			return c, nil
		}
	}
	return "", &UnknownError{Kind: kind, Query: query, Suggestions: Suggest(query, candidates, 3)}
}

// Suggest ranks candidates for query, best first, capped at limit.
//
// Subsequence matches (e.g. "pst" for "post") come from fuzzy ranking; when
// none exist, candidates within a small edit distance are used instead so
// transpositions like "gte" still find "get".
func Suggest(query string, candidates []string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	results := fuzzy.FindFrom(query, lowerSource(candidates))
	if len(results) > 0 {
		if len(results) > limit {
			results = results[:limit]
		}
		out := make([]string, len(results))
		for i, r := range results {
			out[i] = candidates[r.Index]
		}
		return out
	}

	best := maxDistance + 1
	var out []string
	for _, c := range candidates {
		d := levenshtein(query, strings.ToLower(c))
		switch {
		case d < best:
			best = d
			out = []string{c}
		case d == best:
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= la; i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[lb]
}
