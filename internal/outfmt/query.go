package outfmt

import (
	"context"
	"encoding/json"
	"io"

	"github.com/netroute/netroute/internal/filter"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	q, _ := ctx.Value(queryKey{}).(string)
	return q
}

// ApplyQuery runs query over v after a JSON round trip, so struct values are
// seen by jq exactly as they would be printed.
func ApplyQuery(v any, query string) (any, error) {
	if query == "" {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return filter.ApplyFromJSON(data, query)
}

// WriteJSONFiltered applies query, then writes the result as JSON.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSON(w, result, compact)
}

// WriteJSONLines applies query and writes one compact document per line. A
// top-level array is split into its elements.
func WriteJSONLines(w io.Writer, v any, query string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	result, err := filter.ApplyFromJSON(data, query)
	if err != nil {
		return err
	}
	if items, ok := result.([]any); ok {
		for _, item := range items {
			if err := WriteJSON(w, item, true); err != nil {
				return err
			}
		}
		return nil
	}
	return WriteJSON(w, result, true)
}
