package outfmt

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// Formatter writes command results in the mode carried by its context.
type Formatter struct {
	ctx       context.Context
	out       io.Writer
	errOut    io.Writer
	tabWriter *tabwriter.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:       ctx,
		out:       out,
		errOut:    errOut,
		tabWriter: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data honoring the query, template and mode in the context.
// In text mode strings are printed verbatim and everything else as indented
// JSON.
func (f *Formatter) Output(data any) error {
	query := GetQuery(f.ctx)
	if tmpl := GetTemplate(f.ctx); tmpl != "" {
		filtered, err := ApplyQuery(data, query)
		if err != nil {
			return err
		}
		return WriteTemplate(f.out, filtered, tmpl)
	}
	switch ModeFromContext(f.ctx) {
	case JSONL:
		return WriteJSONLines(f.out, data, query)
	case JSON:
		return WriteJSONFiltered(f.out, data, query, IsCompact(f.ctx))
	}
	filtered, err := ApplyQuery(data, query)
	if err != nil {
		return err
	}
	if s, ok := filtered.(string); ok {
		_, err := fmt.Fprintln(f.out, s)
		return err
	}
	return WriteJSON(f.out, filtered, IsCompact(f.ctx))
}

// StartTable writes table headers. It returns false, writing nothing, when
// the context selects JSON.
func (f *Formatter) StartTable(headers ...string) bool {
	if IsJSON(f.ctx) {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes a single row to the table.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, col)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
}

// EndTable flushes the table output.
func (f *Formatter) EndTable() error {
	return f.tabWriter.Flush()
}

// Empty writes a message to stderr indicating no results.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
