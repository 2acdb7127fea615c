package outfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"
)

type templateKey struct{}

// WithTemplate adds a text/template source to the context
func WithTemplate(ctx context.Context, tmpl string) context.Context {
	return context.WithValue(ctx, templateKey{}, tmpl)
}

// GetTemplate retrieves the template source from context
func GetTemplate(ctx context.Context) string {
	tmpl, _ := ctx.Value(templateKey{}).(string)
	return tmpl
}

var templateFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		buf := &bytes.Buffer{}
		if err := WriteJSON(buf, v, true); err != nil {
			return "", err
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// WriteTemplate renders v with tmpl. Values are passed through a JSON round
// trip first so templates address fields by their JSON names.
func WriteTemplate(w io.Writer, v any, tmpl string) error {
	t, err := template.New("output").Funcs(templateFuncs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return templateError("invalid template", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	if err := t.Execute(w, generic); err != nil {
		return templateError("template execution error", err)
	}
	return nil
}

var templateLocation = regexp.MustCompile(`:(\d+):(\d+):`)

func templateError(kind string, err error) error {
	if m := templateLocation.FindStringSubmatch(err.Error()); len(m) == 3 {
		return fmt.Errorf("%s at line %s, column %s: %w", kind, m[1], m[2], err)
	}
	return fmt.Errorf("%s: %w", kind, err)
}
