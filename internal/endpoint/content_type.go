package endpoint

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/netroute/netroute/internal/resolve"
)

// ContentType selects how BodyParameters are put on the wire.
type ContentType int

const (
	// JSON sends the body parameters as one JSON object.
	JSON ContentType = iota
	// MultipartFormData sends each body parameter as a form part.
	MultipartFormData
)

// ErrInvalidContentType is wrapped by ParseContentType failures.
var ErrInvalidContentType = errors.New("invalid content type")

var contentTypeNames = map[string]ContentType{
	"json":                JSON,
	"multipart":           MultipartFormData,
	"multipart-form-data": MultipartFormData,
	"form-data":           MultipartFormData,
}

func (c ContentType) String() string {
	switch c {
	case JSON:
		return "json"
	case MultipartFormData:
		return "multipart"
	default:
		return fmt.Sprintf("ContentType(%d)", int(c))
	}
}

// ParseContentType accepts json, multipart, multipart-form-data and form-data.
func ParseContentType(s string) (ContentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return JSON, nil
	}
	if c, ok := contentTypeNames[s]; ok {
		return c, nil
	}
	names := make([]string, 0, len(contentTypeNames))
	for name := range contentTypeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	_, err := resolve.Lookup("content type", s, names)
	return JSON, fmt.Errorf("%w: %w", ErrInvalidContentType, err)
}
