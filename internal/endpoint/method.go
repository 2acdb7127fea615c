package endpoint

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/netroute/netroute/internal/resolve"
)

// Method is an HTTP verb. The zero value means GET.
type Method string

const (
	Connect Method = http.MethodConnect
	Delete  Method = http.MethodDelete
	Get     Method = http.MethodGet
	Head    Method = http.MethodHead
	Options Method = http.MethodOptions
	Patch   Method = http.MethodPatch
	Post    Method = http.MethodPost
	Put     Method = http.MethodPut
	Trace   Method = http.MethodTrace
)

// Methods lists every supported verb in alphabetical order.
var Methods = []Method{Connect, Delete, Get, Head, Options, Patch, Post, Put, Trace}

// ErrInvalidMethod is wrapped by ParseMethod failures.
var ErrInvalidMethod = errors.New("invalid http method")

// String returns the upper-case verb as sent on the wire.
func (m Method) String() string {
	if m == "" {
		return http.MethodGet
	}
	return strings.ToUpper(string(m))
}

// Valid reports whether m is one of Methods (or the zero value).
func (m Method) Valid() bool {
	if m == "" {
		return true
	}
	for _, known := range Methods {
		if strings.EqualFold(string(m), string(known)) {
			return true
		}
	}
	return false
}

// ParseMethod parses a verb case-insensitively.
func ParseMethod(s string) (Method, error) {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	name, err := resolve.Lookup("http method", s, names)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidMethod, err)
	}
	return Method(name), nil
}
