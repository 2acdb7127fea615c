// Package endpoint describes HTTP routes as data.
//
// An EndPoint answers every question needed to build one request: where it
// goes, which verb it uses, which headers and parameters it carries and how
// the body is encoded. Concrete routes are plain values; the Descriptor
// record covers the common case.
package endpoint

import "net/url"

// EndPoint is the contract consumed by the request builder and the router.
// Implementations must be safe to read concurrently and must not change
// between the calls the router makes while dispatching one request.
type EndPoint interface {
	// BaseURL is shared by a group of routes, e.g. https://api.example.com/v1.
	BaseURL() *url.URL

	// Path is appended to BaseURL, e.g. /items.
	Path() string

	// Method is the HTTP verb.
	Method() Method

	// BodyParameters are encoded according to ContentType. Nil means no body.
	BodyParameters() map[string]any

	// URLParameters become the query string. Nil leaves the URL untouched.
	URLParameters() map[string]any

	// BaseHeaders are shared by a group of routes (authorization, accept).
	BaseHeaders() map[string]string

	// AdditionalHeaders are route specific and win over BaseHeaders.
	AdditionalHeaders() map[string]string

	// ContentType selects the body encoding.
	ContentType() ContentType
}

// Descriptor is an immutable EndPoint record.
type Descriptor struct {
	Base     *url.URL
	Route    string
	Verb     Method
	Body     map[string]any
	Query    map[string]any
	Headers  map[string]string
	Extra    map[string]string
	Encoding ContentType
}

var _ EndPoint = Descriptor{}

func (d Descriptor) BaseURL() *url.URL                    { return d.Base }
func (d Descriptor) Path() string                         { return d.Route }
func (d Descriptor) Method() Method                       { return d.Verb }
func (d Descriptor) BodyParameters() map[string]any       { return d.Body }
func (d Descriptor) URLParameters() map[string]any        { return d.Query }
func (d Descriptor) BaseHeaders() map[string]string       { return d.Headers }
func (d Descriptor) AdditionalHeaders() map[string]string { return d.Extra }
func (d Descriptor) ContentType() ContentType             { return d.Encoding }

// WithBaseHeaders returns a shallow copy of d using headers as its base
// headers. Use it to layer profile-wide headers onto a route.
func (d Descriptor) WithBaseHeaders(headers map[string]string) Descriptor {
	d.Headers = headers
	return d
}

// Snapshot copies any EndPoint into a Descriptor.
func Snapshot(ep EndPoint) Descriptor {
	if d, ok := ep.(Descriptor); ok {
		return d
	}
	if d, ok := ep.(*Descriptor); ok && d != nil {
		return *d
	}
	return Descriptor{
		Base:     ep.BaseURL(),
		Route:    ep.Path(),
		Verb:     ep.Method(),
		Body:     ep.BodyParameters(),
		Query:    ep.URLParameters(),
		Headers:  ep.BaseHeaders(),
		Extra:    ep.AdditionalHeaders(),
		Encoding: ep.ContentType(),
	}
}

// MustParseURL parses raw and panics on failure. Intended for package-level
// base URL constants.
func MustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic("endpoint: invalid base URL " + raw + ": " + err.Error())
	}
	return u
}
