package request

import (
	"net/http"

	"github.com/netroute/netroute/internal/endpoint"
)

// BuildHeaders merges the base headers and then the additional headers.
// Names are canonicalised, so keys differing only in case collide and the
// later write wins: additional headers always override base headers.
func BuildHeaders(ep endpoint.EndPoint) http.Header {
	base := ep.BaseHeaders()
	extra := ep.AdditionalHeaders()
	headers := make(http.Header, len(base)+len(extra))
	for k, v := range base {
		headers.Set(k, v)
	}
	for k, v := range extra {
		headers.Set(k, v)
	}
	return headers
}
