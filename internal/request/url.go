package request

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/netroute/netroute/internal/endpoint"
)

// ErrBuildURL reports that the endpoint's base URL and path could not be
// combined into a request URL.
var ErrBuildURL = errors.New("could not build request")

// BuildURL appends the endpoint path to its base URL and, when URL
// parameters are present, replaces the query with them. Query values are
// rendered with ValueString and keys are emitted in sorted order, so building
// twice from the same endpoint yields the same URL.
func BuildURL(ep endpoint.EndPoint) (*url.URL, error) {
	base := ep.BaseURL()
	if base == nil {
		return nil, fmt.Errorf("%w: base URL is missing", ErrBuildURL)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q is not absolute", ErrBuildURL, base.String())
	}
	path := ep.Path()
	if strings.IndexFunc(path, isControl) >= 0 {
		return nil, fmt.Errorf("%w: path %q contains control characters", ErrBuildURL, path)
	}

	u := *base
	u.Path = joinURLPath(base.Path, path)
	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""

	if params := ep.URLParameters(); params != nil {
		u.RawQuery = encodeQuery(params)
	}

	// Round-trip through the parser so an unusable combination surfaces here
	// rather than in the transport.
	out, err := url.Parse(u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildURL, err)
	}
	return out, nil
}

// joinURLPath appends resourcePath to urlPath with exactly one separator.
func joinURLPath(urlPath, resourcePath string) string {
	if resourcePath == "" {
		return urlPath
	}
	if !strings.HasSuffix(urlPath, "/") {
		urlPath += "/"
	}
	return urlPath + strings.TrimPrefix(resourcePath, "/")
}

func encodeQuery(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(queryEscape(k))
		b.WriteByte('=')
		b.WriteString(queryEscape(ValueString(params[k])))
	}
	return b.String()
}

// queryEscape escapes like url.QueryEscape but writes spaces as %20, which
// servers decode the same way whether or not they treat "+" as a space.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
