// Package request turns an endpoint.EndPoint into the pieces of a concrete
// HTTP request: the URL, the merged header set and the body encoding.
//
// Everything here is a pure function of the endpoint. The only local failure
// mode is a URL that cannot be assembled, reported as ErrBuildURL.
package request
