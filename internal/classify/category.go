// Package classify maps HTTP status codes to a small, normalized set of
// outcomes with human-readable failure messages.
package classify

import "fmt"

// Category is the normalized outcome of a response or a decode attempt.
type Category int

const (
	// Success covers 100-299.
	Success Category = iota
	// BadRequest is status 400.
	BadRequest
	// AuthenticationError is status 403.
	AuthenticationError
	// ClientError is any other 4xx.
	ClientError
	// ServerError is 500-599.
	ServerError
	// Failed is every status outside the ranges above.
	Failed
	// NoData is a successful status with an empty body.
	NoData
	// UnableToDecode is a successful status whose body did not decode.
	UnableToDecode
)

// Default messages, one per failure category.
const (
	MessageBadRequest          = "Bad request"
	MessageAuthenticationError = "You need to be authenticated first."
	MessageClientError         = "Some client error occurred"
	MessageServerError         = "Server error"
	MessageFailed              = "Network request failed."
	MessageNoData              = "Response returned with no data to decode."
	MessageUnableToDecode      = "We could not decode the response."
)

// Categorize maps a status code to its category. Ranges are checked most
// specific first: 400 and 403 are carved out of the 4xx band.
func Categorize(status int) Category {
	switch {
	case status >= 100 && status <= 299:
		return Success
	case status == 400:
		return BadRequest
	case status == 403:
		return AuthenticationError
	case status >= 400 && status <= 499:
		return ClientError
	case status >= 500 && status <= 599:
		return ServerError
	default:
		return Failed
	}
}

// DefaultMessage returns the built-in text for c. Success has none.
func DefaultMessage(c Category) string {
	switch c {
	case BadRequest:
		return MessageBadRequest
	case AuthenticationError:
		return MessageAuthenticationError
	case ClientError:
		return MessageClientError
	case ServerError:
		return MessageServerError
	case Failed:
		return MessageFailed
	case NoData:
		return MessageNoData
	case UnableToDecode:
		return MessageUnableToDecode
	default:
		return ""
	}
}

// Code is a stable machine-readable name for c.
func (c Category) Code() string {
	switch c {
	case Success:
		return "success"
	case BadRequest:
		return "bad_request"
	case AuthenticationError:
		return "unauthenticated"
	case ClientError:
		return "client_error"
	case ServerError:
		return "server_error"
	case Failed:
		return "failed"
	case NoData:
		return "no_data"
	case UnableToDecode:
		return "decode_failed"
	default:
		return fmt.Sprintf("category_%d", int(c))
	}
}

func (c Category) String() string { return c.Code() }

// Suggestion returns a short hint for resolving a failure in category c.
func (c Category) Suggestion() string {
	switch c {
	case BadRequest:
		return "Check the request parameters and body"
	case AuthenticationError:
		return "Check the credentials in the active profile's headers"
	case ClientError:
		return "Verify the path and method exist on the server"
	case ServerError:
		return "The server encountered an error; try again later"
	case Failed:
		return "The server answered with an unexpected status"
	case NoData:
		return "The endpoint returned an empty body; nothing to decode"
	case UnableToDecode:
		return "The response body does not match the expected shape"
	default:
		return ""
	}
}
