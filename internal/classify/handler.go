package classify

// Outcome is the judgment for one status code. It never keeps the response.
type Outcome struct {
	Category Category
	// Message is empty for Success.
	Message string
}

// Success reports whether the outcome is not a failure.
func (o Outcome) Success() bool { return o.Category == Success }

// Handler classifies responses for the router. Implementations are read
// concurrently and must not be mutated while requests are in flight.
type Handler interface {
	// Classify turns a status code into an outcome.
	Classify(status int) Outcome
	// NoDataMessage is reported when a successful response has no body.
	NoDataMessage() string
	// UnableToDecodeMessage is reported when a body fails to decode.
	UnableToDecodeMessage() string
}

// DefaultHandler classifies with Categorize and words failures with
// Messages, falling back to DefaultMessage.
type DefaultHandler struct {
	NoDataErrorMessage         string
	UnableToDecodeErrorMessage string

	// Messages customizes the wording per category without touching the
	// status ranges. Nil means DefaultMessage.
	Messages func(Category) string
}

var _ Handler = (*DefaultHandler)(nil)

// NewDefaultHandler returns a handler with the built-in messages.
func NewDefaultHandler() *DefaultHandler {
	return &DefaultHandler{
		NoDataErrorMessage:         MessageNoData,
		UnableToDecodeErrorMessage: MessageUnableToDecode,
	}
}

// Classify implements Handler.
func (h *DefaultHandler) Classify(status int) Outcome {
	c := Categorize(status)
	if c == Success {
		return Outcome{Category: Success}
	}
	return Outcome{Category: c, Message: h.message(c)}
}

// NoDataMessage implements Handler.
func (h *DefaultHandler) NoDataMessage() string {
	if h.NoDataErrorMessage == "" {
		return MessageNoData
	}
	return h.NoDataErrorMessage
}

// UnableToDecodeMessage implements Handler.
func (h *DefaultHandler) UnableToDecodeMessage() string {
	if h.UnableToDecodeErrorMessage == "" {
		return MessageUnableToDecode
	}
	return h.UnableToDecodeErrorMessage
}

func (h *DefaultHandler) message(c Category) string {
	if h.Messages != nil {
		if msg := h.Messages(c); msg != "" {
			return msg
		}
	}
	return DefaultMessage(c)
}

// MessageMap builds a Messages function from a fixed table; categories
// missing from the table keep their default text.
func MessageMap(table map[Category]string) func(Category) string {
	copied := make(map[Category]string, len(table))
	for k, v := range table {
		copied[k] = v
	}
	return func(c Category) string {
		return copied[c]
	}
}
