package router

import "encoding/json"

// Decoder turns response bytes into a caller-chosen type. v is always a
// non-nil pointer.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Encoder is the inverse of Decoder.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// JSONDecoder decodes with encoding/json.
type JSONDecoder struct{}

func (JSONDecoder) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// JSONCodec pairs JSONDecoder with a matching encoder.
type JSONCodec struct {
	JSONDecoder
}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte, v any) error

func (f DecoderFunc) Decode(data []byte, v any) error { return f(data, v) }
