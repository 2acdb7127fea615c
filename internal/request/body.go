package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/netroute/netroute/internal/endpoint"
)

const (
	// ApplicationJSON is the content type of JSON bodies.
	ApplicationJSON = "application/json"
	// OctetStream is used for file parts with no known MIME type.
	OctetStream = "application/octet-stream"
)

// Body is the encoding chosen for an endpoint's body parameters: either a
// *JSONBody or a *MultipartBody.
type Body interface {
	// Empty reports whether there is nothing to send.
	Empty() bool
}

// JSONBody carries the body parameters unchanged for JSON encoding.
type JSONBody struct {
	Params map[string]any
}

// Empty reports whether Params is nil.
func (b *JSONBody) Empty() bool { return b == nil || b.Params == nil }

// Encode marshals Params. It returns nil data when there is no body.
func (b *JSONBody) Encode() ([]byte, error) {
	if b.Empty() {
		return nil, nil
	}
	data, err := json.Marshal(b.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

// Part is one multipart form part. Exactly one of Data or Source is the
// content; Source parts are read from disk when the body is encoded.
type Part struct {
	Name     string
	FileName string
	MIMEType string
	Data     []byte
	Source   *url.URL
}

// IsFile reports whether the part is sent with a filename.
func (p Part) IsFile() bool { return p.FileName != "" || p.Source != nil }

// MultipartBody is an ordered list of form parts.
type MultipartBody struct {
	Parts []Part
	// Boundary is optional; a random one is used when empty.
	Boundary string
}

// Empty reports whether there are no parts.
func (b *MultipartBody) Empty() bool { return b == nil || len(b.Parts) == 0 }

// Encode renders the body and returns it with the matching Content-Type
// header value (including the boundary).
func (b *MultipartBody) Encode() ([]byte, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	if b == nil {
		b = &MultipartBody{}
	}
	if b.Boundary != "" {
		if err := writer.SetBoundary(b.Boundary); err != nil {
			return nil, "", fmt.Errorf("invalid multipart boundary: %w", err)
		}
	}
	for _, p := range b.Parts {
		if err := writePart(writer, p); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func writePart(writer *multipart.Writer, p Part) error {
	data, fileName, mimeType := p.Data, p.FileName, p.MIMEType
	if p.Source != nil {
		var err error
		data, err = readSource(p.Source)
		if err != nil {
			return fmt.Errorf("failed to read file for part %s: %w", p.Name, err)
		}
		if fileName == "" {
			fileName = path.Base(p.Source.Path)
		}
		if mimeType == "" {
			mimeType = mime.TypeByExtension(path.Ext(fileName))
		}
	}

	header := make(textproto.MIMEHeader)
	disposition := fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(p.Name))
	if fileName != "" {
		disposition += fmt.Sprintf(`; filename="%s"`, escapeQuotes(fileName))
		if mimeType == "" {
			mimeType = OctetStream
		}
	}
	header.Set("Content-Disposition", disposition)
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}

	w, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", p.Name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write part %s: %w", p.Name, err)
	}
	return nil
}

func readSource(u *url.URL) ([]byte, error) {
	if u.Scheme != "" && u.Scheme != "file" {
		return nil, fmt.Errorf("unsupported file reference scheme %q", u.Scheme)
	}
	if u.Path == "" {
		return nil, fmt.Errorf("file reference %q has no path", u.String())
	}
	return os.ReadFile(u.Path)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// BuildBody picks the body encoding for ep.
//
// JSON endpoints get their parameters unchanged. Multipart endpoints get one
// part per parameter, in key order: a *url.URL is a file by reference, a
// FileUpload is a named file part, []byte is a raw part and everything else
// is a text part rendered with ValueString. Text that is not valid UTF-8 is
// dropped without error.
func BuildBody(ep endpoint.EndPoint) Body {
	params := ep.BodyParameters()
	if ep.ContentType() != endpoint.MultipartFormData {
		return &JSONBody{Params: params}
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	body := &MultipartBody{Parts: make([]Part, 0, len(keys))}
	for _, key := range keys {
		part, ok := multipartPart(key, params[key])
		if !ok {
			continue
		}
		body.Parts = append(body.Parts, part)
	}
	return body
}

func multipartPart(key string, value any) (Part, bool) {
	switch v := value.(type) {
	case *url.URL:
		if v == nil {
			return Part{}, false
		}
		return Part{Name: key, Source: v}, true
	case endpoint.FileUpload:
		return Part{Name: key, FileName: v.FileName, MIMEType: v.MIMEType, Data: v.Data}, true
	case *endpoint.FileUpload:
		if v == nil {
			return Part{}, false
		}
		return Part{Name: key, FileName: v.FileName, MIMEType: v.MIMEType, Data: v.Data}, true
	case []byte:
		return Part{Name: key, Data: v}, true
	}
	text := ValueString(value)
	if !utf8.ValidString(text) {
		return Part{}, false
	}
	return Part{Name: key, Data: []byte(text)}, true
}
