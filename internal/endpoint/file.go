package endpoint

//
// Endpoint files: one route described in YAML or JSON.
//

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFile is wrapped by every LoadFile and ParseFile failure.
var ErrInvalidFile = errors.New("invalid endpoint file")

// fileDocument is the on-disk shape of an endpoint file. JSON documents use
// the same keys since JSON is a subset of YAML.
type fileDocument struct {
	BaseURL     string              `yaml:"base_url"`
	Path        string              `yaml:"path"`
	Method      string              `yaml:"method"`
	ContentType string              `yaml:"content_type"`
	Headers     map[string]string   `yaml:"headers"`
	Query       map[string]any      `yaml:"query"`
	Body        map[string]any      `yaml:"body"`
	Files       map[string]fileSpec `yaml:"files"`
	Refs        map[string]string   `yaml:"refs"`
}

type fileSpec struct {
	Path     string `yaml:"path"`
	FileName string `yaml:"file_name"`
	MIMEType string `yaml:"mime_type"`
}

// LoadFile reads the endpoint file at path. Relative file and reference
// paths inside the document are resolved against the file's directory.
func LoadFile(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	d, err := ParseFile(data, filepath.Dir(path))
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseFile decodes an endpoint document. dir anchors relative paths.
func ParseFile(data []byte, dir string) (Descriptor, error) {
	var doc fileDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Descriptor{}, fmt.Errorf("%w: document is empty", ErrInvalidFile)
		}
		return Descriptor{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return doc.descriptor(dir)
}

func (doc fileDocument) descriptor(dir string) (Descriptor, error) {
	if strings.TrimSpace(doc.BaseURL) == "" {
		return Descriptor{}, fmt.Errorf("%w: base_url is required", ErrInvalidFile)
	}
	base, err := url.Parse(strings.TrimSpace(doc.BaseURL))
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: base_url: %w", ErrInvalidFile, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return Descriptor{}, fmt.Errorf("%w: base_url must be absolute, got %q", ErrInvalidFile, doc.BaseURL)
	}

	var method Method
	if doc.Method != "" {
		if method, err = ParseMethod(doc.Method); err != nil {
			return Descriptor{}, fmt.Errorf("%w: method: %w", ErrInvalidFile, err)
		}
	}
	encoding, err := ParseContentType(doc.ContentType)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: content_type: %w", ErrInvalidFile, err)
	}

	body := doc.Body
	if len(doc.Files) > 0 || len(doc.Refs) > 0 {
		if encoding != MultipartFormData {
			return Descriptor{}, fmt.Errorf("%w: files and refs require content_type multipart", ErrInvalidFile)
		}
		body = make(map[string]any, len(doc.Body)+len(doc.Files)+len(doc.Refs))
		for k, v := range doc.Body {
			body[k] = v
		}
		for name, spec := range doc.Files {
			if _, dup := body[name]; dup {
				return Descriptor{}, fmt.Errorf("%w: files.%s duplicates a body parameter", ErrInvalidFile, name)
			}
			upload, err := spec.load(dir)
			if err != nil {
				return Descriptor{}, fmt.Errorf("%w: files.%s: %w", ErrInvalidFile, name, err)
			}
			body[name] = upload
		}
		for name, raw := range doc.Refs {
			if _, dup := body[name]; dup {
				return Descriptor{}, fmt.Errorf("%w: refs.%s duplicates a body parameter", ErrInvalidFile, name)
			}
			ref, err := FileURL(raw, dir)
			if err != nil {
				return Descriptor{}, fmt.Errorf("%w: refs.%s: %w", ErrInvalidFile, name, err)
			}
			body[name] = ref
		}
	}

	return Descriptor{
		Base:     base,
		Route:    doc.Path,
		Verb:     method,
		Body:     body,
		Query:    doc.Query,
		Extra:    doc.Headers,
		Encoding: encoding,
	}, nil
}

func (s fileSpec) load(dir string) (FileUpload, error) {
	if strings.TrimSpace(s.Path) == "" {
		return FileUpload{}, errors.New("path is required")
	}
	p := s.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return FileUpload{}, err
	}
	name := s.FileName
	if name == "" {
		name = filepath.Base(p)
	}
	return FileUpload{Data: data, FileName: name, MIMEType: s.MIMEType}, nil
}

// FileURL turns raw into a file reference usable as a multipart body value.
// raw is either a file:// URL or a local path; relative paths are joined
// with dir.
func FileURL(raw, dir string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty file reference")
	}
	if strings.HasPrefix(raw, "file://") {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	p := raw
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}
