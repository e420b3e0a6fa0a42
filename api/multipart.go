package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// FilePart is one uploaded file inside a Multipart body
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart is a multipart/form-data request body. The client writes the
// Content-Type, boundary included, so callers never set it themselves.
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// NewFileUpload is a Multipart holding a single file
func NewFileUpload(field, filename string, content io.Reader) *Multipart {
	return &Multipart{Files: []FilePart{{Field: field, Filename: filename, Content: content}}}
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.WriteField(name, m.Fields[name]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, file := range m.Files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.Field, err)
		}
		if file.Content != nil {
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", fmt.Errorf("copy %s: %w", file.Filename, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
