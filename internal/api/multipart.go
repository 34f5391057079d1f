package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
)

// FileUpload describes a document sent as multipart form data.
type FileUpload struct {
	// Reader supplies the file content.
	Reader io.Reader
	// Progress, when set, is called with the body size and returns a
	// writer that receives every byte as it is sent.
	Progress func(total int64) io.Writer
	Name     string
}

type formField struct {
	name  string
	value string
}

func (c *Client) sendMultipart(ctx context.Context, path string, fields []formField, file FileUpload, out any) error {
	if file.Reader == nil {
		return fmt.Errorf("file is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}

	name := filepath.Base(file.Name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "contract.txt"
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	size := int64(buf.Len())
	var body io.Reader = &buf
	if file.Progress != nil {
		if w := file.Progress(size); w != nil {
			body = io.TeeReader(&buf, w)
		}
	}

	return c.doSized(ctx, http.MethodPost, path, body, size, mw.FormDataContentType(), out)
}

func boolField(b bool) string {
	return strconv.FormatBool(b)
}
