package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// File is one uploaded part of a multipart request.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// PostMultipart sends fields (in sorted key order) followed by files.
func (c *Client) PostMultipart(ctx context.Context, path string, fields url.Values, files []File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return errors.Wrap(err, "write multipart field")
			}
		}
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return errors.Wrap(err, "create multipart file")
		}
		if _, err := part.Write(f.Data); err != nil {
			return errors.Wrap(err, "write multipart file")
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "close multipart body")
	}
	return c.Do(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType(), out)
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
