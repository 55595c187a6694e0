package shared

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/form"
	"github.com/pkg/errors"

	"hrportal/internal/platform/validation"
)

// MaxMultipartMemory is how much of an upload is held in memory before
// spilling to temp files.
const MaxMultipartMemory = 8 << 20

var decoder = newDecoder()

func newDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("form")
	return d
}

// DecodeForm parses the submitted body into dst. Values that do not convert,
// such as letters in a number field, come back as a *validation.Error.
func DecodeForm(r *http.Request, dst any) error {
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxMultipartMemory); err != nil {
			return errors.Wrap(err, "parse multipart form")
		}
	} else if err := r.ParseForm(); err != nil {
		return errors.Wrap(err, "parse form")
	}
	return decode(dst, r.PostForm)
}

// DecodeQuery fills dst from the URL query.
func DecodeQuery(r *http.Request, dst any) error {
	return decode(dst, r.URL.Query())
}

func decode(dst any, values map[string][]string) error {
	err := decoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	var decodeErrs form.DecodeErrors
	if !errors.As(err, &decodeErrs) {
		return errors.Wrap(err, "decode form")
	}
	fields := make([]string, 0, len(decodeErrs))
	for field := range decodeErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	issues := make([]validation.Issue, 0, len(fields))
	for _, field := range fields {
		issues = append(issues, validation.Issue{Field: field, Reason: "must be a number"})
	}
	return &validation.Error{Issues: issues}
}
