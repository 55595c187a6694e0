package attachment

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"hrportal/internal/platform/backend"
)

const (
	MaxFiles     = 5
	MaxFileBytes = 5 << 20
)

var allowedTypes = map[string]string{
	"application/pdf": "PDF",
	"image/png":       "PNG",
	"image/jpeg":      "JPEG",
}

var (
	ErrTooMany    = errors.Errorf("At most %d attachments are allowed", MaxFiles)
	ErrEmptyFile  = errors.New("file is empty")
	ErrOutOfRange = errors.New("attachment index out of range")
)

// File is one uploaded document. ContentType comes from sniffing the bytes,
// never from the client's header.
type File struct {
	Name        string
	ContentType string
	Size        int64
	data        []byte
}

func (f File) Data() []byte {
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out
}

// NewFile sniffs data and rejects anything but PDF, PNG or JPEG up to
// MaxFileBytes.
func NewFile(name string, data []byte) (File, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if len(data) == 0 {
		return File{}, errors.Wrap(ErrEmptyFile, name)
	}
	if len(data) > MaxFileBytes {
		return File{}, errors.Errorf("%s is larger than %d MB", name, MaxFileBytes>>20)
	}
	detected := mimetype.Detect(data)
	contentType := ""
	for ct := range allowedTypes {
		if detected.Is(ct) {
			contentType = ct
			break
		}
	}
	if contentType == "" {
		return File{}, errors.Errorf("%s must be a PDF, PNG or JPEG file", name)
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	return File{Name: name, ContentType: contentType, Size: int64(len(owned)), data: owned}, nil
}

// List is an immutable, indexed set of attachments. Add and Remove return a new
// List and leave the receiver untouched.
type List struct {
	files []File
}

func (l List) Len() int {
	return len(l.files)
}

func (l List) At(i int) (File, error) {
	if i < 0 || i >= len(l.files) {
		return File{}, ErrOutOfRange
	}
	return l.files[i], nil
}

// Files returns a copy of the entries.
func (l List) Files() []File {
	out := make([]File, len(l.files))
	copy(out, l.files)
	return out
}

func (l List) Add(f File) (List, error) {
	if len(l.files) >= MaxFiles {
		return l, ErrTooMany
	}
	next := make([]File, len(l.files), len(l.files)+1)
	copy(next, l.files)
	return List{files: append(next, f)}, nil
}

func (l List) Remove(i int) (List, error) {
	if i < 0 || i >= len(l.files) {
		return l, ErrOutOfRange
	}
	next := make([]File, 0, len(l.files)-1)
	next = append(next, l.files[:i]...)
	next = append(next, l.files[i+1:]...)
	return List{files: next}, nil
}

// TotalBytes is the combined size of every entry.
func (l List) TotalBytes() int64 {
	var total int64
	for _, f := range l.files {
		total += f.Size
	}
	return total
}

// FromMultipart reads uploaded parts in order. Empty file inputs are skipped.
func FromMultipart(headers []*multipart.FileHeader) (List, error) {
	var list List
	for _, h := range headers {
		if h == nil || h.Size == 0 {
			continue
		}
		if h.Size > MaxFileBytes {
			return List{}, errors.Errorf("%s is larger than %d MB", filepath.Base(h.Filename), MaxFileBytes>>20)
		}
		data, err := readPart(h)
		if err != nil {
			return List{}, err
		}
		f, err := NewFile(h.Filename, data)
		if err != nil {
			return List{}, err
		}
		if list, err = list.Add(f); err != nil {
			return List{}, err
		}
	}
	return list, nil
}

func readPart(h *multipart.FileHeader) ([]byte, error) {
	src, err := h.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", h.Filename)
	}
	defer func() { _ = src.Close() }()
	data, err := io.ReadAll(io.LimitReader(src, MaxFileBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", h.Filename)
	}
	return data, nil
}

// BackendFiles maps the list to multipart parts under field.
func (l List) BackendFiles(field string) []backend.File {
	out := make([]backend.File, 0, len(l.files))
	for _, f := range l.files {
		out = append(out, backend.File{Field: field, Name: f.Name, ContentType: f.ContentType, Data: f.Data()})
	}
	return out
}

// Describe renders a short size label such as "1.2 MB".
func Describe(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
