// Package uploads keeps uploaded chart images on disk so result pages can
// link back to them.
package uploads

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrInvalidName     = errors.New("invalid upload filename")
	ErrTooLarge        = errors.New("upload exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrEmpty           = errors.New("empty upload")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Store writes uploads under one directory. Stored names are
// "<uuid>_<sanitized client name>".
type Store struct {
	dir      string
	maxBytes int64
}

// New creates dir if needed. maxBytes <= 0 disables the size check.
func New(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Sniff returns the image MIME type of data or ErrUnsupportedType.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	mime := http.DetectContentType(data)
	if !allowedTypes[mime] {
		return "", errors.Wrapf(ErrUnsupportedType, "%s", mime)
	}
	return mime, nil
}

// Sanitize reduces a client-supplied name to a safe base name.
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), "._")
	if out == "" {
		return "chart"
	}
	return out
}

// Save stores r and returns the generated filename.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	filename := uuid.NewString() + "_" + Sanitize(name)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", errors.Wrap(err, "write upload")
	}
	if n == 0 {
		return "", ErrEmpty
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return "", ErrTooLarge
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, filename)); err != nil {
		return "", errors.Wrap(err, "store upload")
	}
	return filename, nil
}

// Path resolves a stored filename, rejecting anything that could leave the
// upload directory.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" || filename != Sanitize(filename) || strings.Contains(filename, "..") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, filename), nil
}

func (s *Store) Open(filename string) (*os.File, error) {
	p, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}
