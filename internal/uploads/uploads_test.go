package uploads

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"chart.png":               "chart.png",
		"../../etc/passwd":        "passwd",
		`C:\Users\me\grafico.jpg`: "grafico.jpg",
		"mi gráfico (1).png":      "mi_grfico_1.png",
		".hidden":                 "hidden",
		"":                        "chart",
		"///":                     "chart",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Sanitize(in))
		})
	}
}

func TestSniff(t *testing.T) {
	mime, err := Sniff(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = Sniff([]byte("\xff\xd8\xff\xe0\x00\x10JFIF"))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	_, err = Sniff([]byte("%PDF-1.4"))
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = Sniff(nil)
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestSaveAndOpen(t *testing.T) {
	s, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)

	a, err := s.Save("../chart.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	b, err := s.Save("../chart.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_chart.png"))

	f, err := s.Open(a)
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)
}

func TestSaveLimits(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, 8)
	require.NoError(t, err)

	_, err = s.Save("big.png", bytes.NewReader(make([]byte, 9)))
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, err = s.Save("empty.png", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrEmpty))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPathRejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "a/b.png", `..\x.png`, "..png", ".env"} {
		_, err := s.Path(name)
		assert.True(t, errors.Is(err, ErrInvalidName), name)
	}

	_, err = s.Path("abc_chart.png")
	assert.NoError(t, err)
}
