package extract

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestTextPlainFile(t *testing.T) {
	e := New(zerolog.Nop())

	text := e.Text("essay.txt", strings.NewReader("  An essay about trees.\n"))
	require.Equal(t, "An essay about trees.", text)
}

func TestTextMarkdownFile(t *testing.T) {
	e := New(zerolog.Nop())

	text := e.Text("notes.md", strings.NewReader("# Heading\nbody"))
	require.Equal(t, "# Heading\nbody", text)
}

func TestTextSniffsPlainContentWithoutExtension(t *testing.T) {
	e := New(zerolog.Nop())

	text := e.Text("upload-129381", strings.NewReader("plain words with no extension"))
	require.Equal(t, "plain words with no extension", text)
}

func TestTextEmptyInput(t *testing.T) {
	e := New(zerolog.Nop())

	require.Empty(t, e.Text("essay.txt", strings.NewReader("")))
	require.Empty(t, e.Text("essay.txt", strings.NewReader("   \n\t ")))
}

func TestTextMalformedPDF(t *testing.T) {
	e := New(zerolog.Nop())

	text := e.Text("broken.pdf", strings.NewReader("%PDF-1.4 this is not really a pdf"))
	require.Empty(t, text)
}

func TestTextMalformedDOCX(t *testing.T) {
	e := New(zerolog.Nop())

	text := e.Text("broken.docx", strings.NewReader("PK\x03\x04 truncated zip"))
	require.Empty(t, text)
}

func TestTextUnknownBinaryFormat(t *testing.T) {
	e := New(zerolog.Nop())

	text := e.Text("image.png", strings.NewReader("\x89PNG\r\n\x1a\n0000"))
	require.Empty(t, text)
}
