// Package extract converts stored submission artifacts into normalized text.
//
// Extraction is best effort: unsupported formats and malformed files yield
// an empty string, never an error. Callers treat empty output as "no
// extractable text".
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor pulls plain text out of submission documents.
type Extractor struct {
	logger zerolog.Logger
}

// New constructs an Extractor.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

// Text reads the artifact and returns its textual content. The format is
// inferred from the file extension, falling back to content sniffing when
// the extension is missing or unrecognized.
func (e *Extractor) Text(name string, r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil && len(data) == 0 {
		return ""
	}

	if len(data) == 0 {
		return ""
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", ".md":
		return normalize(string(data))
	case ".pdf":
		return normalize(e.pdfText(data))
	case ".docx":
		return normalize(e.docxText(data))
	}

	switch detected := mimetype.Detect(data); {
	case detected.Is("text/plain"):
		return normalize(string(data))
	case detected.Is(mimePDF):
		return normalize(e.pdfText(data))
	case detected.Is(mimeDOCX):
		return normalize(e.docxText(data))
	default:
		return ""
	}
}

// pdfText extracts the embedded text stream of a PDF. The decoder panics on
// some malformed files, so partial output or an empty string is returned
// instead of propagating the failure.
func (e *Extractor) pdfText(data []byte) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn().Interface("panic", rec).Msg("pdf decoder panicked, returning partial text")
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Debug().Err(err).Msg("unreadable pdf")
		return ""
	}

	content, err := reader.GetPlainText()
	if err != nil {
		e.logger.Debug().Err(err).Msg("pdf has no extractable text stream")
		return ""
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		// Keep whatever decoded before the failure.
		return buf.String()
	}

	return buf.String()
}

// docxText extracts paragraph and table text from a word-processor document.
func (e *Extractor) docxText(data []byte) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn().Interface("panic", rec).Msg("docx decoder panicked")
			text = ""
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Debug().Err(err).Msg("unreadable docx")
		return ""
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch item.(type) {
		case *docx.Paragraph, *docx.Table:
			sb.WriteString(fmt.Sprint(item))
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}
