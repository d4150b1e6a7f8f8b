// Package export renders study material as Markdown, PDF or DOCX.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// BaseName is the download file name without extension.
const BaseName = "study_material"

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists every supported format.
var Formats = []Format{FormatMarkdown, FormatPDF, FormatDOCX}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Filename returns base with the format's extension.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Document is what gets exported.
type Document struct {
	Title    string
	Material string
}

// Write renders doc in format f to w.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatMarkdown:
		return writeMarkdown(w, doc)
	case FormatPDF:
		return writePDF(w, doc)
	case FormatDOCX:
		return writeDOCX(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// WriteFile renders doc into a new file at path.
func WriteFile(path string, f Format, doc Document) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, f, doc); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("export %s: %w", f, err)
	}
	return out.Close()
}

// writeMarkdown writes the material verbatim.
func writeMarkdown(w io.Writer, doc Document) error {
	_, err := io.WriteString(w, doc.Material)
	return err
}
