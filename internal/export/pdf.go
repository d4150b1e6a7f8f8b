package export

import (
	"io"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFont      = "Arial"
	pdfFontSize  = 11
	pdfLineH     = 8
	pdfPageBreak = 15
)

var pdfReplacer = strings.NewReplacer(
	"—", "-",
	"–", "-",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"•", "-",
)

var reNonLatin1 = regexp.MustCompile(`[^\x00-\xFF]`)

// Sanitize maps typographic punctuation to ASCII and drops anything outside
// Latin-1, which the core PDF fonts cannot render.
func Sanitize(text string) string {
	return reNonLatin1.ReplaceAllString(pdfReplacer.Replace(text), "")
}

// writePDF lays the sanitized material out line by line.
func writePDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	pdf.SetAutoPageBreak(true, pdfPageBreak)
	pdf.AddPage()
	pdf.SetFont(pdfFont, "", pdfFontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(Sanitize(doc.Material), "\n") {
		pdf.MultiCell(0, pdfLineH, tr(line), "", "", false)
	}
	return pdf.Output(w)
}
