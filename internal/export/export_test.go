package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const material = "### Key Concepts\n- **Mitosis** — cell division\n- “Quoted” term 🧠\n\n### Flashcards\nQ: What?\nA: That."

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"md", FormatMarkdown, false},
		{".PDF", FormatPDF, false},
		{"docx", FormatDOCX, false},
		{"markdown", FormatMarkdown, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) = (%q, %v)", tt.in, got, err)
		}
		if err != nil && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("error not ErrUnknownFormat: %v", err)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := FormatPDF.Filename(BaseName); got != "study_material.pdf" {
		t.Errorf("Filename = %s", got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a — b – c", "a - b - c"},
		{"“hi” ‘there’", `"hi" 'there'`},
		{"• point", "- point"},
		{"🔑 key 📘", " key "},
		{"café", "café"},
		{"日本語 text", " text"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, Document{Title: "ignored", Material: material}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != material {
		t.Errorf("markdown export must be verbatim, got %q", buf.String())
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat(material+"\n", 40)
	if err := Write(&buf, FormatPDF, Document{Title: "Lecture", Material: long}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestWriteDOCX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatDOCX, Document{Title: "Lecture", Material: material}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	var body string
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		body = string(data)
	}
	for _, want := range []string{"Lecture", "Key Concepts", "Mitosis", "Q: What?"} {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
	if strings.Contains(body, "**") || strings.Contains(body, "###") {
		t.Error("markdown markers leaked into docx")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FormatMarkdown.Filename("lecture"))
	if err := WriteFile(path, FormatMarkdown, Document{Material: "notes"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "notes" {
		t.Errorf("content = %q", data)
	}

	bad := filepath.Join(dir, "x.bin")
	if err := WriteFile(bad, Format("bin"), Document{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("failed export left a file behind")
	}
}
