package formatter_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/pkg/formatter"
)

func letter() *entity.DocumentRequest {
	return &entity.DocumentRequest{
		Header:    "Ada Lovelace - Cover Letter",
		Contact:   "ada@example.com | 555-0100",
		Body:      "Dear Hiring Manager,\n\nI am excited to apply.\n\nThank you.",
		Signature: "Sincerely,\nAda Lovelace",
	}
}

func TestFactoryCreate(t *testing.T) {
	f := formatter.NewFactory("")

	tests := []struct {
		format entity.ResultFormat
		ext    string
	}{
		{entity.FormatPDF, ".pdf"},
		{entity.FormatDOCX, ".docx"},
		{entity.FormatMarkdown, ".md"},
	}
	for _, tt := range tests {
		fm, err := f.Create(tt.format)
		if err != nil {
			t.Fatalf("create %s: %v", tt.format, err)
		}
		if fm.FileExtension() != tt.ext {
			t.Fatalf("%s extension = %q", tt.format, fm.FileExtension())
		}
	}

	if _, err := f.Create("odt"); !errors.Is(err, entity.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := formatter.NewMarkdownFormatter().Format(letter())
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	text := string(out)
	if !strings.HasPrefix(text, "# Ada Lovelace - Cover Letter\n\nada@example.com | 555-0100\n\n") {
		t.Fatalf("unexpected header block: %q", text)
	}
	if !strings.Contains(text, "I am excited to apply.") {
		t.Fatal("body missing")
	}
	if !strings.HasSuffix(text, "Sincerely,  \nAda Lovelace\n") {
		t.Fatalf("unexpected signature block: %q", text)
	}
}

func TestPDFFormatter(t *testing.T) {
	out, err := formatter.NewPDFFormatter("").Format(letter())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestPDFFormatterLongBody(t *testing.T) {
	req := letter()
	req.Body = strings.Repeat("A long paragraph about relevant experience. ", 400)

	out, err := formatter.NewPDFFormatter("").Format(req)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderer(t *testing.T) {
	r := formatter.NewRenderer(formatter.NewMarkdownFormatter())

	a, err := r.Render(context.Background(), letter())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if a.ID == "" || len(a.Data) == 0 || a.ContentType != "text/markdown; charset=utf-8" {
		t.Fatalf("unexpected artifact: %+v", a)
	}
	if a.Filename() != "cover-letter-"+a.ID+".md" {
		t.Fatalf("filename = %q", a.Filename())
	}

	if _, err := r.Render(context.Background(), nil); !errors.Is(err, entity.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}
