package formatter

import (
	"bytes"
	"strings"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(req *entity.DocumentRequest) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	addLines := func(text string, size measurement.Distance, bold bool) {
		para := doc.AddParagraph()
		run := para.AddRun()
		run.Properties().SetSize(size)
		run.Properties().SetBold(bold)
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				run.AddBreak()
			}
			run.AddText(line)
		}
	}

	addLines(req.Header, headerFontSize*measurement.Point, true)
	addLines(req.Contact, contactFontSize*measurement.Point, false)
	doc.AddParagraph()

	for _, para := range splitParagraphs(req.Body) {
		addLines(para, bodyFontSize*measurement.Point, false)
	}

	doc.AddParagraph()
	addLines(req.Signature, signatureFontSize*measurement.Point, false)

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

// splitParagraphs splits text on blank lines and drops empty chunks
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, chunk := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, strings.Trim(chunk, "\n"))
		}
	}
	return out
}
