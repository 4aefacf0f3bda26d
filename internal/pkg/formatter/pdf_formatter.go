package formatter

import (
	"bytes"
	"os"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In Docker runtime fonts are copied to /app/ttf
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

// Letter layout on an A4 page, millimetres
const (
	pageX     = 10.0
	pageWidth = 190.0

	headerY        = 10.0
	headerFontSize = 14.0

	contactY        = 30.0
	contactFontSize = 10.0

	bodyY        = 65.0
	bodyFontSize = 11.0

	signatureY        = 250.0
	signatureFontSize = 11.0

	lineSpacing = 1.4
	bottomLimit = 15.0
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

// resolveFontPath tries the configured font, then the runtime layout
// (next to the binary), then the source layout.
func (mf *PDFFormatter) resolveFontPath() string {
	for _, path := range []string{mf.fontPath, pdfFontRuntimePath, pdfFontSourcePath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(req *entity.DocumentRequest) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, bottomLimit)
	pdf.SetMargins(pageX, headerY, pageX)
	pdf.AddPage()

	fontName := "Arial"
	translate := func(s string) string { return s }
	if fontPath := mf.resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	} else {
		// core fonts only cover cp1252
		translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	block := func(y float64, style string, size float64, text string) {
		pdf.SetXY(pageX, y)
		pdf.SetFont(fontName, style, size)
		_, unitSize := pdf.GetFontSize()
		pdf.MultiCell(pageWidth, unitSize*lineSpacing, translate(text), "", "L", false)
	}

	block(headerY, "B", headerFontSize, req.Header)
	block(contactY, "", contactFontSize, req.Contact)
	block(bodyY, "", bodyFontSize, req.Body)

	// signature keeps its slot unless the body ran past it
	sigY := signatureY
	if pdf.PageNo() > 1 || pdf.GetY() > signatureY {
		sigY = pdf.GetY() + 5
	}
	block(sigY, "", signatureFontSize, req.Signature)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
