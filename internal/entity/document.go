package entity

import "time"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// DocumentRequest carries the four text fields placed into the rendered letter
type DocumentRequest struct {
	Header    string `json:"header"`
	Contact   string `json:"contact"`
	Body      string `json:"body"`
	Signature string `json:"signature"`
}

// Artifact is a rendered binary document
type Artifact struct {
	ID            string    `json:"id"`
	Data          []byte    `json:"-"`
	ContentType   string    `json:"content_type"`
	FileExtension string    `json:"file_extension"`
	CreatedAt     time.Time `json:"created_at"`
}

// Filename returns the download name of the artifact
func (a *Artifact) Filename() string {
	return "cover-letter-" + a.ID + a.FileExtension
}
