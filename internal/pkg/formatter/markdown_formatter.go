package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/coverletter-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(req *entity.DocumentRequest) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", req.Header)
	if req.Contact != "" {
		fmt.Fprintf(&buf, "%s\n\n", req.Contact)
	}
	fmt.Fprintf(&buf, "%s\n\n", strings.TrimRight(req.Body, "\n"))
	// trailing double space keeps the line break in rendered markdown
	fmt.Fprintf(&buf, "%s\n", strings.ReplaceAll(req.Signature, "\n", "  \n"))
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
