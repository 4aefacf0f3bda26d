package formatter

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Formatter interface {
	Format(req *entity.DocumentRequest) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	fontPath string
}

// NewFactory creates a formatter factory. fontPath points to a TTF font used by
// the PDF formatter, empty means the bundled lookup locations.
func NewFactory(fontPath string) *Factory {
	return &Factory{fontPath: fontPath}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.fontPath), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format: %s", entity.ErrInvalidFormat, format)
	}
}

// Renderer turns a document request into an artifact with a single formatter
type Renderer struct {
	formatter Formatter
}

func NewRenderer(formatter Formatter) *Renderer {
	return &Renderer{formatter: formatter}
}

func (r *Renderer) Render(ctx context.Context, req *entity.DocumentRequest) (*entity.Artifact, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: document request", entity.ErrMissingField)
	}

	data, err := r.formatter.Format(req)
	if err != nil {
		return nil, fmt.Errorf("format document: %w", err)
	}

	artifact := &entity.Artifact{
		ID:            uuid.NewString(),
		Data:          data,
		ContentType:   r.formatter.ContentType(),
		FileExtension: r.formatter.FileExtension(),
		CreatedAt:     time.Now().UTC(),
	}

	ctxzap.Info(ctx, "document rendered",
		zap.String("content_type", artifact.ContentType),
		zap.Int("size", len(data)),
	)

	return artifact, nil
}
