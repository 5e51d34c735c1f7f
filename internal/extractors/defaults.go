package extractors

import (
	"github.com/custodia-labs/planroom/internal/extractors/docx"
	"github.com/custodia-labs/planroom/internal/extractors/eml"
	"github.com/custodia-labs/planroom/internal/extractors/html"
	"github.com/custodia-labs/planroom/internal/extractors/markdown"
	"github.com/custodia-labs/planroom/internal/extractors/pdf"
	"github.com/custodia-labs/planroom/internal/extractors/plaintext"
	"github.com/custodia-labs/planroom/internal/logger"
)

// RegisterDefaults registers the built-in extractors. PDF support is
// skipped with a warning when pdftotext is not installed.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(eml.New())

	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("PDF ingestion disabled: %v", err)
		logger.Warn("%s", pdf.InstallInstructions())
		return
	}
	r.Register(pdf.New())
}
