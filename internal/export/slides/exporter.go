package slides

import (
	"context"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/metrics"
	"unipath-planner/internal/models"
	"unipath-planner/internal/pptx"
	"unipath-planner/internal/report"
)

// FileName is the deterministic download name for a student's deck.
func FileName(studentName string) string {
	return "好保研规划_" + studentName + ".pptx"
}

type Exporter struct {
	logger logger.Logger
}

func NewExporter(log logger.Logger) *Exporter {
	return &Exporter{logger: log.WithFields(map[string]interface{}{"exporter": "pptx"})}
}

// Export returns the packaged report deck or an EXPORT_FAILED error.
func (e *Exporter) Export(ctx context.Context, doc report.Document) ([]byte, error) {
	return e.write(ctx, "report", func() *pptx.Deck { return Deck(doc) })
}

// Brochure returns the packaged brochure of a product.
func (e *Exporter) Brochure(ctx context.Context, p models.Product, contact string) ([]byte, error) {
	return e.write(ctx, "brochure", func() *pptx.Deck { return Brochure(p, contact) })
}

func (e *Exporter) write(ctx context.Context, kind string, build func() *pptx.Deck) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, e.fail(kind, err)
	}
	data, err := build().Bytes()
	if err != nil {
		return nil, e.fail(kind, err)
	}
	metrics.Exports.WithLabelValues("pptx", metrics.OutcomeSuccess).Inc()
	e.logger.Debug("deck exported", map[string]interface{}{"kind": kind, "bytes": len(data)})
	return data, nil
}

func (e *Exporter) fail(kind string, err error) error {
	metrics.Exports.WithLabelValues("pptx", metrics.OutcomeFailure).Inc()
	e.logger.Error("pptx export failed", map[string]interface{}{"kind": kind, "error": err})
	return apperrors.NewExportError("pptx", err)
}
