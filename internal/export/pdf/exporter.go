// Package pdf exports a report as a faithful capture of its screen rendering.
package pdf

import (
	"bytes"
	"context"
	"time"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/metrics"
	"unipath-planner/internal/render/screen"
	"unipath-planner/internal/report"
)

// FileName is the deterministic download name for a student's report.
func FileName(studentName string) string {
	return "好保研规划_" + studentName + ".pdf"
}

// Exporter renders the screen view, captures its report region and prints it.
type Exporter struct {
	screen  *screen.Renderer
	printer Printer
	timeout time.Duration
	logger  logger.Logger
}

func NewExporter(renderer *screen.Renderer, printer Printer, timeout time.Duration, log logger.Logger) *Exporter {
	return &Exporter{
		screen:  renderer,
		printer: printer,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"exporter": "pdf"}),
	}
}

// Export returns the PDF bytes. Any failure is an EXPORT_FAILED error; no
// partial document is returned.
func (e *Exporter) Export(ctx context.Context, doc report.Document) ([]byte, error) {
	data, err := e.export(ctx, doc)
	if err != nil {
		metrics.Exports.WithLabelValues("pdf", metrics.OutcomeFailure).Inc()
		e.logger.Error("pdf export failed", map[string]interface{}{"error": err})
		return nil, apperrors.NewExportError("pdf", err)
	}
	metrics.Exports.WithLabelValues("pdf", metrics.OutcomeSuccess).Inc()
	return data, nil
}

func (e *Exporter) export(ctx context.Context, doc report.Document) ([]byte, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var page bytes.Buffer
	if err := e.screen.Report(&page, doc, screen.Links{}); err != nil {
		return nil, err
	}
	region, err := CaptureRegion(page.Bytes(), screen.CaptureID)
	if err != nil {
		return nil, err
	}
	return e.printer.PrintPDF(ctx, region)
}
