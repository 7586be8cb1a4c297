// internal/export/pdf/printer.go
package pdf

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Printer turns a standalone HTML document into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, document []byte) ([]byte, error)
}

// A4 in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
	margin   = 0.4
)

// livenessTimeout bounds the check on a cached browser connection.
const livenessTimeout = 3 * time.Second

// RodPrinter prints through headless Chrome. The browser is started on first
// use and reused until Close.
type RodPrinter struct {
	bin        string
	controlURL string

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

// NewRodPrinter connects to controlURL when set, otherwise launches bin (or
// the launcher's default browser when bin is empty).
func NewRodPrinter(bin, controlURL string) *RodPrinter {
	return &RodPrinter{bin: bin, controlURL: controlURL}
}

func (p *RodPrinter) connect(ctx context.Context) (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		if _, err := p.browser.Context(ctx).Timeout(livenessTimeout).Version(); err == nil {
			return p.browser, nil
		}
		_ = p.release()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	controlURL := p.controlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if p.bin != "" {
			l = l.Bin(p.bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		p.launched = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		_ = p.release()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	p.browser = browser
	return browser, nil
}

// release drops the browser connection and stops a browser this printer
// launched. Callers hold mu.
func (p *RodPrinter) release() error {
	var err error
	if p.browser != nil {
		err = p.browser.Timeout(livenessTimeout).Close()
		p.browser = nil
	}
	if p.launched != nil {
		p.launched.Kill()
		p.launched.Cleanup()
		p.launched = nil
	}
	return err
}

func (p *RodPrinter) PrintPDF(ctx context.Context, document []byte) ([]byte, error) {
	browser, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetDocumentContent(string(document)); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	w, h, m := a4Width, a4Height, margin
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &w,
		PaperHeight:     &h,
		MarginTop:       &m,
		MarginBottom:    &m,
		MarginLeft:      &m,
		MarginRight:     &m,
	})
	if err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return data, nil
}

// Close shuts the browser down and removes a launched browser's profile.
func (p *RodPrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.release()
}
