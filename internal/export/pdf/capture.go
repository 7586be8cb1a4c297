// internal/export/pdf/capture.go
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"unipath-planner/internal/render/screen"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrRegionNotFound = errors.New("capture region not found")

// CaptureRegion extracts the element with the given id from a rendered page,
// drops every export-excluded subtree and wraps the result, together with the
// page's <style> elements, into a standalone document ready for printing.
func CaptureRegion(page []byte, id string) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	region := findByID(root, id)
	if region == nil {
		return nil, fmt.Errorf("%w: #%s", ErrRegionNotFound, id)
	}
	stripIgnored(region)

	var styles []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			styles = append(styles, n)
			return false
		}
		return true
	})

	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html><html lang="zh-CN"><head><meta charset="utf-8">`)
	for _, s := range styles {
		if err := html.Render(&buf, s); err != nil {
			return nil, fmt.Errorf("render style: %w", err)
		}
	}
	buf.WriteString(`</head><body>`)
	if err := html.Render(&buf, region); err != nil {
		return nil, fmt.Errorf("render region: %w", err)
	}
	buf.WriteString(`</body></html>`)
	return buf.Bytes(), nil
}

// VisibleContent returns the text of every content-marked element that is not
// inside an export-excluded subtree, in document order.
func VisibleContent(r io.Reader) ([]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var out []string
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if hasAttr(n, screen.ExportIgnoreAttr) {
			return false
		}
		if hasAttr(n, screen.ContentAttr) {
			out = append(out, textOf(n))
			return false
		}
		return true
	})
	return out, nil
}

// walk visits n depth-first; visit returns false to skip the children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func stripIgnored(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && hasAttr(c, screen.ExportIgnoreAttr) {
			n.RemoveChild(c)
		} else {
			stripIgnored(c)
		}
		c = next
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
