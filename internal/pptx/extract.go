package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// SlideText is the text found on one slide, split by shape kind.
type SlideText struct {
	Number  int
	Content []string
	Chrome  []string
}

// ExtractBytes is ExtractText over an in-memory archive.
func ExtractBytes(data []byte) ([]SlideText, error) {
	return ExtractText(bytes.NewReader(data), int64(len(data)))
}

// ExtractText reads every slide of a .pptx archive in presentation order and
// returns its paragraphs. Paragraphs of shapes named with ContentPrefix are
// content, except the header row of a table; everything else is chrome.
func ExtractText(r io.ReaderAt, size int64) ([]SlideText, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("pptx: open archive: %w", err)
	}

	type slideFile struct {
		n int
		f *zip.File
	}
	var files []slideFile
	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, "ppt/slides/slide")
		if name == f.Name || !strings.HasSuffix(name, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".xml"))
		if err != nil {
			continue
		}
		files = append(files, slideFile{n, f})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	out := make([]SlideText, 0, len(files))
	for _, sf := range files {
		rc, err := sf.f.Open()
		if err != nil {
			return nil, fmt.Errorf("pptx: open slide %d: %w", sf.n, err)
		}
		st, err := extractSlide(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("pptx: slide %d: %w", sf.n, err)
		}
		st.Number = sf.n
		out = append(out, st)
	}
	return out, nil
}

// Content flattens the content paragraphs of all slides.
func Content(slides []SlideText) []string {
	var out []string
	for _, s := range slides {
		out = append(out, s.Content...)
	}
	return out
}

func extractSlide(r io.Reader) (SlideText, error) {
	var (
		st        SlideText
		shapeName string
		inShape   bool
		headerRow bool
		row       int
		inText    bool
		para      *strings.Builder
	)

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == nsP && (t.Name.Local == "sp" || t.Name.Local == "graphicFrame"):
				inShape, shapeName, headerRow, row = true, "", false, 0
			case t.Name.Space == nsP && t.Name.Local == "cNvPr":
				if inShape && shapeName == "" {
					shapeName = attrValue(t, "name")
				}
			case t.Name.Space == nsA && t.Name.Local == "tblPr":
				headerRow = attrValue(t, "firstRow") == "1"
			case t.Name.Space == nsA && t.Name.Local == "tr":
				row++
			case t.Name.Space == nsA && t.Name.Local == "p":
				para = &strings.Builder{}
			case t.Name.Space == nsA && t.Name.Local == "t":
				inText = true
			case t.Name.Space == nsA && t.Name.Local == "br":
				if para != nil {
					para.WriteString("\n")
				}
			}
		case xml.CharData:
			if inText && para != nil {
				para.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Space == nsA && t.Name.Local == "t":
				inText = false
			case t.Name.Space == nsA && t.Name.Local == "p":
				if para != nil && strings.TrimSpace(para.String()) != "" {
					text := para.String()
					if strings.HasPrefix(shapeName, ContentPrefix) && !(headerRow && row == 1) {
						st.Content = append(st.Content, text)
					} else {
						st.Chrome = append(st.Chrome, text)
					}
				}
				para = nil
			case t.Name.Space == nsP && (t.Name.Local == "sp" || t.Name.Local == "graphicFrame"):
				inShape = false
			}
		}
	}
}

func attrValue(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
