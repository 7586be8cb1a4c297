package pptx

import (
	"fmt"
	"strings"
)

func (s *Slide) xml() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld ` + rootNS + `><p:cSld>`)
	if s.Background != "" {
		b.WriteString(`<p:bg><p:bgPr>` + solidFill(s.Background) + `<a:effectLst/></p:bgPr></p:bg>`)
	}
	b.WriteString(`<p:spTree>` + emptyTree)
	for i, sh := range s.shapes {
		sh.writeXML(&b, i+2)
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func (t TextBox) writeXML(b *strings.Builder, id int) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, esc(t.Name))
	b.WriteString(`<p:spPr>`)
	writeXfrm(b, "a:xfrm", t.Box)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`)
	if t.Fill != "" {
		b.WriteString(solidFill(t.Fill))
	} else {
		b.WriteString(`<a:noFill/>`)
	}
	if t.Line != "" {
		b.WriteString(`<a:ln w="12700">` + solidFill(t.Line) + `</a:ln>`)
	}
	b.WriteString(`</p:spPr>`)

	anchor := t.Anchor
	if anchor == "" {
		anchor = "t"
	}
	fmt.Fprintf(b, `<p:txBody><a:bodyPr wrap="square" lIns="91440" tIns="45720" rIns="91440" bIns="45720" anchor="%s"><a:normAutofit/></a:bodyPr><a:lstStyle/>`, anchor)
	writeParagraphs(b, t.Paragraphs)
	b.WriteString(`</p:txBody></p:sp>`)
}

func (t Table) writeXML(b *strings.Builder, id int) {
	cols := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		cols = 1
	}
	rows := len(t.Rows)
	if len(t.Header) > 0 {
		rows++
	}
	if rows == 0 {
		rows = 1
	}
	size := t.FontSize
	if size == 0 {
		size = 12
	}

	fmt.Fprintf(b, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>`, id, esc(t.Name))
	writeXfrm(b, "p:xfrm", t.Box)
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>`)
	if len(t.Header) > 0 {
		b.WriteString(`<a:tblPr firstRow="1" bandRow="1"/>`)
	} else {
		b.WriteString(`<a:tblPr bandRow="1"/>`)
	}
	b.WriteString(`<a:tblGrid>`)
	colW := t.Box.W / int64(cols)
	for i := 0; i < cols; i++ {
		fmt.Fprintf(b, `<a:gridCol w="%d"/>`, colW)
	}
	b.WriteString(`</a:tblGrid>`)

	rowH := t.Box.H / int64(rows)
	if len(t.Header) > 0 {
		writeRow(b, t.Header, cols, rowH, Paragraph{Size: size, Bold: true, Color: t.HeaderText}, t.HeaderFill)
	}
	for _, r := range t.Rows {
		writeRow(b, r, cols, rowH, Paragraph{Size: size}, "")
	}
	if len(t.Header) == 0 && len(t.Rows) == 0 {
		writeRow(b, nil, cols, rowH, Paragraph{Size: size}, "")
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
}

func writeRow(b *strings.Builder, cells []string, cols int, h int64, style Paragraph, fill string) {
	fmt.Fprintf(b, `<a:tr h="%d">`, h)
	for i := 0; i < cols; i++ {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>`)
		var paras []Paragraph
		if text != "" {
			p := style
			p.Text = text
			paras = []Paragraph{p}
		}
		writeParagraphs(b, paras)
		b.WriteString(`</a:txBody><a:tcPr>`)
		if fill != "" {
			b.WriteString(solidFill(fill))
		}
		b.WriteString(`</a:tcPr></a:tc>`)
	}
	b.WriteString(`</a:tr>`)
}

func writeXfrm(b *strings.Builder, tag string, box Box) {
	fmt.Fprintf(b, `<%s><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></%s>`, tag, box.X, box.Y, box.W, box.H, tag)
}

func writeParagraphs(b *strings.Builder, paras []Paragraph) {
	if len(paras) == 0 {
		b.WriteString(`<a:p><a:endParaRPr lang="zh-CN"/></a:p>`)
		return
	}
	for _, p := range paras {
		b.WriteString(`<a:p>`)
		align := p.Align
		if align == "" {
			align = AlignLeft
		}
		if p.Bullet {
			fmt.Fprintf(b, `<a:pPr marL="285750" indent="-285750" algn="%s"><a:buFont typeface="Arial"/><a:buChar char="•"/></a:pPr>`, align)
		} else {
			fmt.Fprintf(b, `<a:pPr algn="%s"><a:buNone/></a:pPr>`, align)
		}
		size := p.Size
		if size == 0 {
			size = 14
		}
		fmt.Fprintf(b, `<a:r><a:rPr lang="zh-CN" altLang="en-US" sz="%d"`, int(size*100))
		if p.Bold {
			b.WriteString(` b="1"`)
		}
		b.WriteString(` dirty="0">`)
		if p.Color != "" {
			b.WriteString(solidFill(p.Color))
		}
		b.WriteString(`<a:latin typeface="` + fontFace + `"/><a:ea typeface="` + fontFace + `"/></a:rPr>`)
		b.WriteString(`<a:t>` + esc(p.Text) + `</a:t></a:r></a:p>`)
	}
}
