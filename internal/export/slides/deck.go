// Package slides lays a report out as a 16:9 slide deck, independently of the
// screen view, and builds the product brochures.
package slides

import (
	"strconv"
	"strings"

	"unipath-planner/internal/pptx"
	"unipath-planner/internal/report"
)

const (
	primary   = "7B4FA3"
	secondary = "B39CD0"
	white     = "FFFFFF"
	darkText  = "333333"
	muted     = "888888"
	faint     = "999999"

	brand       = "好保研 UNIPATH"
	slogan      = "好/保/研，保/好/研"
	sourcesLine = "Sources: Official University Admissions / Unipath Database"
	noData      = "暂无数据"
	continued   = "（续）"
)

// Items per slide before a section continues on the next one.
const (
	perSlideBullets  = 8
	perSlideAnalysis = 6
	perQuadrant      = 3
	perTableRows     = 8
	perSlideSchools  = 6
	perSlideTimeline = 8
	perColumn        = 6
)

var quadrantFill = map[string]string{
	"strengths":     "E6F4EA",
	"weaknesses":    "FCE8E6",
	"opportunities": "E8F0FE",
	"threats":       "FEF7E0",
}

type builder struct {
	deck *pptx.Deck
	doc  report.Document
}

// Deck builds the report deck. The recommendation is always the last slide.
func Deck(doc report.Document) *pptx.Deck {
	b := &builder{
		deck: pptx.New(doc.StudentName+" - 保研规划书", "好保研 Unipath"),
		doc:  doc,
	}
	b.cover()
	b.listSection(doc.Confusion)
	b.analysis()
	b.swot()
	b.stats()
	if s, ok := doc.Strategy("targetSchools"); ok {
		b.targetSchools(s)
	}
	if s, ok := doc.Strategy("timeline"); ok {
		b.timeline(s)
	}
	b.strategies()
	b.employment()
	b.recommendation()
	return b.deck
}

func (b *builder) cover() {
	s := b.deck.AddSlide(primary)
	s.AddText(pptx.TextBox{Name: "chrome product", Box: pptx.Rect(1, 2.3, 11.3, 1), Paragraphs: []pptx.Paragraph{
		{Text: b.doc.Recommendation.Name, Size: 40, Bold: true, Color: white},
	}})
	s.AddText(pptx.TextBox{Name: "chrome subtitle", Box: pptx.Rect(1, 3.4, 11.3, 0.7), Paragraphs: []pptx.Paragraph{
		{Text: "专属保研规划报告", Size: 24, Color: white},
	}})
	s.AddText(pptx.TextBox{Name: "content student", Box: pptx.Rect(1, 4.4, 11.3, 0.8), Paragraphs: []pptx.Paragraph{
		{Text: b.doc.Student, Size: 18, Color: "EEEEEE"},
	}})
	s.AddText(pptx.TextBox{Name: "chrome brand", Box: pptx.Rect(1, 6.4, 6, 0.5), Paragraphs: []pptx.Paragraph{
		{Text: "Unipath / 好保研", Size: 14, Bold: true, Color: white},
	}})
}

// page adds a content slide with the shared header and footer. When
// titleIsContent is set the title is part of the report content.
func (b *builder) page(title string, titleIsContent bool, cont bool) *pptx.Slide {
	s := b.deck.AddSlide("")
	n := len(b.deck.Slides)

	s.AddText(pptx.TextBox{Name: "chrome header", Box: pptx.Rect(0, 0, 13.33, 0.8), Fill: primary, Anchor: "ctr", Paragraphs: []pptx.Paragraph{
		{Text: brand, Size: 18, Bold: true, Color: white},
	}})
	s.AddText(pptx.TextBox{Name: "chrome slogan", Box: pptx.Rect(9.3, 0.15, 3.7, 0.5), Anchor: "ctr", Paragraphs: []pptx.Paragraph{
		{Text: slogan, Size: 12, Color: white, Align: pptx.AlignRight},
	}})

	name := "chrome title"
	if titleIsContent {
		name = "content title"
	}
	s.AddText(pptx.TextBox{Name: name, Box: pptx.Rect(0.5, 0.95, 10, 0.6), Paragraphs: []pptx.Paragraph{
		{Text: title, Size: 24, Bold: true, Color: primary},
	}})
	if cont {
		s.AddText(pptx.TextBox{Name: "chrome continued", Box: pptx.Rect(10.8, 1.0, 2, 0.5), Paragraphs: []pptx.Paragraph{
			{Text: continued, Size: 14, Color: muted, Align: pptx.AlignRight},
		}})
	}
	s.AddText(pptx.TextBox{Name: "chrome rule", Box: pptx.Box{X: pptx.Inches(0.5), Y: pptx.Inches(1.58), W: pptx.Inches(12.3), H: pptx.Inches(0.03)}, Fill: secondary})

	s.AddText(pptx.TextBox{Name: "chrome sources", Box: pptx.Rect(0.5, 7.0, 9, 0.35), Paragraphs: []pptx.Paragraph{
		{Text: sourcesLine, Size: 8, Color: muted},
	}})
	s.AddText(pptx.TextBox{Name: "chrome page", Box: pptx.Rect(12.0, 7.0, 0.9, 0.35), Paragraphs: []pptx.Paragraph{
		{Text: strconv.Itoa(n), Size: 10, Color: muted, Align: pptx.AlignRight},
	}})
	return s
}

func bullets(items []string, size float64, color string) []pptx.Paragraph {
	out := make([]pptx.Paragraph, len(items))
	for i, item := range items {
		out[i] = pptx.Paragraph{Text: item, Size: size, Color: color, Bullet: true}
	}
	return out
}

func placeholder(s *pptx.Slide, box pptx.Box) {
	s.AddText(pptx.TextBox{Name: "chrome empty", Box: box, Paragraphs: []pptx.Paragraph{
		{Text: noData, Size: 11, Color: faint, Bullet: true},
	}})
}

// chunk splits items into runs of at most n. It always returns at least one
// (possibly empty) run.
func chunk(items []string, n int) [][]string {
	if len(items) == 0 {
		return [][]string{nil}
	}
	var out [][]string
	for len(items) > n {
		out = append(out, items[:n])
		items = items[n:]
	}
	return append(out, items)
}

func pages(count, per int) int {
	if count <= per {
		return 1
	}
	return (count + per - 1) / per
}

func window(items []string, page, per int) []string {
	start := page * per
	if start >= len(items) {
		return nil
	}
	end := start + per
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (b *builder) listSection(sec report.Section) {
	for i, items := range chunk(sec.Items, perSlideBullets) {
		s := b.page(sec.Title, true, i > 0)
		box := pptx.Rect(0.7, 1.9, 11.9, 4.9)
		if len(items) == 0 {
			placeholder(s, box)
			continue
		}
		s.AddText(pptx.TextBox{Name: "content items", Box: box, Paragraphs: bullets(items, 16, darkText)})
	}
}

func (b *builder) analysis() {
	sec := b.doc.Analysis
	for i, items := range chunk(sec.Items, perSlideAnalysis) {
		s := b.page(sec.Title, true, i > 0)
		top := 1.9
		if i == 0 {
			s.AddText(pptx.TextBox{Name: "chrome summary box", Box: pptx.Rect(0.5, 1.8, 12.3, 1.3), Fill: "F3F3F3", Paragraphs: []pptx.Paragraph{
				{Text: "核心综述", Size: 14, Bold: true, Color: primary},
			}})
			s.AddText(pptx.TextBox{Name: "content summary", Box: pptx.Rect(0.7, 2.25, 11.9, 0.8), Paragraphs: []pptx.Paragraph{
				{Text: b.doc.Summary, Size: 12, Color: darkText},
			}})
			top = 3.3
		}
		box := pptx.Rect(0.7, top, 11.9, 6.8-top)
		if len(items) == 0 {
			placeholder(s, box)
			continue
		}
		s.AddText(pptx.TextBox{Name: "content analysis", Box: box, Paragraphs: bullets(items, 14, darkText)})
	}
}

func (b *builder) swot() {
	most := 0
	for _, q := range b.doc.SWOT {
		if len(q.Items) > most {
			most = len(q.Items)
		}
	}
	positions := [][2]float64{{0.5, 1.8}, {6.8, 1.8}, {0.5, 4.4}, {6.8, 4.4}}

	for p := 0; p < pages(most, perQuadrant); p++ {
		s := b.page("SWOT 分析模型", false, p > 0)
		for i, q := range b.doc.SWOT {
			if i >= len(positions) {
				break
			}
			x, y := positions[i][0], positions[i][1]
			s.AddText(pptx.TextBox{Name: "chrome quadrant " + q.Key, Box: pptx.Rect(x, y, 6.0, 2.4), Fill: quadrantFill[q.Key], Paragraphs: []pptx.Paragraph{
				{Text: q.Letter + " - " + q.Heading, Size: 14, Bold: true, Color: q.Color},
			}})
			box := pptx.Rect(x+0.2, y+0.6, 5.6, 1.7)
			items := window(q.Items, p, perQuadrant)
			switch {
			case len(items) > 0:
				s.AddText(pptx.TextBox{Name: "content " + q.Key, Box: box, Paragraphs: bullets(items, 11, darkText)})
			case p == 0:
				placeholder(s, box)
			}
		}
	}
}

func (b *builder) stats() {
	most := 0
	for _, t := range b.doc.Stats {
		if len(t.Rows) > most {
			most = len(t.Rows)
		}
	}

	for p := 0; p < pages(most, perTableRows); p++ {
		s := b.page("院校数据", false, p > 0)
		for i, t := range b.doc.Stats {
			x := 0.5 + float64(i)*4.15
			s.AddText(pptx.TextBox{Name: "chrome heading " + t.Key, Box: pptx.Rect(x, 1.8, 4.0, 0.45), Paragraphs: []pptx.Paragraph{
				{Text: t.Heading, Size: 14, Bold: true, Color: primary},
			}})

			start := p * perTableRows
			if start >= len(t.Rows) {
				if p == 0 {
					placeholder(s, pptx.Rect(x, 2.3, 4.0, 0.5))
				}
				continue
			}
			end := start + perTableRows
			if end > len(t.Rows) {
				end = len(t.Rows)
			}
			rows := make([][]string, 0, end-start)
			for _, r := range t.Rows[start:end] {
				rows = append(rows, []string{r.Left, r.Right})
			}
			s.AddTable(pptx.Table{
				Name:       "content table " + t.Key,
				Box:        pptx.Rect(x, 2.3, 4.0, 0.5*float64(len(rows)+1)),
				Header:     t.Columns[:],
				Rows:       rows,
				HeaderFill: primary,
				HeaderText: white,
				FontSize:   11,
			})
		}
	}
}

func (b *builder) targetSchools(sec report.Section) {
	for p, items := range chunk(sec.Items, perSlideSchools) {
		s := b.page(sec.Title, true, p > 0)
		if len(items) == 0 {
			placeholder(s, pptx.Rect(0.7, 2.0, 11.9, 0.5))
			continue
		}
		half := (len(items) + 1) / 2
		for i, item := range items {
			x, row := 0.5, i
			if i >= half {
				x, row = 6.8, i-half
			}
			s.AddText(pptx.TextBox{
				Name:       "content school",
				Box:        pptx.Rect(x, 1.9+float64(row)*1.6, 6.0, 1.4),
				Fill:       "FAFAFA",
				Line:       "CCCCCC",
				Paragraphs: []pptx.Paragraph{{Text: item, Size: 12, Color: darkText}},
			})
		}
	}
}

func (b *builder) timeline(sec report.Section) {
	for p, items := range chunk(sec.Items, perSlideTimeline) {
		s := b.page(sec.Title, true, p > 0)
		if len(items) == 0 {
			placeholder(s, pptx.Rect(0.7, 2.0, 11.9, 0.5))
			continue
		}
		for i, item := range items {
			col, row := i%4, i/4
			s.AddText(pptx.TextBox{
				Name:       "content milestone",
				Box:        pptx.Rect(0.5+float64(col)*3.1, 2.0+float64(row)*2.3, 2.9, 2.0),
				Fill:       secondary,
				Anchor:     "ctr",
				Paragraphs: []pptx.Paragraph{{Text: item, Size: 12, Color: white, Align: pptx.AlignCenter}},
			})
		}
	}
}

// strategies lays out every strategy section other than target schools and
// the timeline side by side.
func (b *builder) strategies() {
	var cols []report.Section
	for _, sec := range b.doc.Strategies {
		if sec.Key == "targetSchools" || sec.Key == "timeline" {
			continue
		}
		cols = append(cols, sec)
	}
	if len(cols) == 0 {
		return
	}

	most := 0
	for _, c := range cols {
		if len(c.Items) > most {
			most = len(c.Items)
		}
	}
	width := 12.3/float64(len(cols)) - 0.2

	for p := 0; p < pages(most, perColumn); p++ {
		s := b.page("核心策略", false, p > 0)
		for i, c := range cols {
			x := 0.5 + float64(i)*(width+0.2)
			s.AddText(pptx.TextBox{Name: "content heading " + c.Key, Box: pptx.Rect(x, 1.8, width, 0.5), Paragraphs: []pptx.Paragraph{
				{Text: c.Title, Size: 16, Bold: true, Color: primary},
			}})
			box := pptx.Rect(x, 2.4, width, 4.4)
			items := window(c.Items, p, perColumn)
			switch {
			case len(items) > 0:
				s.AddText(pptx.TextBox{Name: "content " + c.Key, Box: box, Paragraphs: bullets(items, 12, darkText)})
			case p == 0:
				placeholder(s, box)
			}
		}
	}
}

func (b *builder) employment() {
	e := b.doc.Employment
	s := b.page("就业展望", false, false)

	s.AddText(pptx.TextBox{Name: "chrome employment box", Box: pptx.Rect(0.5, 1.8, 12.3, 1.4), Fill: "F3E5F5"})
	s.AddText(pptx.TextBox{Name: "content employment title", Box: pptx.Rect(0.7, 1.9, 11.9, 0.5), Paragraphs: []pptx.Paragraph{
		{Text: e.Title, Size: 16, Bold: true, Color: primary},
	}})
	s.AddText(pptx.TextBox{Name: "chrome salary label", Box: pptx.Rect(0.7, 2.5, 1.6, 0.5), Paragraphs: []pptx.Paragraph{
		{Text: "预估年薪：", Size: 14, Bold: true, Color: darkText},
	}})
	s.AddText(pptx.TextBox{Name: "content salary", Box: pptx.Rect(2.3, 2.5, 10.3, 0.5), Paragraphs: []pptx.Paragraph{
		{Text: e.Salary, Size: 14, Bold: true, Color: primary},
	}})

	lists := []struct {
		key, label string
		items      []string
		x          float64
	}{
		{"companies", "重点去向", e.Companies, 0.5},
		{"roles", "典型岗位", e.Roles, 6.8},
	}
	for _, l := range lists {
		s.AddText(pptx.TextBox{Name: "chrome label " + l.key, Box: pptx.Rect(l.x, 3.5, 6.0, 0.5), Paragraphs: []pptx.Paragraph{
			{Text: l.label, Size: 14, Bold: true, Color: primary},
		}})
		box := pptx.Rect(l.x, 4.0, 6.0, 2.8)
		if len(l.items) == 0 {
			placeholder(s, box)
			continue
		}
		s.AddText(pptx.TextBox{Name: "content " + l.key, Box: box, Paragraphs: bullets(l.items, 12, darkText)})
	}
}

func (b *builder) recommendation() {
	r := b.doc.Recommendation
	bg := strings.TrimPrefix(r.Color, "#")
	if bg == "" {
		bg = primary
	}
	s := b.deck.AddSlide(bg)

	s.AddText(pptx.TextBox{Name: "chrome intro", Box: pptx.Rect(0.8, 0.5, 8, 0.5), Paragraphs: []pptx.Paragraph{
		{Text: "为你推荐", Size: 16, Color: white},
	}})
	s.AddText(pptx.TextBox{Name: "content product name", Box: pptx.Rect(0.8, 1.0, 11.5, 1.0), Paragraphs: []pptx.Paragraph{
		{Text: r.Name, Size: 36, Bold: true, Color: white},
	}})
	s.AddText(pptx.TextBox{Name: "content product tagline", Box: pptx.Rect(0.8, 2.0, 11.5, 0.6), Paragraphs: []pptx.Paragraph{
		{Text: r.Tagline, Size: 20, Color: "EEEEEE"},
	}})
	s.AddText(pptx.TextBox{Name: "content product description", Box: pptx.Rect(0.8, 2.7, 7.8, 1.5), Paragraphs: []pptx.Paragraph{
		{Text: r.Description, Size: 14, Color: white},
	}})
	if len(r.Features) > 0 {
		s.AddText(pptx.TextBox{Name: "content product features", Box: pptx.Rect(0.8, 4.3, 7.8, 2.5), Paragraphs: bullets(r.Features, 13, white)})
	}
	s.AddText(pptx.TextBox{Name: "chrome call to action", Box: pptx.Rect(9.0, 4.3, 3.5, 2.0), Fill: white, Anchor: "ctr", Paragraphs: []pptx.Paragraph{
		{Text: "立即咨询", Size: 20, Bold: true, Color: primary, Align: pptx.AlignCenter},
		{Text: "开启保研之路", Size: 14, Color: primary, Align: pptx.AlignCenter},
	}})
	if b.doc.Contact != "" {
		s.AddText(pptx.TextBox{Name: "chrome contact", Box: pptx.Rect(0.8, 6.9, 11.5, 0.4), Paragraphs: []pptx.Paragraph{
			{Text: b.doc.Contact, Size: 10, Color: white},
		}})
	}
}
