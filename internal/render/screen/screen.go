// Package screen renders the interactive HTML view of a report and the
// profile form.
package screen

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"unipath-planner/internal/models"
	"unipath-planner/internal/report"
)

// Markers shared with the PDF capture.
const (
	CaptureID        = "pdf-content"
	ContentAttr      = "data-content"
	ExportIgnoreAttr = "data-export-ignore"
	ProductAttr      = "data-product"
)

//go:embed templates/*.html
var templateFS embed.FS

// ProductLink points the header navigation at a product page.
type ProductLink struct {
	Href  string
	Label string
}

// Links are the toolbar targets. Empty links are not rendered.
type Links struct {
	PDF      string
	PPTX     string
	NewPlan  string
	Products []ProductLink
}

type Field struct {
	Name     string
	Label    string
	Value    string
	Required bool
	Long     bool
}

type GradeOption struct {
	Value    models.Grade
	Selected bool
}

// FormData is the profile form state, echoed back after a failed submit.
type FormData struct {
	Action   string
	Profile  models.Profile
	Error    string
	Products []ProductLink
}

// ProductPage is a catalog entry with its brochure download.
type ProductPage struct {
	Product  models.Product
	Contact  string
	Brochure string
	Products []ProductLink
}

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("screen").Funcs(template.FuncMap{
		"safeCSS": func(s string) template.CSS { return template.CSS(s) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse screen templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustNew is New for package-level wiring; the templates are embedded.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Report writes the full report page. Everything a reader sees about the plan
// sits inside the capture region.
func (r *Renderer) Report(w io.Writer, doc report.Document, links Links) error {
	return r.tmpl.ExecuteTemplate(w, "report", struct {
		Doc   report.Document
		Links Links
	}{doc, links})
}

func (r *Renderer) Product(w io.Writer, page ProductPage) error {
	return r.tmpl.ExecuteTemplate(w, "product", page)
}

func (r *Renderer) Form(w io.Writer, data FormData) error {
	if data.Action == "" {
		data.Action = "/plans"
	}
	p := data.Profile
	view := struct {
		FormData
		Fields []Field
		Grades []GradeOption
	}{FormData: data}

	view.Fields = []Field{
		{Name: "name", Label: "姓名", Value: p.Name, Required: true},
		{Name: "contact", Label: "联系方式（手机/微信）", Value: p.Contact, Required: true},
		{Name: "university", Label: "本科院校", Value: p.University, Required: true},
		{Name: "major", Label: "专业", Value: p.Major, Required: true},
		{Name: "rank", Label: "排名/绩点", Value: p.Rank, Required: true},
		{Name: "englishLevel", Label: "英语水平", Value: p.EnglishLevel, Required: true},
		{Name: "awards", Label: "获奖经历", Value: p.Awards, Long: true},
		{Name: "research", Label: "科研论文", Value: p.Research, Long: true},
		{Name: "targetDirection", Label: "意向方向", Value: p.TargetDirection, Required: true},
		{Name: "confusion", Label: "你最想咨询的问题", Value: p.Confusion, Required: true, Long: true},
	}
	for _, g := range models.Grades {
		view.Grades = append(view.Grades, GradeOption{Value: g, Selected: g == p.Grade})
	}
	return r.tmpl.ExecuteTemplate(w, "form", view)
}
