// Package report derives the single rendering model shared by the screen view,
// the PDF capture and the slide deck. Renderers lay out a Document; they never
// read a models.Plan directly.
package report

import (
	"fmt"
	"strings"

	"unipath-planner/internal/models"
	"unipath-planner/internal/plan"
)

// Section is a titled list of advice lines.
type Section struct {
	Key   string
	Title string
	Items []string
}

// Pair is one row of a two-column statistics table.
type Pair struct {
	Left  string
	Right string
}

// Table is a statistics table. Heading and Columns are fixed labels.
type Table struct {
	Key     string
	Heading string
	Columns [2]string
	Rows    []Pair
}

// Quadrant is one SWOT box. Letter and Heading are fixed labels.
type Quadrant struct {
	Key     string
	Letter  string
	Heading string
	Color   string
	Items   []string
}

type Employment struct {
	Title     string
	Salary    string
	Companies []string
	Roles     []string
}

// Recommendation is the product a plan routes to.
type Recommendation struct {
	Key         models.Recommendation
	Name        string
	Tagline     string
	Description string
	Color       string
	Features    []string
}

// Document is the ordered, sanitized content of one report.
type Document struct {
	StudentName    string
	Student        string
	Confusion      Section
	Summary        string
	Stats          []Table
	SWOT           []Quadrant
	Analysis       Section
	Strategies     []Section
	Employment     Employment
	Recommendation Recommendation
	Contact        string
}

// Build sanitizes p once more and lays its content out in reading order.
func Build(profile models.Profile, p models.Plan, catalog *models.Catalog) Document {
	p = plan.Sanitize(p)

	product, err := catalog.Lookup(p.ProductRecommendation)
	if err != nil {
		product, _ = catalog.Lookup(models.RecommendHarvest)
	}

	doc := Document{
		StudentName: profile.Name,
		Student:     StudentLine(profile),
		Confusion:   section("confusionAnalysis", p.ConfusionAnalysis),
		Summary:     p.Summary,
		Stats: []Table{
			{Key: "rateTrend", Heading: "近三年保研率", Columns: [2]string{"年份", "保研率"}, Rows: rateRows(p.SchoolStats.RateTrend)},
			{Key: "bonusPolicies", Heading: "保研加分政策", Columns: [2]string{"类别", "政策摘要"}, Rows: bonusRows(p.SchoolStats.BonusPolicies)},
			{Key: "destinations", Heading: "保研去向", Columns: [2]string{"院校", "人数/占比"}, Rows: destinationRows(p.SchoolStats.Destinations)},
		},
		SWOT: []Quadrant{
			{Key: "strengths", Letter: "S", Heading: "优势 (Strengths)", Color: "34A853", Items: p.SWOT.Strengths},
			{Key: "weaknesses", Letter: "W", Heading: "劣势 (Weaknesses)", Color: "EA4335", Items: p.SWOT.Weaknesses},
			{Key: "opportunities", Letter: "O", Heading: "机会 (Opportunities)", Color: "4285F4", Items: p.SWOT.Opportunities},
			{Key: "threats", Letter: "T", Heading: "威胁 (Threats)", Color: "FBBC05", Items: p.SWOT.Threats},
		},
		Analysis: section("analysis", p.Analysis),
		Employment: Employment{
			Title:     p.Employment.Title,
			Salary:    p.Employment.AverageSalary,
			Companies: p.Employment.TopCompanies,
			Roles:     p.Employment.Roles,
		},
		Recommendation: Recommendation{
			Key:         product.Key,
			Name:        product.Name,
			Tagline:     product.Tagline,
			Description: strings.TrimSpace(product.Description),
			Color:       product.Color,
			Features:    product.Features,
		},
		Contact: catalog.Contact,
	}

	doc.Strategies = []Section{
		section("targetSchools", p.TargetSchools),
		section("competitionStrategy", p.CompetitionStrategy),
		section("researchStrategy", p.ResearchStrategy),
	}
	if p.CrossMajor != nil {
		doc.Strategies = append(doc.Strategies, section("crossMajor", *p.CrossMajor))
	}
	doc.Strategies = append(doc.Strategies, section("timeline", p.Timeline))
	return doc
}

// StudentLine is the one-line identification of the student shown on every
// rendering.
func StudentLine(p models.Profile) string {
	return fmt.Sprintf("学生：%s | 学校：%s | 专业：%s | 年级：%s", p.Name, p.University, p.Major, p.Grade)
}

func section(key string, s models.Section) Section {
	return Section{Key: key, Title: s.Title, Items: s.Content}
}

func rateRows(in []models.YearRate) []Pair {
	out := make([]Pair, len(in))
	for i, r := range in {
		out[i] = Pair{Left: r.Year, Right: r.Rate}
	}
	return out
}

func bonusRows(in []models.BonusPolicy) []Pair {
	out := make([]Pair, len(in))
	for i, b := range in {
		out[i] = Pair{Left: b.Category, Right: b.Content}
	}
	return out
}

func destinationRows(in []models.Destination) []Pair {
	out := make([]Pair, len(in))
	for i, d := range in {
		out[i] = Pair{Left: d.School, Right: d.Count}
	}
	return out
}

// Strategy returns the section with the given key.
func (d Document) Strategy(key string) (Section, bool) {
	for _, s := range d.Strategies {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// ContentStrings lists every content string a rendering must present, in
// reading order. Fixed labels are not content.
func (d Document) ContentStrings() []string {
	out := []string{d.Student}
	addSection := func(s Section) {
		out = append(out, s.Title)
		out = append(out, s.Items...)
	}

	addSection(d.Confusion)
	out = append(out, d.Summary)
	for _, t := range d.Stats {
		for _, r := range t.Rows {
			out = append(out, r.Left, r.Right)
		}
	}
	for _, q := range d.SWOT {
		out = append(out, q.Items...)
	}
	addSection(d.Analysis)
	for _, s := range d.Strategies {
		addSection(s)
	}
	out = append(out, d.Employment.Title, d.Employment.Salary)
	out = append(out, d.Employment.Companies...)
	out = append(out, d.Employment.Roles...)

	r := d.Recommendation
	out = append(out, r.Name, r.Tagline, r.Description)
	out = append(out, r.Features...)
	return out
}

// Normalize collapses whitespace runs so renderings can be compared.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ContentSet is the normalized set of ContentStrings.
func (d Document) ContentSet() map[string]struct{} {
	return NewContentSet(d.ContentStrings())
}

// NewContentSet normalizes and de-duplicates strings, dropping empties.
func NewContentSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
