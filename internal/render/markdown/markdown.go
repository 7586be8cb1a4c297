// Package markdown renders a report as Markdown for the command line.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"unipath-planner/internal/report"
)

// Render writes doc as a Markdown document in screen order.
func Render(doc report.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 好保研 UNIPATH 规划报告\n\n%s\n\n", doc.Student)

	section(&b, doc.Confusion)

	b.WriteString("## 核心综述\n\n")
	b.WriteString(doc.Summary + "\n\n")

	b.WriteString("## 院校数据\n\n")
	for _, t := range doc.Stats {
		fmt.Fprintf(&b, "### %s\n\n", t.Heading)
		if len(t.Rows) == 0 {
			b.WriteString("_暂无数据_\n\n")
			continue
		}
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t.Columns[0], t.Columns[1])
		for _, r := range t.Rows {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(r.Left), cell(r.Right))
		}
		b.WriteString("\n")
	}

	b.WriteString("## SWOT 分析模型\n\n")
	for _, q := range doc.SWOT {
		fmt.Fprintf(&b, "### %s - %s\n\n", q.Letter, q.Heading)
		list(&b, q.Items)
	}

	section(&b, doc.Analysis)
	for _, s := range doc.Strategies {
		section(&b, s)
	}

	e := doc.Employment
	fmt.Fprintf(&b, "## %s\n\n**预估年薪：** %s\n\n", e.Title, e.Salary)
	b.WriteString("### 重点去向\n\n")
	list(&b, e.Companies)
	b.WriteString("### 典型岗位\n\n")
	list(&b, e.Roles)

	r := doc.Recommendation
	fmt.Fprintf(&b, "## 为你推荐：%s\n\n> %s\n\n%s\n\n", r.Name, r.Tagline, r.Description)
	list(&b, r.Features)
	if doc.Contact != "" {
		fmt.Fprintf(&b, "**立即咨询** · %s\n", doc.Contact)
	}
	return b.String()
}

// Terminal styles Markdown for a terminal of the given width.
func Terminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func section(b *strings.Builder, s report.Section) {
	fmt.Fprintf(b, "## %s\n\n", s.Title)
	list(b, s.Items)
}

func list(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("_暂无数据_\n\n")
		return
	}
	for _, item := range items {
		b.WriteString("- " + strings.ReplaceAll(item, "\n", " ") + "\n")
	}
	b.WriteString("\n")
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
