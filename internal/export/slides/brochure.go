package slides

import (
	"strings"

	"unipath-planner/internal/models"
	"unipath-planner/internal/pptx"
)

// BrochureFileName is the download name of a product brochure.
func BrochureFileName(p models.Product) string {
	return "好保研_" + p.Short + "计划手册.pptx"
}

// Brochure builds the two-slide promotional deck of a product: a cover and a
// details slide with the brochure feature list.
func Brochure(p models.Product, contact string) *pptx.Deck {
	color := strings.TrimPrefix(p.Color, "#")
	if color == "" {
		color = primary
	}
	d := pptx.New(p.Name+" - 产品手册", "好保研 Unipath")

	cover := d.AddSlide(color)
	cover.AddText(pptx.TextBox{Name: "content product name", Box: pptx.Rect(0.5, 2.5, 12.3, 1.0), Paragraphs: []pptx.Paragraph{
		{Text: p.Name, Size: 40, Bold: true, Color: white, Align: pptx.AlignCenter},
	}})
	cover.AddText(pptx.TextBox{Name: "content product tagline", Box: pptx.Rect(0.5, 3.5, 12.3, 0.7), Paragraphs: []pptx.Paragraph{
		{Text: p.Tagline, Size: 24, Color: "EEEEEE", Align: pptx.AlignCenter},
	}})
	cover.AddText(pptx.TextBox{Name: "chrome brand", Box: pptx.Rect(0.5, 6.5, 12.3, 0.5), Paragraphs: []pptx.Paragraph{
		{Text: "Unipath / 好保研", Size: 16, Color: white, Align: pptx.AlignCenter},
	}})

	details := d.AddSlide("")
	details.AddText(pptx.TextBox{Name: "chrome header", Box: pptx.Rect(0, 0, 13.33, 1.0), Fill: color, Anchor: "ctr", Paragraphs: []pptx.Paragraph{
		{Text: p.Name + " - 核心权益", Size: 24, Bold: true, Color: white},
	}})
	details.AddText(pptx.TextBox{Name: "chrome intro box", Box: pptx.Rect(0.5, 1.5, 12.3, 2.0), Fill: "F3F4F6", Paragraphs: []pptx.Paragraph{
		{Text: "项目介绍", Size: 14, Bold: true, Color: color},
	}})
	details.AddText(pptx.TextBox{Name: "content product description", Box: pptx.Rect(0.7, 2.0, 11.9, 1.4), Paragraphs: []pptx.Paragraph{
		{Text: strings.TrimSpace(p.Description), Size: 14, Color: darkText},
	}})
	details.AddText(pptx.TextBox{Name: "chrome features label", Box: pptx.Rect(0.5, 3.8, 12.3, 0.5), Paragraphs: []pptx.Paragraph{
		{Text: "核心服务内容", Size: 16, Bold: true, Color: color},
	}})
	if len(p.Brochure) > 0 {
		details.AddText(pptx.TextBox{Name: "content product brochure", Box: pptx.Rect(0.5, 4.3, 12.3, 2.6), Paragraphs: bullets(p.Brochure, 14, darkText)})
	}
	if contact != "" {
		details.AddText(pptx.TextBox{Name: "chrome contact", Box: pptx.Rect(0, 7.0, 13.33, 0.4), Paragraphs: []pptx.Paragraph{
			{Text: contact, Size: 10, Color: muted, Align: pptx.AlignCenter},
		}})
	}
	return d
}
