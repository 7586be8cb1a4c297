package report_test

import (
	"bytes"
	"context"
	"testing"

	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/export/pdf"
	"unipath-planner/internal/export/slides"
	"unipath-planner/internal/models"
	"unipath-planner/internal/plan"
	"unipath-planner/internal/pptx"
	"unipath-planner/internal/render/screen"
	"unipath-planner/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawPlan = `{
  "confusionAnalysis": {"title": "如何准备科研", "content": ["先联系导师", "从复现论文开始"]},
  "summary": "基础扎实，科研偏弱。",
  "schoolStats": {
    "rateTrend": [{"year": "2022", "rate": "18%"}, {"year": "2023", "rate": "19%"}, {"year": "2024", "rate": "21%"}],
    "bonusPolicies": [{"category": "竞赛", "content": "国一加 2 分"}, {"category": "论文"}],
    "destinations": [{"school": "本校", "count": "40%"}, {"school": "浙江大学", "count": 12}]
  },
  "swot": {
    "strengths": ["绩点前 10%", "英语六级 600", "ACM 区域赛铜牌", "学生会主席"],
    "weaknesses": [],
    "opportunities": "导师扩招",
    "threats": ["同届竞争激烈", null]
  },
  "analysis": {"title": "背景深度诊断", "content": ["排名靠前", "科研空白"]},
  "targetSchools": {"title": "目标院校定位", "content": ["冲刺：浙江大学", "稳妥：武汉大学", "保底：本校"]},
  "competitionStrategy": {"title": "竞赛规划", "content": ["数学建模国赛"]},
  "researchStrategy": {"title": "科研规划", "content": ["大二下进组"]},
  "crossMajor": {"title": "跨专业建议", "content": ["辅修人工智能"]},
  "timeline": {"title": "规划路线图", "content": ["大二下：进组", "大三上：投稿", "大三暑假：夏令营"]},
  "employment": {"title": "未来就业与薪资展望", "averageSalary": "30w-40w", "topCompanies": ["华为", "腾讯"], "roles": ["算法工程师"]},
  "productRecommendation": "Sunrise"
}`

func profile() models.Profile {
	return models.Profile{
		Name:             "李同学",
		Contact:          "wx_li",
		University:       "华中科技大学",
		Major:            "计算机科学与技术",
		Grade:            models.GradeSophomore,
		Rank:             "3/120",
		EnglishLevel:     "六级 600",
		TargetDirection:  "人工智能",
		Confusion:        "如何准备科研",
		IsNewEngineering: true,
	}
}

type renderings struct {
	screen []string
	pdf    []string
	slides []pptx.SlideText
}

func renderAll(t *testing.T, doc report.Document) renderings {
	t.Helper()

	var page bytes.Buffer
	require.NoError(t, screen.MustNew().Report(&page, doc, screen.Links{PDF: "/p.pdf", PPTX: "/p.pptx", NewPlan: "/"}))

	onScreen, err := pdf.VisibleContent(bytes.NewReader(page.Bytes()))
	require.NoError(t, err)

	region, err := pdf.CaptureRegion(page.Bytes(), screen.CaptureID)
	require.NoError(t, err)
	captured, err := pdf.VisibleContent(bytes.NewReader(region))
	require.NoError(t, err)

	deck, err := slides.Deck(doc).Bytes()
	require.NoError(t, err)
	onSlides, err := pptx.ExtractBytes(deck)
	require.NoError(t, err)

	return renderings{screen: onScreen, pdf: captured, slides: onSlides}
}

func TestRenderersPresentTheSameContent(t *testing.T) {
	cases := map[string]interface{}{
		"complete plan":    rawPlan,
		"all defaults":     nil,
		"garbage":          "not json at all",
		"partial sections": `{"summary": "只有综述", "swot": {"threats": ["x"]}, "productRecommendation": "harvest"}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc := report.Build(profile(), plan.Sanitize(raw), models.DefaultCatalog())
			want := doc.ContentSet()
			r := renderAll(t, doc)

			assert.Equal(t, want, report.NewContentSet(r.screen), "screen")
			assert.Equal(t, want, report.NewContentSet(r.pdf), "pdf capture")
			assert.Equal(t, want, report.NewContentSet(pptx.Content(r.slides)), "slides")
		})
	}
}

func TestProductRouting(t *testing.T) {
	catalog := models.DefaultCatalog()
	for _, rec := range models.Recommendations {
		t.Run(string(rec), func(t *testing.T) {
			p := plan.Sanitize(rawPlan)
			p.ProductRecommendation = rec
			doc := report.Build(profile(), p, catalog)
			product, err := catalog.Lookup(rec)
			require.NoError(t, err)

			var page bytes.Buffer
			require.NoError(t, screen.MustNew().Report(&page, doc, screen.Links{}))
			assert.Contains(t, page.String(), `data-product="`+string(rec)+`"`)

			r := renderAll(t, doc)
			assert.Contains(t, r.screen, product.Name)
			last := r.slides[len(r.slides)-1]
			assert.Contains(t, last.Content, product.Name)
			assert.Contains(t, last.Content, product.Description)

			for _, other := range models.Recommendations {
				if other == rec {
					continue
				}
				o, _ := catalog.Lookup(other)
				assert.NotContains(t, r.screen, o.Name)
				assert.NotContains(t, pptx.Content(r.slides), o.Name)
			}
		})
	}
}

func TestPDFExportMatchesScreen(t *testing.T) {
	doc := report.Build(profile(), plan.Sanitize(rawPlan), models.DefaultCatalog())

	var printed []byte
	printer := printerFunc(func(_ context.Context, document []byte) ([]byte, error) {
		printed = document
		return []byte("%PDF"), nil
	})
	_, err := pdf.NewExporter(screen.MustNew(), printer, 0, logger.NewNoOpLogger()).Export(context.Background(), doc)
	require.NoError(t, err)

	captured, err := pdf.VisibleContent(bytes.NewReader(printed))
	require.NoError(t, err)
	assert.Equal(t, doc.ContentSet(), report.NewContentSet(captured))
}

type printerFunc func(ctx context.Context, document []byte) ([]byte, error)

func (f printerFunc) PrintPDF(ctx context.Context, document []byte) ([]byte, error) {
	return f(ctx, document)
}
