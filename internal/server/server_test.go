package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/export/pdf"
	"unipath-planner/internal/export/slides"
	"unipath-planner/internal/models"
	"unipath-planner/internal/planner"
	"unipath-planner/internal/pptx"
	"unipath-planner/internal/render/screen"
	"unipath-planner/internal/store"
)

type stubGenerator struct {
	plan models.Plan
	err  error
}

func (g *stubGenerator) Generate(context.Context, models.Profile) (models.Plan, error) {
	return g.plan, g.err
}

type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify(models.Profile, models.Plan) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type printerFunc func(ctx context.Context, document []byte) ([]byte, error)

func (f printerFunc) PrintPDF(ctx context.Context, document []byte) ([]byte, error) {
	return f(ctx, document)
}

type downStore struct{ *store.MemoryStore }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func samplePlan() models.Plan {
	return models.Plan{
		ConfusionAnalysis: models.Section{Title: "关于夏令营", Content: []string{"尽早联系导师"}},
		Summary:           "竞争力中上，需补强科研。",
		SchoolStats: models.SchoolStats{
			RateTrend:    []models.YearRate{{Year: "2023", Rate: "18%"}, {Year: "2024", Rate: "20%"}},
			Destinations: []models.Destination{{School: "浙江大学", Count: "12人"}},
		},
		SWOT: models.SWOT{
			Strengths:     []string{"排名靠前"},
			Weaknesses:    []string{"缺少论文"},
			Opportunities: []string{"新工科扩招"},
			Threats:       []string{"同专业竞争激烈"},
		},
		Analysis:              models.Section{Title: "综合分析", Content: []string{"具备冲击 985 的基础"}},
		TargetSchools:         models.Section{Title: "目标院校", Content: []string{"冲：浙江大学", "稳：东南大学"}},
		CompetitionStrategy:   models.Section{Title: "竞赛", Content: []string{"电子设计大赛"}},
		ResearchStrategy:      models.Section{Title: "科研", Content: []string{"加入课题组"}},
		Timeline:              models.Section{Title: "时间线", Content: []string{"大三上：确定方向"}},
		Employment:            models.Employment{Title: "就业前景", AverageSalary: "25万", TopCompanies: []string{"华为"}, Roles: []string{"芯片设计"}},
		ProductRecommendation: models.RecommendSunrise,
	}
}

type fixture struct {
	srv      *httptest.Server
	gen      *stubGenerator
	notifier *countingNotifier
	printer  printerFunc
}

func newFixture(t *testing.T, st store.Store, configured bool) *fixture {
	t.Helper()
	f := &fixture{
		gen:      &stubGenerator{plan: samplePlan()},
		notifier: &countingNotifier{},
	}
	f.printer = func(_ context.Context, document []byte) ([]byte, error) {
		return append([]byte("%PDF-1.7\n"), document[:16]...), nil
	}

	log := logger.NewTestLogger(t)
	renderer := screen.MustNew()
	s := New(Options{
		Planner: planner.NewService(f.gen, st, f.notifier, log),
		Screen:  renderer,
		PDF: pdf.NewExporter(renderer, printerFunc(func(ctx context.Context, d []byte) ([]byte, error) {
			return f.printer(ctx, d)
		}), time.Second, log),
		Slides:              slides.NewExporter(log),
		AllowedOrigins:      []string{"https://unipath.example.com"},
		GeneratorConfigured: func() bool { return configured },
		Logger:              log,
	})
	f.srv = httptest.NewServer(s.Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func profileJSON() string {
	return `{
		"name": "李同学",
		"contact": "wx_li",
		"university": "东南大学",
		"major": "电子信息",
		"grade": "大三",
		"rank": "前 10%",
		"englishLevel": "CET-6",
		"targetDirection": "集成电路",
		"confusion": "夏令营怎么准备",
		"isNewEngineering": true
	}`
}

func profileForm() url.Values {
	return url.Values{
		"name":             {"李同学"},
		"contact":          {"wx_li"},
		"university":       {"东南大学"},
		"major":            {"电子信息"},
		"grade":            {"大三"},
		"rank":             {"前 10%"},
		"englishLevel":     {"CET-6"},
		"targetDirection":  {"集成电路"},
		"confusion":        {"夏令营怎么准备"},
		"isNewEngineering": {"on"},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func createPlan(t *testing.T, f *fixture) store.Record {
	t.Helper()
	resp, err := http.Post(f.srv.URL+"/api/plans", "application/json", strings.NewReader(profileJSON()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rec store.Record
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &rec))
	require.NotEmpty(t, rec.ID)
	return rec
}

func attachmentName(t *testing.T, resp *http.Response) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	return params["filename"]
}

func TestFormPage(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), true)

	resp, err := http.Get(f.srv.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/plans"`)

	resp, err = http.Get(f.srv.URL + "/nothing-here")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductPage(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), true)

	t.Run("form links both products", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Contains(t, body, `href="/products/sunrise"`)
		assert.Contains(t, body, `href="/products/harvest"`)
		assert.Contains(t, body, "破晓计划")
		assert.Contains(t, body, "桃李计划")
	})

	t.Run("report links both products", func(t *testing.T) {
		rec := createPlan(t, f)
		resp, err := http.Get(f.srv.URL + "/plans/" + rec.ID)
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Contains(t, body, `href="/products/sunrise"`)
		assert.Contains(t, body, `href="/products/harvest"`)
	})

	t.Run("renders the catalog entry", func(t *testing.T) {
		sunrise, err := models.DefaultCatalog().Lookup(models.RecommendSunrise)
		require.NoError(t, err)

		resp, err := http.Get(f.srv.URL + "/products/sunrise")
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, body, sunrise.Name)
		assert.Contains(t, body, sunrise.Description)
		assert.Contains(t, body, "核心权益")
		for _, feature := range sunrise.Features {
			assert.Contains(t, body, feature)
		}
		assert.Contains(t, body, `href="/products/sunrise/brochure.pptx"`)

		resp, err = http.Get(f.srv.URL + "/products/sunrise/brochure.pptx")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("short name resolves", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/products/" + url.PathEscape("桃李"))
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `href="/products/harvest/brochure.pptx"`)
	})

	t.Run("unknown product", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/products/winter")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestFormSubmit(t *testing.T) {
	t.Run("renders the report", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore(), true)

		resp, err := http.PostForm(f.srv.URL+"/plans", profileForm())
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "李同学")
		assert.Contains(t, body, `id="`+screen.CaptureID+`"`)
		assert.Contains(t, body, "/report.pdf")
		assert.Equal(t, 1, f.notifier.count())
	})

	t.Run("rejected credential shows the message", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore(), false)
		f.gen.err = apperrors.NewConfigurationError("401 from upstream")

		resp, err := http.PostForm(f.srv.URL+"/plans", profileForm())
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Contains(t, body, apperrors.MsgCredentialInvalid)
		assert.Contains(t, body, `value="东南大学"`, "form keeps the input")
		assert.NotContains(t, body, "401 from upstream")
		assert.Zero(t, f.notifier.count())
	})

	t.Run("missing field", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore(), true)
		form := profileForm()
		form.Del("confusion")

		resp, err := http.PostForm(f.srv.URL+"/plans", form)
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, apperrors.MsgInvalidProfile)
	})

	t.Run("oversized field", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore(), true)
		form := profileForm()
		form.Set("awards", strings.Repeat("奖", 2001))

		resp, err := http.PostForm(f.srv.URL+"/plans", form)
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, apperrors.MsgInvalidProfile)
		assert.Zero(t, f.notifier.count())
	})
}

func TestPlanAPI(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), true)
	rec := createPlan(t, f)
	assert.Equal(t, "李同学", rec.Profile.Name)
	assert.Equal(t, models.RecommendSunrise, rec.Plan.ProductRecommendation)

	resp, err := http.Get(f.srv.URL + "/api/plans/" + rec.ID)
	require.NoError(t, err)
	var got store.Record
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &got))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, rec.ID, got.ID)

	resp, err = http.Get(f.srv.URL + "/plans/" + rec.ID)
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "竞争力中上")
}

func TestPlanAPI_Errors(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), true)

	tests := []struct {
		name   string
		body   string
		status int
		code   apperrors.ErrorCode
	}{
		{"not json", `{"name":`, http.StatusBadRequest, apperrors.ErrCodeInvalidProfile},
		{"wrong type", strings.Replace(profileJSON(), `"大三"`, `3`, 1), http.StatusBadRequest, apperrors.ErrCodeInvalidProfile},
		{"unknown grade", strings.Replace(profileJSON(), `"大三"`, `"研一"`, 1), http.StatusBadRequest, apperrors.ErrCodeInvalidProfile},
		{"blank confusion", strings.Replace(profileJSON(), `"夏令营怎么准备"`, `"  "`, 1), http.StatusBadRequest, apperrors.ErrCodeInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(f.srv.URL+"/api/plans", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)

			var e errorBody
			require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &e))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, apperrors.MsgInvalidProfile, e.Message)
		})
	}

	t.Run("quota exhausted", func(t *testing.T) {
		f.gen.err = apperrors.NewQuotaExhaustedError("402")
		defer func() { f.gen.err = nil }()

		resp, err := http.Post(f.srv.URL+"/api/plans", "application/json", strings.NewReader(profileJSON()))
		require.NoError(t, err)
		var e errorBody
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &e))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, apperrors.MsgQuotaExhausted, e.Message)
	})

	t.Run("unknown plan", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/api/plans/does-not-exist")
		require.NoError(t, err)
		var e errorBody
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &e))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, apperrors.ErrCodePlanNotFound, e.Code)
	})
}

func TestDownloads(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), true)
	rec := createPlan(t, f)

	t.Run("pdf", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/plans/" + rec.ID + "/report.pdf")
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, pdfType, resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=utf-8''")
		assert.Equal(t, "好保研规划_李同学.pdf", attachmentName(t, resp))
		assert.True(t, strings.HasPrefix(body, "%PDF"))
	})

	t.Run("pptx", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/plans/" + rec.ID + "/report.pptx")
		require.NoError(t, err)
		body := readBody(t, resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, pptxType, resp.Header.Get("Content-Type"))
		assert.Equal(t, "好保研规划_李同学.pptx", attachmentName(t, resp))

		deck, err := pptx.ExtractBytes([]byte(body))
		require.NoError(t, err)
		assert.NotEmpty(t, deck)
	})

	t.Run("brochure", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/products/sunrise/brochure.pptx")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "好保研_破晓计划手册.pptx", attachmentName(t, resp))

		resp, err = http.Get(f.srv.URL + "/products/winter/brochure.pptx")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("pdf failure keeps the plan", func(t *testing.T) {
		f.printer = func(context.Context, []byte) ([]byte, error) { return nil, errors.New("chrome crashed") }

		resp, err := http.Get(f.srv.URL + "/plans/" + rec.ID + "/report.pdf")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, body, apperrors.MsgPDFExportFailed)
		assert.NotContains(t, body, "chrome crashed")

		resp, err = http.Get(f.srv.URL + "/plans/" + rec.ID)
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown plan", func(t *testing.T) {
		resp, err := http.Get(f.srv.URL + "/plans/missing/report.pptx")
		require.NoError(t, err)
		assert.Contains(t, readBody(t, resp), apperrors.MsgPlanNotFound)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), true)

	resp, err := http.Get(f.srv.URL + "/health")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "healthy")

	resp, err = http.Get(f.srv.URL + "/ready")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	unconfigured := newFixture(t, downStore{store.NewMemoryStore()}, false)
	resp, err = http.Get(unconfigured.srv.URL + "/ready")
	require.NoError(t, err)
	var status map[string]string
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &status))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "not ready", status["status"])
	assert.Contains(t, status, "store")
	assert.Contains(t, status, "generator")
}

func TestCORSAndMetrics(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), true)

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/plans", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://unipath.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "https://unipath.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://elsewhere.example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(f.srv.URL + "/health")
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "http_requests_total")
}
