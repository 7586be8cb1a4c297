package plan

import (
	"encoding/json"
	"strconv"
	"strings"

	"unipath-planner/internal/models"
)

// Placeholders used when a plan omits a value.
const (
	TitleConfusion   = "专家诊疗室"
	TitleAnalysis    = "背景深度诊断"
	TitleTargets     = "目标院校定位"
	TitleCompetition = "竞赛规划"
	TitleResearch    = "科研规划"
	TitleTimeline    = "规划路线图"
	TitleEmployment  = "未来就业与薪资展望"
	TitleCrossMajor  = "跨专业建议"

	DefaultSummary = "暂无综述"
	DefaultSalary  = "需重新生成规划以获取数据"
	PairFiller     = "-"
)

// Sanitize normalises anything claiming to be a plan into a fully populated
// models.Plan. It never panics, keeps every present and well-typed value
// verbatim, and Sanitize(Sanitize(x)) equals Sanitize(x).
func Sanitize(raw interface{}) models.Plan {
	return fromMap(toMap(raw))
}

func toMap(raw interface{}) map[string]interface{} {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case json.RawMessage:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			if m, ok := v.(map[string]interface{}); ok {
				return m
			}
			return nil
		}
		data = b
	}

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil
	}
	m, _ := decoded.(map[string]interface{})
	return m
}

func fromMap(m map[string]interface{}) models.Plan {
	p := models.Plan{
		ConfusionAnalysis:   section(m["confusionAnalysis"], TitleConfusion),
		Summary:             text(m["summary"], DefaultSummary),
		SchoolStats:         schoolStats(m["schoolStats"]),
		SWOT:                swot(m["swot"]),
		Analysis:            section(m["analysis"], TitleAnalysis),
		TargetSchools:       section(m["targetSchools"], TitleTargets),
		CompetitionStrategy: section(m["competitionStrategy"], TitleCompetition),
		ResearchStrategy:    section(m["researchStrategy"], TitleResearch),
		Timeline:            section(m["timeline"], TitleTimeline),
		Employment:          employment(m["employment"]),
	}
	if cm, ok := optionalSection(m["crossMajor"], TitleCrossMajor); ok {
		p.CrossMajor = &cm
	}
	p.ProductRecommendation = recommendation(m["productRecommendation"])
	return p
}

// scalar renders strings verbatim and numbers without exponent. Blank
// strings and every other type report false.
func scalar(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

func text(v interface{}, fallback string) string {
	if s, ok := scalar(v); ok {
		return s
	}
	return fallback
}

func list(v interface{}) []string {
	out := []string{}
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s, ok := scalar(item); ok {
				out = append(out, s)
			}
		}
	case string:
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

func section(v interface{}, placeholder string) models.Section {
	switch t := v.(type) {
	case map[string]interface{}:
		return models.Section{Title: text(t["title"], placeholder), Content: list(t["content"])}
	case []interface{}, string:
		return models.Section{Title: placeholder, Content: list(t)}
	}
	return models.Section{Title: placeholder, Content: []string{}}
}

func optionalSection(v interface{}, placeholder string) (models.Section, bool) {
	switch v.(type) {
	case map[string]interface{}:
		return section(v, placeholder), true
	case []interface{}, string:
		s := section(v, placeholder)
		return s, len(s.Content) > 0
	}
	return models.Section{}, false
}

// pairs reads a list of two-field objects. A missing side becomes "-"; an
// entry with both sides missing is dropped.
func pairs(v interface{}, a, b string) [][2]string {
	items, _ := v.([]interface{})
	out := make([][2]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		first, okA := scalar(obj[a])
		second, okB := scalar(obj[b])
		if !okA && !okB {
			continue
		}
		if !okA {
			first = PairFiller
		}
		if !okB {
			second = PairFiller
		}
		out = append(out, [2]string{first, second})
	}
	return out
}

func schoolStats(v interface{}) models.SchoolStats {
	m, _ := v.(map[string]interface{})
	stats := models.SchoolStats{
		RateTrend:     []models.YearRate{},
		BonusPolicies: []models.BonusPolicy{},
		Destinations:  []models.Destination{},
	}
	for _, p := range pairs(m["rateTrend"], "year", "rate") {
		stats.RateTrend = append(stats.RateTrend, models.YearRate{Year: p[0], Rate: p[1]})
	}
	for _, p := range pairs(m["bonusPolicies"], "category", "content") {
		stats.BonusPolicies = append(stats.BonusPolicies, models.BonusPolicy{Category: p[0], Content: p[1]})
	}
	for _, p := range pairs(m["destinations"], "school", "count") {
		stats.Destinations = append(stats.Destinations, models.Destination{School: p[0], Count: p[1]})
	}
	return stats
}

func swot(v interface{}) models.SWOT {
	m, _ := v.(map[string]interface{})
	return models.SWOT{
		Strengths:     list(m["strengths"]),
		Weaknesses:    list(m["weaknesses"]),
		Opportunities: list(m["opportunities"]),
		Threats:       list(m["threats"]),
	}
}

func employment(v interface{}) models.Employment {
	m, _ := v.(map[string]interface{})
	return models.Employment{
		Title:         text(m["title"], TitleEmployment),
		AverageSalary: text(m["averageSalary"], DefaultSalary),
		TopCompanies:  list(m["topCompanies"]),
		Roles:         list(m["roles"]),
	}
}

// recommendation falls back to Harvest. Generated plans with an unknown value
// never get here because Validate rejects them first.
func recommendation(v interface{}) models.Recommendation {
	s, _ := v.(string)
	for _, rec := range models.Recommendations {
		if strings.EqualFold(strings.TrimSpace(s), string(rec)) {
			return rec
		}
	}
	return models.RecommendHarvest
}
