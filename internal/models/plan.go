// internal/models/plan.go
package models

// Recommendation selects which promotional product a plan routes to.
type Recommendation string

const (
	// RecommendSunrise is the tier-A offering (new-engineering, research track).
	RecommendSunrise Recommendation = "Sunrise"
	// RecommendHarvest is the tier-B offering (all disciplines).
	RecommendHarvest Recommendation = "Harvest"
)

// Recommendations lists both known values.
var Recommendations = []Recommendation{RecommendSunrise, RecommendHarvest}

func (r Recommendation) Valid() bool {
	return r == RecommendSunrise || r == RecommendHarvest
}

// Section is a titled, ordered list of advice lines.
type Section struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

type YearRate struct {
	Year string `json:"year"`
	Rate string `json:"rate"`
}

type BonusPolicy struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

type Destination struct {
	School string `json:"school"`
	Count  string `json:"count"`
}

// SchoolStats holds the estimated admission statistics of the student's school.
type SchoolStats struct {
	RateTrend     []YearRate    `json:"rateTrend"`
	BonusPolicies []BonusPolicy `json:"bonusPolicies"`
	Destinations  []Destination `json:"destinations"`
}

type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type Employment struct {
	Title         string   `json:"title"`
	AverageSalary string   `json:"averageSalary"`
	TopCompanies  []string `json:"topCompanies"`
	Roles         []string `json:"roles"`
}

// Plan is the generated artifact for one profile. Percentages and salaries
// are opaque display strings.
type Plan struct {
	ConfusionAnalysis     Section        `json:"confusionAnalysis"`
	Summary               string         `json:"summary"`
	SchoolStats           SchoolStats    `json:"schoolStats"`
	SWOT                  SWOT           `json:"swot"`
	Analysis              Section        `json:"analysis"`
	TargetSchools         Section        `json:"targetSchools"`
	CompetitionStrategy   Section        `json:"competitionStrategy"`
	ResearchStrategy      Section        `json:"researchStrategy"`
	CrossMajor            *Section       `json:"crossMajor,omitempty"`
	Timeline              Section        `json:"timeline"`
	Employment            Employment     `json:"employment"`
	ProductRecommendation Recommendation `json:"productRecommendation"`
}

// HeadlineStat returns the latest admission rate and the top destination,
// "未知" when either is unavailable.
func (p Plan) HeadlineStat() (rate, destination string) {
	rate, destination = "未知", "未知"
	if n := len(p.SchoolStats.RateTrend); n > 0 && p.SchoolStats.RateTrend[n-1].Rate != "" {
		rate = p.SchoolStats.RateTrend[n-1].Rate
	}
	if len(p.SchoolStats.Destinations) > 0 && p.SchoolStats.Destinations[0].School != "" {
		destination = p.SchoolStats.Destinations[0].School
	}
	return rate, destination
}
