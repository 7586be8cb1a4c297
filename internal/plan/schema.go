// Package plan owns the plan contract: the JSON schema generated plans must
// satisfy, the validation boundary, and the total normalisation pass every
// renderer consumes.
package plan

import (
	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/validation"
	"unipath-planner/internal/models"
)

// RequiredKeys are the top-level sections every generated plan must carry.
var RequiredKeys = []string{
	"confusionAnalysis", "summary", "schoolStats", "swot", "analysis",
	"targetSchools", "competitionStrategy", "researchStrategy",
	"employment", "timeline", "productRecommendation",
}

// KeyOrder is the reading order of the top-level sections.
var KeyOrder = []string{
	"confusionAnalysis", "summary", "schoolStats", "swot", "analysis",
	"targetSchools", "competitionStrategy", "researchStrategy", "crossMajor",
	"timeline", "employment", "productRecommendation",
}

func str() map[string]interface{} { return map[string]interface{}{"type": "string"} }

func strList() map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": str()}
}

func object(props map[string]interface{}, required ...string) map[string]interface{} {
	o := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

func pairList(a, b string) map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": object(map[string]interface{}{a: str(), b: str()}, a, b),
	}
}

func sectionSchema() map[string]interface{} {
	return object(map[string]interface{}{"title": str(), "content": strList()}, "title", "content")
}

// Schema is the full plan schema requested from structured-output backends.
func Schema() map[string]interface{} {
	recs := make([]string, len(models.Recommendations))
	for i, r := range models.Recommendations {
		recs[i] = string(r)
	}

	return object(map[string]interface{}{
		"confusionAnalysis": sectionSchema(),
		"summary":           str(),
		"schoolStats": object(map[string]interface{}{
			"rateTrend":     pairList("year", "rate"),
			"bonusPolicies": pairList("category", "content"),
			"destinations":  pairList("school", "count"),
		}, "rateTrend", "bonusPolicies", "destinations"),
		"swot": object(map[string]interface{}{
			"strengths":     strList(),
			"weaknesses":    strList(),
			"opportunities": strList(),
			"threats":       strList(),
		}, "strengths", "weaknesses", "opportunities", "threats"),
		"analysis":            sectionSchema(),
		"targetSchools":       sectionSchema(),
		"competitionStrategy": sectionSchema(),
		"researchStrategy":    sectionSchema(),
		"crossMajor":          sectionSchema(),
		"employment": object(map[string]interface{}{
			"title":         str(),
			"averageSalary": str(),
			"topCompanies":  strList(),
			"roles":         strList(),
		}, "title", "averageSalary", "topCompanies", "roles"),
		"timeline": sectionSchema(),
		"productRecommendation": map[string]interface{}{
			"type": "string",
			"enum": recs,
		},
	}, RequiredKeys...)
}

// boundarySchema keeps the top-level shape of Schema: required keys, their
// types and the recommendation enum. Nested gaps are left to Sanitize.
func boundarySchema() map[string]interface{} {
	full := Schema()
	props := full["properties"].(map[string]interface{})
	relaxed := make(map[string]interface{}, len(props))
	for key, raw := range props {
		prop := raw.(map[string]interface{})
		p := map[string]interface{}{"type": prop["type"]}
		if enum, ok := prop["enum"]; ok {
			p["enum"] = enum
		}
		if key == "crossMajor" {
			p["type"] = []string{"object", "null"}
		}
		relaxed[key] = p
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": relaxed,
		"required":   full["required"],
	}
}

var boundary = validation.MustCompile(boundarySchema())

// Validate checks a decoded plan against the boundary schema and returns a
// PLAN_VALIDATION_FAILED error listing every violation.
func Validate(raw map[string]interface{}) error {
	if raw == nil {
		return apperrors.NewPlanValidationError([]string{"(root): plan is empty"})
	}
	if result := boundary.Validate(raw); !result.Valid {
		return apperrors.NewPlanValidationError(result.GetErrorMessages())
	}
	return nil
}
