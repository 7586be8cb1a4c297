package generateplan

import "unipath-planner/internal/models"

type Input struct {
	Profile models.Profile `json:"profile"`
}

type Output struct {
	PlanID                string                `json:"planId"`
	Plan                  models.Plan           `json:"plan"`
	ProductRecommendation models.Recommendation `json:"productRecommendation"`
}
