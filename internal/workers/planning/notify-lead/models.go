package notifylead

import "unipath-planner/internal/models"

type Input struct {
	Profile models.Profile `json:"profile"`
	Plan    models.Plan    `json:"plan"`
}

type Output struct {
	Notified bool   `json:"notified"`
	Channel  string `json:"channel"`
}
