// Package store keeps generated plans so they can be shown and exported again.
// Records are written once and never updated or expired.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"unipath-planner/internal/models"
)

var ErrNotFound = errors.New("plan record not found")

// Record is one submission and the plan generated for it.
type Record struct {
	ID        string         `json:"id"`
	Profile   models.Profile `json:"profile"`
	Plan      models.Plan    `json:"plan"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Store interface {
	Save(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	Ping(ctx context.Context) error
}

// NewID returns a time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
