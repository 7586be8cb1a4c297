package generateplan

import (
	"time"

	"unipath-planner/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

// LoadConfig derives the job budget from the worker entry. Generation is
// slow, so an unset timeout gets two minutes.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Config{Timeout: timeout, MaxRetries: wcfg.MaxRetries}
}
