package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"

	"unipath-planner/internal/common/config"
)

// NewSNSClient returns the client used to publish lead digests to a topic.
func NewSNSClient(ctx context.Context, cfg config.AWSConfig) (*sns.Client, error) {
	awsCfg, err := LoadConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(awsCfg), nil
}
