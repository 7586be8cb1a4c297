// Package aws builds the AWS clients behind the SES and SNS lead channels.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"unipath-planner/internal/common/config"
)

// leadAttempts bounds SDK retries; the notifier timeout covers the rest.
const leadAttempts = 2

// LoadConfig resolves credentials from the default chain. An empty region
// defers to AWS_REGION or the shared config file.
func LoadConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(leadAttempts),
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		return aws.Config{}, fmt.Errorf("aws region is not configured")
	}
	return awsCfg, nil
}

// NewSESClient returns the client used to mail lead digests.
func NewSESClient(ctx context.Context, cfg config.AWSConfig) (*ses.Client, error) {
	awsCfg, err := LoadConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(awsCfg), nil
}
