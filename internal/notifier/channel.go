package notifier

import (
	"context"
	"fmt"

	commonaws "unipath-planner/internal/common/aws"
	"unipath-planner/internal/common/config"
	commonhttp "unipath-planner/internal/common/http"
)

// Channel delivers a digest to one destination.
type Channel interface {
	Name() string
	// Configured is false when delivery should be skipped.
	Configured() bool
	Deliver(ctx context.Context, d Digest) error
}

// NoneChannel drops every digest.
type NoneChannel struct{}

func (NoneChannel) Name() string                          { return config.ChannelNone }
func (NoneChannel) Configured() bool                      { return false }
func (NoneChannel) Deliver(context.Context, Digest) error { return nil }

// NewChannel builds the configured channel. AWS channels resolve credentials
// from the default chain.
func NewChannel(ctx context.Context, cfg config.NotifierConfig, client *commonhttp.Client) (Channel, error) {
	switch cfg.Channel {
	case config.ChannelFeishu, "":
		return NewFeishuChannel(cfg.Feishu.WebhookURL, cfg.Feishu.RelayURL, client), nil
	case config.ChannelSES:
		ses, err := commonaws.NewSESClient(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("create SES client: %w", err)
		}
		return NewSESChannel(ses, cfg.AWS.SES.FromEmail, cfg.AWS.SES.To), nil
	case config.ChannelSNS:
		sns, err := commonaws.NewSNSClient(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("create SNS client: %w", err)
		}
		return NewSNSChannel(sns, cfg.AWS.SNS.TopicARN), nil
	case config.ChannelNone:
		return NoneChannel{}, nil
	default:
		return nil, fmt.Errorf("unknown notifier channel %q", cfg.Channel)
	}
}
