package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"unipath-planner/internal/common/config"
)

// SESService and SNSService are the parts of the AWS clients the channels use.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESChannel mails the digest to the sales inbox.
type SESChannel struct {
	client SESService
	from   string
	to     []string
}

func NewSESChannel(client SESService, from string, to []string) *SESChannel {
	return &SESChannel{client: client, from: from, to: to}
}

func (s *SESChannel) Name() string { return config.ChannelSES }

func (s *SESChannel) Configured() bool { return s.from != "" && len(s.to) > 0 }

func (s *SESChannel) Deliver(ctx context.Context, d Digest) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: s.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(d.Subject()), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(d.Text()), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

// SNSChannel publishes the digest to a topic.
type SNSChannel struct {
	client   SNSService
	topicARN string
}

func NewSNSChannel(client SNSService, topicARN string) *SNSChannel {
	return &SNSChannel{client: client, topicARN: topicARN}
}

func (s *SNSChannel) Name() string { return config.ChannelSNS }

func (s *SNSChannel) Configured() bool { return s.topicARN != "" }

func (s *SNSChannel) Deliver(ctx context.Context, d Digest) error {
	// SNS subjects are ASCII-only.
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String("New Unipath lead"),
		Message:  aws.String(d.Text()),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
