package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client snsAPI
}

func NewSNSClient(cfg awssdk.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

// PublishMessage posts message to topicARN and returns the SNS message id.
func (s *SNSClient) PublishMessage(ctx context.Context, topicARN, subject, message string) (string, error) {
	in := &sns.PublishInput{
		TopicArn: awssdk.String(topicARN),
		Message:  awssdk.String(message),
	}
	if subject != "" {
		in.Subject = awssdk.String(subject)
	}
	out, err := s.client.Publish(ctx, in)
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}
