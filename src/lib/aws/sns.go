package aws

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSPublisher delivers human-readable platform events to an SNS topic.
// It is the production backend of the notification sink.
type SNSPublisher struct {
	Name  string
	inner *sns.Client
}

func NewSNSPublisher(topic string) *SNSPublisher {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil
	}
	inner := sns.NewFromConfig(cfg)
	p := SNSPublisher{
		Name:  topic,
		inner: inner,
	}
	return &p
}

func GetTopicArn(topic string) string {
	region := os.Getenv("AWS_REGION")
	accountId := os.Getenv("AWS_ACCOUNT_ID")
	return fmt.Sprintf("arn:aws:sns:%s:%s:%s", region, accountId, topic)
}

func (p *SNSPublisher) Send(message string) error {
	topicArn := GetTopicArn(p.Name)
	_, err := p.inner.Publish(context.TODO(), &sns.PublishInput{
		TopicArn: aws.String(topicArn),
		Message:  aws.String(message),
	})
	if err != nil {
		log.Printf("[%s] Error publishing message: %s\n", p.Name, err.Error())
		return err
	}
	return nil
}
