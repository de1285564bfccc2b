package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Notifier publishes operator alerts to an SNS topic.
type Notifier struct {
	svc      *sns.Client
	topicArn string
}

func NewNotifier(ctx context.Context, region, topicArn string) (*Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &Notifier{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

func (n *Notifier) publish(ctx context.Context, subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}
	if _, err := n.svc.Publish(ctx, input); err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	return nil
}

// AnomalousReading reports a power reading above a unit's nameplate
// capacity. The reading is still published in the snapshot as-is; this is an
// operator heads-up, not a rejection.
func (n *Notifier) AnomalousReading(ctx context.Context, facilityName, unitCode string, power, capacity float64) error {
	subject := fmt.Sprintf("Coal status: reading above nameplate at %s", facilityName)
	message := fmt.Sprintf(
		"Anomalous power reading\n\n"+
			"Facility: %s\n"+
			"Unit: %s\n"+
			"Reading: %.1f MW\n"+
			"Nameplate capacity: %.1f MW\n"+
			"Time: %s\n",
		facilityName,
		unitCode,
		power,
		capacity,
		time.Now().Format(time.RFC3339),
	)
	return n.publish(ctx, subject, message)
}
