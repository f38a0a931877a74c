package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Event announces a registry mutation to downstream collaborators (DM
// assistant, reminder senders). It is published by the HTTP layer after the
// registry call returns.
type Event struct {
	Type       string    `json:"type"`
	Provider   Provider  `json:"provider"`
	Status     Status    `json:"status"`
	Record     *Record   `json:"record"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Event types.
const (
	EventConnected    = "integration.connected"
	EventDisconnected = "integration.disconnected"
	EventUpdated      = "integration.updated"
)

// NewEvent builds an event for rec.
func NewEvent(eventType string, rec *Record) Event {
	return Event{
		Type:       eventType,
		Provider:   rec.Provider,
		Status:     rec.Status,
		Record:     rec.Clone(),
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher delivers integration events.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type sqsAPI interface {
	SendMessage(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends events as JSON messages to an SQS queue.
type SQSPublisher struct {
	client   sqsAPI
	queueURL string
}

// NewSQSPublisher wraps an SQS client.
func NewSQSPublisher(client sqsAPI, queueURL string) *SQSPublisher {
	if client == nil {
		panic("integrations: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("integrations: SQS queueURL cannot be empty")
	}
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("integrations: marshal event: %w", err)
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(evt.Type)},
			"provider":  {DataType: aws.String("String"), StringValue: aws.String(string(evt.Provider))},
		},
	})
	if err != nil {
		return fmt.Errorf("integrations: send event: %w", err)
	}
	return nil
}
