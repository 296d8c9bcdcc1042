package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"plant-backend/application/ports"
	"plant-backend/domain/events"
)

// EventBridge limits PutEvents to 10 entries per call
const batchSize = 10

// API is the part of the EventBridge client the publisher uses
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher implements ports.EventPublisher using AWS EventBridge
type Publisher struct {
	client       API
	eventBusName string
	source       string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client API, eventBusName, source string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		source:       source,
		logger:       logger,
	}
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Publish sends a single event to EventBridge
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in batches of at most ten
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for i := 0; i < len(domainEvents); i += batchSize {
		end := i + batchSize
		if end > len(domainEvents) {
			end = len(domainEvents)
		}
		if err := p.publishBatch(ctx, domainEvents[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(domainEvents))
	sent := make([]events.DomainEvent, 0, len(domainEvents))

	for _, event := range domainEvents {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal event",
				zap.Error(err),
				zap.String("eventType", event.GetEventType()),
			)
			continue
		}

		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(p.source),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
		})
		sent = append(sent, event)
	}

	if len(entries) == 0 {
		return nil
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil && i < len(sent) {
				p.logger.Error("Failed to publish event",
					zap.String("eventType", sent[i].GetEventType()),
					zap.String("aggregateID", sent[i].GetAggregateID()),
					zap.String("errorCode", *entry.ErrorCode),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}

// NopPublisher drops events. It is used when publishing is disabled.
type NopPublisher struct {
	logger *zap.Logger
}

// NewNopPublisher creates a publisher that only logs
func NewNopPublisher(logger *zap.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

// Publish implements ports.EventPublisher
func (p *NopPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch implements ports.EventPublisher
func (p *NopPublisher) PublishBatch(_ context.Context, domainEvents []events.DomainEvent) error {
	for _, e := range domainEvents {
		p.logger.Debug("Event dropped", zap.String("eventType", e.GetEventType()))
	}
	return nil
}
