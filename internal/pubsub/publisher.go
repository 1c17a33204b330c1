package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Domain event types
const (
	EventClassDeleted     = "class.deleted"
	EventMemberJoined     = "member.joined"
	EventMemberRoleChange = "member.role_changed"
	EventSubmissionGraded = "submission.graded"
)

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// Event is the envelope written to the events topic.
type Event struct {
	Type       string    `json:"type"`
	ClassID    string    `json:"class_id"`
	ActorID    string    `json:"actor_id"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher for the given GCP project.
func NewPublisher(ctx context.Context, projectID string, opts ...option.ClientOption) (*PubSubPublisher, error) {
	if projectID == "" {
		return nil, fmt.Errorf("failed to create Pub/Sub client: project ID is empty")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// LogPublisher stands in when no events topic is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("service", "LogPublisher").Logger()}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	p.logger.Debug().Str("topic", topic).RawJSON("payload", payload).Msg("Event not published, no topic configured")
	return "", nil
}

// Emitter publishes domain events to a single topic and never fails the caller.
type Emitter struct {
	publisher Publisher
	topic     string
	logger    zerolog.Logger
	now       func() time.Time
}

func NewEmitter(publisher Publisher, topic string, logger zerolog.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("service", "EventEmitter").Logger(),
		now:       time.Now,
	}
}

// Emit publishes the event. Failures are logged only.
func (e *Emitter) Emit(ctx context.Context, eventType, classID, actorID string, data any) {
	if e == nil || e.publisher == nil {
		return
	}
	payload, err := json.Marshal(Event{
		Type:       eventType,
		ClassID:    classID,
		ActorID:    actorID,
		Data:       data,
		OccurredAt: e.now().UTC(),
	})
	if err != nil {
		e.logger.Error().Err(err).Str("type", eventType).Msg("Failed to marshal event")
		return
	}
	if _, err := e.publisher.Publish(ctx, e.topic, payload); err != nil {
		e.logger.Error().Err(err).Str("type", eventType).Str("topic", e.topic).Msg("Failed to publish event")
	}
}
