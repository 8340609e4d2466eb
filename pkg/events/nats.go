package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mediavault/mediavault/pkg/interfaces"
)

// NATSEventBus publishes domain events to NATS JetStream so other services
// (notifiers, reporting) can consume the pipeline's activity. It implements
// the same EventBus interface as the in-memory bus; local subscribers are
// NATS subscriptions.
type NATSEventBus struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	stream string
	logger interfaces.Logger

	mu   sync.Mutex
	subs map[string][]*nats.Subscription
}

// NewNATSEventBus connects to NATS and ensures the stream exists.
func NewNATSEventBus(url, stream string, logger interfaces.Logger) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamConfig := &nats.StreamConfig{
		Name:      stream,
		Subjects:  []string{stream + ".>"},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Discard:   nats.DiscardOld,
		Replicas:  1,
	}

	if _, err := js.AddStream(streamConfig); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		conn.Close()
		return nil, fmt.Errorf("create stream: %w", err)
	}

	return &NATSEventBus{
		conn:   conn,
		js:     js,
		stream: stream,
		logger: logger,
		subs:   make(map[string][]*nats.Subscription),
	}, nil
}

// Publish publishes an event to NATS and waits for the JetStream ack.
func (eb *NATSEventBus) Publish(ctx context.Context, event interfaces.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}

	if _, err := eb.js.Publish(eb.subject(event.EventType()), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s to NATS: %w", event.EventType(), err)
	}

	return nil
}

// PublishAsync publishes an event without waiting for the ack.
func (eb *NATSEventBus) PublishAsync(ctx context.Context, event interfaces.Event) {
	go func() {
		if err := eb.Publish(context.Background(), event); err != nil {
			eb.logger.Error("Async event publish failed",
				interfaces.String("event_type", event.EventType()),
				interfaces.Error(err))
		}
	}()
}

// Subscribe registers a durable consumer for a specific event type.
func (eb *NATSEventBus) Subscribe(eventType string, handler interfaces.EventHandler) error {
	durable := "consumer-" + strings.ReplaceAll(eventType, ".", "-")

	sub, err := eb.js.Subscribe(eb.subject(eventType), func(msg *nats.Msg) {
		var event BaseEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			eb.logger.Error("Failed to decode event",
				interfaces.String("subject", msg.Subject),
				interfaces.Error(err))
			msg.Term()
			return
		}

		handlerCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := handler.Handle(handlerCtx, &event); err != nil {
			eb.logger.Error("Event handler failed",
				interfaces.String("event_type", eventType),
				interfaces.Error(err))
			msg.Nak()
			return
		}
		msg.Ack()
	}, nats.Durable(durable), nats.ManualAck())
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", eventType, err)
	}

	eb.mu.Lock()
	eb.subs[eventType] = append(eb.subs[eventType], sub)
	eb.mu.Unlock()

	return nil
}

// Unsubscribe drains all subscriptions for an event type.
func (eb *NATSEventBus) Unsubscribe(eventType string, handler interfaces.EventHandler) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, sub := range eb.subs[eventType] {
		if err := sub.Drain(); err != nil {
			return fmt.Errorf("drain subscription for %s: %w", eventType, err)
		}
	}
	delete(eb.subs, eventType)

	return nil
}

// Start starts the event bus.
func (eb *NATSEventBus) Start(ctx context.Context) error {
	eb.logger.Info("NATS event bus started", interfaces.String("stream", eb.stream))
	return nil
}

// Stop drains the connection.
func (eb *NATSEventBus) Stop() error {
	if err := eb.conn.Drain(); err != nil {
		return err
	}
	eb.logger.Info("NATS event bus stopped")
	return nil
}

func (eb *NATSEventBus) subject(eventType string) string {
	return eb.stream + "." + eventType
}
