package customers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/bancore/backend/pkg/dedup"
	"github.com/bancore/backend/pkg/logger"
	"github.com/bancore/backend/pkg/metrics"
	"github.com/google/uuid"
)

// Consumer pulls customer lifecycle events off the subscription and applies
// them to the local snapshots. Delivery is at-least-once: the Redis guard
// short-circuits recent redeliveries, the database marker is authoritative.
type Consumer struct {
	svc          Service
	subscription *pubsub.Subscriber
	guard        *dedup.Guard
	logg         *logger.Logger
	metrics      *metrics.ConsumerMetrics
	name         string
}

// NewConsumer builds a customer event consumer.
func NewConsumer(svc Service, subscription *pubsub.Subscriber, guard *dedup.Guard, logg *logger.Logger, m *metrics.ConsumerMetrics, name string) (*Consumer, error) {
	if svc == nil {
		return nil, fmt.Errorf("customers service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("customer subscription required")
	}
	if guard == nil {
		return nil, fmt.Errorf("dedup guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("consumer name required")
	}
	return &Consumer{
		svc:          svc,
		subscription: subscription,
		guard:        guard,
		logg:         logg,
		metrics:      m,
		name:         name,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"consumer":   c.name,
	})

	var event CustomerEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode customer event", err)
		c.metrics.IncOutcome(metrics.ConsumerOutcomeMalformed)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(strings.TrimSpace(event.EventID))
	if err != nil || eventID == uuid.Nil {
		c.logg.Warn(logCtx, "dropping event without a usable id")
		c.metrics.IncOutcome(metrics.ConsumerOutcomeMalformed)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id":   eventID.String(),
		"event_type": event.EventType,
	})

	already, err := c.guard.CheckAndMark(ctx, c.name, eventID)
	if err != nil {
		c.logg.Error(logCtx, "dedup guard check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		c.metrics.IncOutcome(metrics.ConsumerOutcomeDuplicate)
		return processResult{ack: true}
	}

	outcome, err := c.svc.Apply(ctx, event)
	if err != nil {
		c.logg.Error(logCtx, "applying customer event failed", err)
		_ = c.guard.Release(ctx, c.name, eventID)
		c.metrics.IncOutcome(metrics.ConsumerOutcomeFailed)
		return processResult{nack: true}
	}

	switch outcome {
	case OutcomeMalformed:
		c.logg.Warn(logCtx, "dropping malformed customer event")
		c.metrics.IncOutcome(metrics.ConsumerOutcomeMalformed)
	case OutcomeDuplicate:
		c.logg.Info(logCtx, "event already processed")
		c.metrics.IncOutcome(metrics.ConsumerOutcomeDuplicate)
	default:
		logCtx = c.logg.WithCustomerID(logCtx, event.Payload.CustomerID)
		c.logg.Info(logCtx, "customer snapshot updated")
		c.metrics.IncOutcome(metrics.ConsumerOutcomeApplied)
	}
	return processResult{ack: true}
}
