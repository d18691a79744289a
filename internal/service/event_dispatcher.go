package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/pkg/events"
	"github.com/noah-isme/sma-gradebook-api/pkg/jobs"
)

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// EventDispatcher hands reconciliation events to the background queue.
type EventDispatcher struct {
	queue      jobEnqueuer
	publisher  events.Publisher
	routingKey string
	logger     *zap.Logger
}

// NewEventDispatcher builds a dispatcher. The queue may be attached later with AttachQueue.
func NewEventDispatcher(publisher events.Publisher, routingKey string, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if routingKey == "" {
		routingKey = events.TypeResultsReconciled
	}
	return &EventDispatcher{publisher: publisher, routingKey: routingKey, logger: logger}
}

// AttachQueue sets the queue used by NotifyReconciled.
func (d *EventDispatcher) AttachQueue(queue jobEnqueuer) {
	d.queue = queue
}

// NotifyReconciled enqueues the event; a full or stopped queue is logged, not surfaced.
func (d *EventDispatcher) NotifyReconciled(_ context.Context, event events.ResultsReconciled) error {
	if d == nil || d.queue == nil {
		return nil
	}
	if err := d.queue.Enqueue(jobs.Job{ID: event.ID, Type: events.TypeResultsReconciled, Payload: event}); err != nil {
		d.logger.Warn("dropping reconciliation event", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}

// Handle is the queue handler that publishes queued events.
func (d *EventDispatcher) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != events.TypeResultsReconciled {
		return fmt.Errorf("unknown job type %q", job.Type)
	}
	body, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := d.publisher.Publish(ctx, d.routingKey, body); err != nil {
		return fmt.Errorf("publish %s: %w", job.ID, err)
	}
	return nil
}
