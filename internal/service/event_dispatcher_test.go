package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/pkg/events"
	"github.com/noah-isme/sma-gradebook-api/pkg/jobs"
)

type publisherStub struct {
	routingKey string
	body       []byte
	err        error
}

func (p *publisherStub) Publish(_ context.Context, routingKey string, body []byte) error {
	p.routingKey = routingKey
	p.body = body
	return p.err
}

func (p *publisherStub) Close() error { return nil }

type enqueuerStub struct {
	jobs []jobs.Job
	err  error
}

func (e *enqueuerStub) Enqueue(job jobs.Job) error {
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, job)
	return nil
}

func TestEventDispatcherNotifyEnqueues(t *testing.T) {
	queue := &enqueuerStub{}
	dispatcher := NewEventDispatcher(&publisherStub{}, "", nil)
	dispatcher.AttachQueue(queue)

	event := events.ResultsReconciled{ID: "evt-1", StudentID: "stu-1", ClassID: 1, Subjects: []string{"Math"}}
	require.NoError(t, dispatcher.NotifyReconciled(context.Background(), event))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "evt-1", queue.jobs[0].ID)
	assert.Equal(t, events.TypeResultsReconciled, queue.jobs[0].Type)
}

func TestEventDispatcherNotifyWithoutQueue(t *testing.T) {
	var nilDispatcher *EventDispatcher
	assert.NoError(t, nilDispatcher.NotifyReconciled(context.Background(), events.ResultsReconciled{}))
	assert.NoError(t, NewEventDispatcher(&publisherStub{}, "", nil).NotifyReconciled(context.Background(), events.ResultsReconciled{}))
}

func TestEventDispatcherNotifySurfacesQueueFull(t *testing.T) {
	dispatcher := NewEventDispatcher(&publisherStub{}, "", nil)
	dispatcher.AttachQueue(&enqueuerStub{err: jobs.ErrQueueFull})
	err := dispatcher.NotifyReconciled(context.Background(), events.ResultsReconciled{ID: "evt-2"})
	assert.ErrorIs(t, err, jobs.ErrQueueFull)
}

func TestEventDispatcherHandlePublishesJSON(t *testing.T) {
	publisher := &publisherStub{}
	dispatcher := NewEventDispatcher(publisher, "grades.changed", nil)
	occurred := time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

	err := dispatcher.Handle(context.Background(), jobs.Job{
		ID:      "evt-3",
		Type:    events.TypeResultsReconciled,
		Payload: events.ResultsReconciled{ID: "evt-3", StudentID: "stu-1", ClassID: 2, Subjects: []string{"Math"}, OccurredAt: occurred},
	})
	require.NoError(t, err)
	assert.Equal(t, "grades.changed", publisher.routingKey)

	var decoded events.ResultsReconciled
	require.NoError(t, json.Unmarshal(publisher.body, &decoded))
	assert.Equal(t, "stu-1", decoded.StudentID)
	assert.Equal(t, int64(2), decoded.ClassID)
	assert.True(t, occurred.Equal(decoded.OccurredAt))
}

func TestEventDispatcherHandleErrors(t *testing.T) {
	dispatcher := NewEventDispatcher(&publisherStub{err: errors.New("channel closed")}, "", nil)

	err := dispatcher.Handle(context.Background(), jobs.Job{Type: "unknown"})
	assert.Error(t, err)

	err = dispatcher.Handle(context.Background(), jobs.Job{ID: "evt-4", Type: events.TypeResultsReconciled, Payload: events.ResultsReconciled{}})
	assert.ErrorContains(t, err, "channel closed")
}
