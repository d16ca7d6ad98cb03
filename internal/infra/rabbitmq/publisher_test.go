package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"screening-score-service/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	declared   string
	durable    bool
	declareErr error
	publishErr error
	key        string
	published  []amqp.Publishing
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.declared = name
	c.durable = durable
	return amqp.Queue{Name: name}, c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.key = key
	c.published = append(c.published, msg)
	return c.publishErr
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisherDeclaresDurableDefaultQueue(t *testing.T) {
	ch := &fakeChannel{}
	if _, err := NewPublisher(ch, ""); err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if ch.declared != DefaultQueue || !ch.durable {
		t.Fatalf("expected durable %q queue, got %q durable=%v", DefaultQueue, ch.declared, ch.durable)
	}
}

func TestPublisherSendsJSONEvent(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "scores")
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	event := domain.ScoreSavedEvent{
		Type:          domain.AuditActionScoreSaved,
		CandidateID:   "c1",
		ScreeningID:   "screening-1",
		TotalScore:    3,
		TotalPossible: 4,
		Percentage:    75,
		Status:        domain.StatusPassed,
		ScoredBy:      "admin",
		ScoredAt:      time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
	if err := p.PublishScoreSaved(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if ch.key != "scores" || len(ch.published) != 1 {
		t.Fatalf("expected one message routed to scores, got key=%q n=%d", ch.key, len(ch.published))
	}
	msg := ch.published[0]
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected message properties %+v", msg)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got["type"] != "score.saved" || got["candidateId"] != "c1" || got["percentage"] != float64(75) || got["status"] != "PASSED" {
		t.Fatalf("unexpected body %v", got)
	}
}

func TestPublisherErrors(t *testing.T) {
	if _, err := NewPublisher(&fakeChannel{declareErr: errors.New("denied")}, ""); err == nil {
		t.Fatalf("expected declare error")
	}

	ch := &fakeChannel{publishErr: errors.New("closed")}
	p, _ := NewPublisher(ch, "")
	if err := p.PublishScoreSaved(context.Background(), domain.ScoreSavedEvent{}); err == nil {
		t.Fatalf("expected publish error")
	}
	if err := p.Close(); err != nil || !ch.closed {
		t.Fatalf("expected channel closed, err=%v", err)
	}
}
