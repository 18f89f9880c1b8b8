package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeKafkaWriter struct {
	msgs []kafka.Message
	fail bool
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeKafkaWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	fk := &fakeKafkaWriter{}
	p := &KafkaPublisher{writer: fk}

	e := NewHelpfulVoted("p1", "r2", 3)
	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fk.msgs) != 1 || string(fk.msgs[0].Key) != "p1" {
		t.Fatalf("unexpected messages: %+v", fk.msgs)
	}

	var got Event
	if err := json.Unmarshal(fk.msgs[0].Value, &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.Type != TypeHelpfulVoted || got.ReviewID != "r2" || got.Helpful != 3 || got.ID == "" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeKafkaWriter{fail: true}}
	if err := p.Publish(context.Background(), NewHelpfulVoted("p1", "r1", 1)); err == nil {
		t.Error("expected an error when the broker fails")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.Publish(context.Background(), NewHelpfulVoted("p1", "r1", 1)); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
