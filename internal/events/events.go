package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// TypeHelpfulVoted est publié quand un avis reçoit un vote "utile"
const TypeHelpfulVoted = "review.helpful"

// Event est l'enveloppe des événements publiés
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id"`
	ReviewID   string    `json:"review_id"`
	Helpful    int64     `json:"helpful_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewHelpfulVoted crée un événement de vote pour un avis
func NewHelpfulVoted(productID, reviewID string, helpful int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeHelpfulVoted,
		ProductID:  productID,
		ReviewID:   reviewID,
		Helpful:    helpful,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher publie des événements du catalogue
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NoopPublisher ignore les événements (KAFKA_BROKERS vide)
type NoopPublisher struct{}

// Publish ignore l'événement
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close ne libère rien
func (NoopPublisher) Close() error { return nil }

// kafkaMessageWriter abstrait kafka.Writer pour les tests
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publie les événements sur un topic, clé = identifiant produit
type KafkaPublisher struct {
	writer kafkaMessageWriter
}

// NewKafkaPublisher crée un publisher; brokers est une liste host:port séparée par des virgules
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish écrit l'événement de façon synchrone
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.ProductID), Value: b}); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close vide et ferme le writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
