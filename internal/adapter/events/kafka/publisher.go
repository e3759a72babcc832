// Package kafka publishes committed-transfer events for downstream consumers
// (notification fan-out, analytics). Publishing is best-effort: the ledger
// has already committed by the time an event is written, and a lost event
// never affects balances.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"points-ledger/internal/core/domain"

	kafkago "github.com/segmentio/kafka-go"
)

// TransferCommitted is the wire format of a committed transfer event.
type TransferCommitted struct {
	RecordID   string `json:"record_id"`
	Seq        int64  `json:"seq"`
	FromID     string `json:"from_id"`
	ToID       string `json:"to_id"`
	Kind       string `json:"kind"`
	Amount     int64  `json:"amount"`
	OccurredAt string `json:"occurred_at"`
}

// Publisher implements ports.EventPublisher on a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a publisher writing to the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Publish writes one event per committed transfer, keyed by the receiving
// account so a consumer sees each account's credits in order.
func (p *Publisher) Publish(ctx context.Context, record *domain.TransferRecord) error {
	event := TransferCommitted{
		RecordID:   record.ID.String(),
		Seq:        record.Seq,
		FromID:     record.FromID,
		ToID:       record.ToID,
		Kind:       string(record.Kind),
		Amount:     record.Amount,
		OccurredAt: record.CreatedAt.Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transfer event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(record.ToID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
