package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"printer_monitor/internal/models"

	"github.com/segmentio/kafka-go"
)

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier writes events to a topic keyed by printer id, so one
// printer's events stay ordered within a partition.
type KafkaNotifier struct {
	writer kafkaMessageWriter
}

// NewKafkaNotifier builds a synchronous writer against brokers.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka topic must not be empty")
	}
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return newKafkaNotifier(w), nil
}

func newKafkaNotifier(w kafkaMessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

func (k *KafkaNotifier) SendHeaterEvent(ctx context.Context, ev models.HeaterEvent) error {
	payload, err := FormatPayload(ev)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.PrinterID, 10)),
		Value: payload,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Kind)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
