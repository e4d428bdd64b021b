package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes signals to a Kafka topic, keyed by event id so all
// signals for one event land on the same partition. The log line is written
// first so a signal is never lost silently when Kafka is down.
type KafkaSink struct {
	writer *kafka.Writer
	log    *LogSink
}

// NewKafkaSink creates a sink writing to topic on brokers
func NewKafkaSink(brokers []string, topic string, logger zerolog.Logger) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 5 * time.Second,
		},
		log: NewLogSink(logger),
	}
}

// Emit implements Sink
func (s *KafkaSink) Emit(ctx context.Context, sig Signal) error {
	_ = s.log.Emit(ctx, sig)

	value, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal reconcile signal: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(sig.EventID),
		Value: value,
		Time:  sig.At,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish reconcile signal: %w", err)
	}
	return nil
}

// Close flushes and closes the writer
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
