package kafka

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	DefaultGroupID = "goldrun-watch"

	defaultMaxBytes = 10 << 20
	defaultMaxWait  = time.Second
)

// Config selects the topic and consumer group the watch command reads from.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads envelopes back from the outcome topic. A new consumer group
// starts from the oldest retained message.
type Consumer struct {
	reader messageReader
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

func NewConsumer(cfg Config) (*Consumer, error) {
	if err := validateEndpoint(cfg.Brokers, cfg.Topic); err != nil {
		return nil, err
	}
	if cfg.GroupID == "" {
		cfg.GroupID = DefaultGroupID
	}

	return newConsumer(kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    defaultMaxBytes,
		MaxWait:     defaultMaxWait,
	})), nil
}

func newConsumer(reader messageReader) *Consumer {
	return &Consumer{reader: reader}
}

// Next blocks until the next envelope arrives or ctx is done. Messages that
// are not goldrun envelopes are returned as ErrMalformedMessage so the caller
// can skip them.
func (c *Consumer) Next(ctx context.Context) (Envelope, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return Envelope{}, err
	}
	return decodeEnvelope(msg)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
