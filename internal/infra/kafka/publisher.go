package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

const publishBatchTimeout = 10 * time.Millisecond

var _ ports.OutcomePublisher = (*Publisher)(nil)

type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// Publisher streams case outcomes and run summaries to a topic. Messages are
// keyed by run ID, so every message of one run lands on one partition in
// case order.
type Publisher struct {
	writer messageWriter
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if err := validateEndpoint(cfg.Brokers, cfg.Topic); err != nil {
		return nil, err
	}

	return newPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           publishBatchTimeout,
	}), nil
}

func newPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) PublishOutcome(ctx context.Context, runID string, outcome execution.CaseOutcome) error {
	return p.send(ctx, makeOutcomeEnvelope(runID, outcome))
}

func (p *Publisher) PublishSummary(ctx context.Context, runID string, summary execution.RunSummary) error {
	return p.send(ctx, makeSummaryEnvelope(runID, summary))
}

func (p *Publisher) send(ctx context.Context, env Envelope) error {
	if p.writer == nil {
		return ErrNotOpen
	}

	msg, err := env.message()
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s message: %w", env.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
