package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"goldrun/internal/compare"
	"goldrun/internal/domain/execution"
)

func TestNewConsumerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewConsumer(Config{}); err == nil {
		t.Fatalf("expected error when brokers missing")
	}
	if _, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Fatalf("expected error when topic missing")
	}
}

func TestNewConsumerAppliesDefaults(t *testing.T) {
	t.Parallel()

	consumer, err := NewConsumer(Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "goldrun-outcomes",
	})
	if err != nil {
		t.Fatalf("NewConsumer returned error: %v", err)
	}
	if err := consumer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestConsumerNextDecodesOutcome(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(Envelope{Type: MessageTypeOutcome, Case: "add.lisp", Verdict: compare.Pass})
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}

	reader := &fakeReader{messages: []kafkago.Message{{Key: []byte("run-1"), Value: payload}}}
	consumer := newConsumer(reader)

	env, err := consumer.Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if env.RunID != "run-1" {
		t.Fatalf("expected run ID from key, got %q", env.RunID)
	}
	if env.Case != "add.lisp" || env.Verdict != compare.Pass {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestConsumerNextValidationErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		envelope Envelope
		match    string
	}{
		{
			name:     "outcome without case",
			envelope: Envelope{Type: MessageTypeOutcome},
			match:    "missing case",
		},
		{
			name:     "summary without counters",
			envelope: Envelope{Type: MessageTypeSummary},
			match:    "missing counters",
		},
		{
			name:     "unknown type",
			envelope: Envelope{Type: "weird"},
			match:    "unknown message type",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload, err := json.Marshal(tc.envelope)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			consumer := newConsumer(&fakeReader{messages: []kafkago.Message{{Value: payload}}})

			_, err = consumer.Next(context.Background())
			if err == nil || !strings.Contains(err.Error(), tc.match) {
				t.Fatalf("expected error containing %q, got %v", tc.match, err)
			}
			if !errors.Is(err, ErrMalformedMessage) {
				t.Fatalf("expected ErrMalformedMessage, got %v", err)
			}
		})
	}
}

func TestConsumerNextPropagatesReaderError(t *testing.T) {
	t.Parallel()

	consumer := newConsumer(&fakeReader{})

	_, err := consumer.Next(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF from exhausted reader, got %v", err)
	}
}

func TestConsumerCloseProxiesUnderlyingReader(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{}
	consumer := newConsumer(reader)

	if err := consumer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !reader.closed {
		t.Fatalf("expected reader to be closed")
	}
}

func TestPublisherValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewPublisher(PublisherConfig{}); err == nil {
		t.Fatalf("expected error when brokers missing")
	}
	if _, err := NewPublisher(PublisherConfig{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Fatalf("expected error when topic missing")
	}
}

func TestNewPublisherValidConfig(t *testing.T) {
	t.Parallel()

	publisher, err := NewPublisher(PublisherConfig{Brokers: []string{"localhost:9092"}, Topic: "goldrun-outcomes"})
	if err != nil {
		t.Fatalf("NewPublisher returned error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestPublisherPublishesFailedOutcome(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	publisher := newPublisher(writer)

	expected := "hello world\n"
	output := &execution.CapturedOutput{
		Text:     "hellO wor\n",
		Stderr:   "warn",
		ExitCode: 7,
		Status:   execution.StatusOK,
		Duration: 1500 * time.Millisecond,
	}
	outcome := execution.Ok(
		execution.TestCase{Name: "greet.lisp"},
		expected,
		output,
		compare.Diff(compare.Normalize(expected), compare.Normalize(output.Text)),
	)

	if err := publisher.PublishOutcome(context.Background(), "run-42", outcome); err != nil {
		t.Fatalf("PublishOutcome returned error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.messages))
	}
	if string(writer.messages[0].Key) != "run-42" {
		t.Fatalf("unexpected key %q", writer.messages[0].Key)
	}
	if h := writer.messages[0].Headers; len(h) != 1 || h[0].Key != typeHeader || string(h[0].Value) != MessageTypeOutcome {
		t.Fatalf("unexpected headers %+v", h)
	}

	var env Envelope
	if err := json.Unmarshal(writer.messages[0].Value, &env); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}

	if env.Type != MessageTypeOutcome || env.RunID != "run-42" || env.Case != "greet.lisp" {
		t.Fatalf("unexpected envelope header: %+v", env)
	}
	if env.ID == "" {
		t.Fatalf("expected message id to be set")
	}
	if env.Verdict != compare.Fail {
		t.Fatalf("unexpected verdict: %q", env.Verdict)
	}
	if env.Diff != "hell[O] wor{-ld}" {
		t.Fatalf("unexpected diff: %q", env.Diff)
	}
	if env.ExitCode == nil || *env.ExitCode != 7 {
		t.Fatalf("expected exit code 7")
	}
	if env.DurationMs == nil || *env.DurationMs != 1500 {
		t.Fatalf("expected duration 1500ms")
	}
	if env.Expected != expected || env.Actual != output.Text {
		t.Fatalf("expected transcripts to be carried, got %q / %q", env.Expected, env.Actual)
	}

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !writer.closed {
		t.Fatalf("expected writer to be closed")
	}
}

func TestPublisherPublishesSkippedOutcome(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	publisher := newPublisher(writer)

	outcome := execution.Skipped(execution.TestCase{Name: "orphan.lisp"}, errors.New("no golden file"))
	if err := publisher.PublishOutcome(context.Background(), "run-1", outcome); err != nil {
		t.Fatalf("PublishOutcome returned error: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(writer.messages[0].Value, &env); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}
	if env.Outcome != string(execution.OutcomeSkipped) || env.SkippedReason != "no golden file" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.Verdict != "" || env.ExitCode != nil {
		t.Fatalf("skipped outcome must not carry a verdict: %+v", env)
	}
}

func TestPublisherPublishesSummary(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	publisher := newPublisher(writer)

	summary := execution.RunSummary{Processed: 3, Succeeded: 2, Failed: 1, Skipped: 1}
	if err := publisher.PublishSummary(context.Background(), "run-7", summary); err != nil {
		t.Fatalf("PublishSummary returned error: %v", err)
	}

	env, err := decodeEnvelope(writer.messages[0])
	if err != nil {
		t.Fatalf("decodeEnvelope returned error: %v", err)
	}
	if env.Type != MessageTypeSummary {
		t.Fatalf("unexpected type %q", env.Type)
	}
	want := SummaryEnvelope{Processed: 3, Succeeded: 2, Failed: 1, Skipped: 1}
	if *env.Summary != want {
		t.Fatalf("unexpected summary %+v", *env.Summary)
	}
}

func TestPublisherCloseWithNilWriter(t *testing.T) {
	t.Parallel()

	publisher := &Publisher{}
	if err := publisher.Close(); err != nil {
		t.Fatalf("Close should succeed when writer nil, got %v", err)
	}
}

func TestPublisherPublishErrors(t *testing.T) {
	t.Parallel()

	t.Run("writer nil", func(t *testing.T) {
		publisher := &Publisher{}
		err := publisher.PublishSummary(context.Background(), "run", execution.RunSummary{})
		if !errors.Is(err, ErrNotOpen) {
			t.Fatalf("expected ErrNotOpen, got %v", err)
		}
	})

	t.Run("writer failure", func(t *testing.T) {
		publisher := newPublisher(&fakeWriter{err: errors.New("boom")})
		err := publisher.PublishOutcome(context.Background(), "run", execution.Skipped(execution.TestCase{Name: "a"}, errors.New("x")))
		if err == nil || !strings.Contains(err.Error(), "write outcome message") {
			t.Fatalf("expected write failure, got %v", err)
		}
	})
}

type fakeReader struct {
	messages []kafkago.Message
	err      error
	index    int
	closed   bool
}

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	if r.index < len(r.messages) {
		msg := r.messages[r.index]
		r.index++
		return msg, nil
	}
	if r.err != nil {
		return kafkago.Message{}, r.err
	}
	return kafkago.Message{}, io.EOF
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}
