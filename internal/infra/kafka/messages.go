package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"goldrun/internal/compare"
	"goldrun/internal/domain/execution"
)

const (
	MessageTypeOutcome = "outcome"
	MessageTypeSummary = "summary"

	typeHeader = "goldrun-type"
)

// ErrMalformedMessage is returned for messages that are not goldrun
// envelopes.
var ErrMalformedMessage = errors.New("malformed message")

// ErrNotOpen is returned when publishing through a Publisher that has no
// writer.
var ErrNotOpen = errors.New("kafka publisher is not open")

// Envelope is the JSON document written for every case outcome and for the
// final run summary.
type Envelope struct {
	Type          string           `json:"type"`
	ID            string           `json:"id"`
	RunID         string           `json:"run_id"`
	Case          string           `json:"case,omitempty"`
	Outcome       string           `json:"outcome,omitempty"`
	Verdict       compare.Verdict  `json:"verdict,omitempty"`
	Status        execution.Status `json:"status,omitempty"`
	ExitCode      *int64           `json:"exit_code,omitempty"`
	DurationMs    *int64           `json:"duration_ms,omitempty"`
	Expected      string           `json:"expected,omitempty"`
	Actual        string           `json:"actual,omitempty"`
	Diff          string           `json:"diff,omitempty"`
	SkippedReason string           `json:"skipped_reason,omitempty"`
	Error         string           `json:"error,omitempty"`
	Summary       *SummaryEnvelope `json:"summary,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

type SummaryEnvelope struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

func makeOutcomeEnvelope(runID string, outcome execution.CaseOutcome) Envelope {
	env := Envelope{
		Type:      MessageTypeOutcome,
		ID:        uuid.NewString(),
		RunID:     runID,
		Case:      outcome.Case.Name,
		Outcome:   string(outcome.Kind),
		Timestamp: time.Now().UTC(),
	}

	switch outcome.Kind {
	case execution.OutcomeOK:
		env.Verdict = outcome.Comparison.Verdict
		env.Expected = outcome.Expected
		if !outcome.Passed() {
			env.Diff = compare.Render(outcome.Comparison, compare.PlainScheme{})
		}
		if out := outcome.Output; out != nil {
			exit := out.ExitCode
			dur := out.Duration.Milliseconds()
			env.Status = out.Status
			env.ExitCode = &exit
			env.DurationMs = &dur
			env.Actual = out.Text
		}
	case execution.OutcomeSkipped:
		if outcome.Err != nil {
			env.SkippedReason = outcome.Err.Error()
		}
	case execution.OutcomeFatal:
		if outcome.Err != nil {
			env.Error = outcome.Err.Error()
		}
	}

	return env
}

func makeSummaryEnvelope(runID string, summary execution.RunSummary) Envelope {
	return Envelope{
		Type:  MessageTypeSummary,
		ID:    uuid.NewString(),
		RunID: runID,
		Summary: &SummaryEnvelope{
			Processed: summary.Processed,
			Succeeded: summary.Succeeded,
			Failed:    summary.Failed,
			Skipped:   summary.Skipped,
		},
		Timestamp: time.Now().UTC(),
	}
}

// message encodes env keyed by its run ID. The type header lets consumers
// route without decoding the payload.
func (e Envelope) message() (kafkago.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshal %s envelope: %w", e.Type, err)
	}
	return kafkago.Message{
		Key:     []byte(e.RunID),
		Value:   payload,
		Time:    e.Timestamp,
		Headers: []kafkago.Header{{Key: typeHeader, Value: []byte(e.Type)}},
	}, nil
}

func decodeEnvelope(msg kafkago.Message) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: decode: %w", ErrMalformedMessage, err)
	}

	switch env.Type {
	case MessageTypeOutcome:
		if env.Case == "" {
			return Envelope{}, fmt.Errorf("%w: outcome message missing case", ErrMalformedMessage)
		}
	case MessageTypeSummary:
		if env.Summary == nil {
			return Envelope{}, fmt.Errorf("%w: summary message missing counters", ErrMalformedMessage)
		}
	default:
		return Envelope{}, fmt.Errorf("%w: unknown message type %q", ErrMalformedMessage, env.Type)
	}

	if env.RunID == "" {
		env.RunID = string(msg.Key)
	}
	return env, nil
}

func validateEndpoint(brokers []string, topic string) error {
	if len(brokers) == 0 {
		return errors.New("at least one broker must be provided")
	}
	if topic == "" {
		return errors.New("topic must be provided")
	}
	return nil
}
