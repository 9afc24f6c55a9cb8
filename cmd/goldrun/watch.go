package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	kafkainfra "goldrun/internal/infra/kafka"
	"goldrun/internal/report"
)

// watch follows the outcome topic. With --run-id it stops after that run's
// summary; otherwise it runs until interrupted.
func watch(c *cli.Context) error {
	logger, err := newLogger(c.App.ErrWriter, logLevelOrDefault(c.String(LogLevel.Name)), useColor(colorAuto, c.App.ErrWriter))
	if err != nil {
		return err
	}

	brokers := parseBrokerList(c.String(KafkaBrokers.Name))
	topic := c.String(KafkaTopic.Name)
	if topic == "" {
		topic = defaultKafkaTopic
	}

	consumer, err := kafkainfra.NewConsumer(kafkainfra.Config{
		Brokers: brokers,
		Topic:   topic,
		GroupID: c.String(KafkaGroupID.Name),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize kafka consumer: %w", err)
	}
	defer func() {
		if cerr := consumer.Close(); cerr != nil {
			logger.Warn("Failed to close kafka consumer", "err", cerr)
		}
	}()

	runID := c.String(RunID.Name)
	for {
		env, err := consumer.Next(c.Context)
		if err != nil {
			if c.Context.Err() != nil {
				return cli.Exit("", Interrupted)
			}
			if errors.Is(err, kafkainfra.ErrMalformedMessage) {
				logger.Warn("Skipping message", "err", err)
				continue
			}
			return fmt.Errorf("read outcome: %w", err)
		}

		if runID != "" && env.RunID != runID {
			continue
		}
		printEnvelope(c.App.Writer, env)
		if runID != "" && env.Type == kafkainfra.MessageTypeSummary {
			return nil
		}
	}
}

func printEnvelope(w io.Writer, env kafkainfra.Envelope) {
	switch env.Type {
	case kafkainfra.MessageTypeSummary:
		s := env.Summary
		fmt.Fprintf(w, "[%s] Processed %d %s, %d succeeded, %d failed, %d skipped\n",
			env.RunID, s.Processed, report.Pluralize("test", s.Processed), s.Succeeded, s.Failed, s.Skipped)
	default:
		line := fmt.Sprintf("[%s] %s: %s", env.RunID, env.Case, env.Outcome)
		if env.Verdict != "" {
			line += " " + string(env.Verdict)
		}
		if env.DurationMs != nil {
			line += fmt.Sprintf(" (%dms)", *env.DurationMs)
		}
		fmt.Fprintln(w, line)
		if env.Diff != "" {
			fmt.Fprintln(w, env.Diff)
		}
	}
}

func logLevelOrDefault(level string) string {
	if level == "" {
		return defaultLogLevel
	}
	return level
}
