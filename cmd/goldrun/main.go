package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"goldrun/internal/app/executor"
	"goldrun/internal/app/producer"
	"goldrun/internal/domain/execution"
	kafkainfra "goldrun/internal/infra/kafka"
	"goldrun/internal/metrics"
	"goldrun/internal/platform"
	"goldrun/internal/ports"
	"goldrun/internal/report"
	runtimex "goldrun/internal/runtime"
	"goldrun/internal/runtime/docker"
	"goldrun/internal/runtime/host"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		os.Exit(RuntimeErr)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "goldrun"
	app.Version = Version
	if GitCommit != "" {
		app.Version = fmt.Sprintf("%s-%s", Version, GitCommit)
	}
	app.Usage = "Golden-output test harness for an interpreter"
	app.Description = "goldrun runs every example program through the interpreter and compares its output with the recorded golden file"
	app.Flags = newFlags(Flags)
	app.Action = run
	app.Commands = []*cli.Command{
		{
			Name:   "watch",
			Usage:  "Print outcomes published to Kafka by other goldrun runs",
			Flags:  newFlags(WatchFlags),
			Action: watch,
		},
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		if err == nil {
			return
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
			return
		}
		cli.HandleExitCoder(cli.Exit(fmt.Sprintf("goldrun: %v", err), RuntimeErr))
	}
	return app
}

func run(c *cli.Context) error {
	cfg, err := loadAppConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(c.App.ErrWriter, cfg.LogLevel, useColor(cfg.Color, c.App.ErrWriter))
	if err != nil {
		return err
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.New("run", runID)
	logger.Debug("Config", "config", cfg)

	registry, err := newRuntimeRegistry(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := registry.Close(); cerr != nil {
			logger.Warn("Failed to close runtime", "err", cerr)
		}
	}()

	runner, err := registry.Open(cfg.Runtime)
	if err != nil {
		return err
	}

	cases, err := producer.NewService(producer.Config{
		ExamplesDir: cfg.ExamplesDir,
		GoldenDir:   cfg.GoldenDir,
		Filter:      cfg.Filter,
	}, logger)
	if err != nil {
		return err
	}

	color := useColor(cfg.Color, c.App.Writer)
	console := report.NewConsole(c.App.Writer, color)
	reporters := []ports.Reporter{console}
	if cfg.Table {
		reporters = append(reporters, report.NewTable(c.App.Writer, color))
	}

	var recorder *metrics.Recorder
	if cfg.MetricsFile != "" {
		recorder = metrics.NewRecorder(runID)
		reporters = append(reporters, recorder)
	}

	var publisher ports.OutcomePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		defer func() {
			if cerr := kafkaPublisher.Close(); cerr != nil {
				logger.Warn("Failed to close kafka publisher", "err", cerr)
			}
		}()
		publisher = kafkaPublisher
	}

	svc, err := executor.NewService(executor.Config{
		Producer:       cases,
		Runner:         runner,
		Reporters:      reporters,
		Publisher:      publisher,
		ExamplesDir:    cfg.ExamplesDir,
		AbortOnMissing: cfg.AbortOnMissing,
		RunID:          runID,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	summary, runErr := svc.Run(c.Context)
	if c.Context.Err() != nil || errors.Is(runErr, context.Canceled) {
		console.Interrupt()
		return cli.Exit("", Interrupted)
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics", "path", cfg.MetricsFile, "err", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if cfg.FailOnMismatch && summary.Failed > 0 {
		return cli.Exit("", TestFailure)
	}
	return nil
}

func newRuntimeRegistry(cfg appConfig, logger log.Logger) (*runtimex.Registry, error) {
	limits := execution.RunLimits{
		TimeLimit:        cfg.Timeout,
		MemoryLimitBytes: cfg.Docker.MemoryBytes,
	}

	return runtimex.NewRegistry(map[string]runtimex.Factory{
		runtimeHost: func() (ports.ProcessRunner, error) {
			interpreter, err := resolveInterpreter(cfg)
			if err != nil {
				return nil, err
			}
			return host.New(host.Config{Interpreter: interpreter, Limits: limits}, logger)
		},
		runtimeDocker: func() (ports.ProcessRunner, error) {
			return docker.New(docker.Config{
				Image:       cfg.Docker.Image,
				Workdir:     cfg.Docker.Workdir,
				Interpreter: cfg.Docker.Interpreter,
				Limits:      limits,
			}, logger)
		},
	})
}

func resolveInterpreter(cfg appConfig) (string, error) {
	var resolver platform.Resolver = platform.FixedResolver{Path: cfg.Interpreter}
	if cfg.Interpreter == "" {
		hostResolver, err := platform.Host(cfg.InterpreterBase)
		if err != nil {
			return "", err
		}
		resolver = hostResolver
	}
	return resolver.ResolveExecutablePath()
}

func newLogger(w io.Writer, level string, color bool) (log.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewLogger(log.NewTerminalHandlerWithLevel(w, lvl, color))
	log.SetDefault(logger)
	return logger, nil
}

// parseLogLevel accepts the geth level names. trace and crit sit outside
// the slog range and are mapped explicitly.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.LevelTrace, nil
	case "crit":
		return log.LevelCrit, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// useColor resolves a color mode for w. In auto mode only terminals get
// color, and NO_COLOR turns it off.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
