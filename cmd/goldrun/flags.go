package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	kafkainfra "goldrun/internal/infra/kafka"
)

const EnvVarPrefix = "GOLDRUN"

func prefixEnvVar(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		EnvVars: prefixEnvVar("CONFIG"),
		Usage:   "Path to a YAML config file; flags and env vars take precedence",
	}
	Root = &cli.StringFlag{
		Name:    "root",
		EnvVars: prefixEnvVar("ROOT"),
		Usage:   "Project root holding examples/ and build/ (default: working directory)",
	}
	ExamplesDir = &cli.StringFlag{
		Name:    "examples-dir",
		EnvVars: prefixEnvVar("EXAMPLES_DIR"),
		Usage:   "Directory of example programs (default: <root>/examples)",
	}
	GoldenDir = &cli.StringFlag{
		Name:    "golden-dir",
		EnvVars: prefixEnvVar("GOLDEN_DIR"),
		Usage:   "Directory of <name>.out and <name>.in files (default: <examples-dir>/out_test)",
	}
	Interpreter = &cli.StringFlag{
		Name:    "interpreter",
		EnvVars: prefixEnvVar("INTERPRETER"),
		Usage:   "Exact interpreter path; bypasses platform suffixing",
	}
	InterpreterBase = &cli.StringFlag{
		Name:    "interpreter-base",
		EnvVars: prefixEnvVar("INTERPRETER_BASE"),
		Usage:   "Interpreter path without platform suffix (default: <root>/build/lisp_impl)",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		EnvVars: prefixEnvVar("TIMEOUT"),
		Usage:   "Per-case time limit (e.g. '5s'). 0 waits for the interpreter indefinitely",
	}
	Runtime = &cli.StringFlag{
		Name:    "runtime",
		EnvVars: prefixEnvVar("RUNTIME"),
		Usage:   "Where the interpreter runs: 'host' or 'docker'",
	}
	DockerImage = &cli.StringFlag{
		Name:    "docker.image",
		EnvVars: prefixEnvVar("DOCKER_IMAGE"),
		Usage:   "Image containing the interpreter, required with --runtime docker",
	}
	DockerWorkdir = &cli.StringFlag{
		Name:    "docker.workdir",
		EnvVars: prefixEnvVar("DOCKER_WORKDIR"),
		Usage:   "Directory inside the container examples are copied to",
	}
	DockerInterpreter = &cli.StringFlag{
		Name:    "docker.interpreter",
		EnvVars: prefixEnvVar("DOCKER_INTERPRETER"),
		Usage:   "Interpreter path inside the image",
	}
	DockerMemory = &cli.Int64Flag{
		Name:    "docker.memory",
		EnvVars: prefixEnvVar("DOCKER_MEMORY"),
		Usage:   "Container memory limit in bytes. 0 means unlimited",
	}
	AbortOnMissing = &cli.BoolFlag{
		Name:    "abort-on-missing",
		EnvVars: prefixEnvVar("ABORT_ON_MISSING"),
		Usage:   "Abort the run when a golden file is missing instead of skipping the case",
	}
	FailOnMismatch = &cli.BoolFlag{
		Name:    "fail-on-mismatch",
		EnvVars: prefixEnvVar("FAIL_ON_MISMATCH"),
		Usage:   "Exit with status 1 when any case fails",
	}
	Filter = &cli.StringFlag{
		Name:    "filter",
		EnvVars: prefixEnvVar("FILTER"),
		Usage:   "Only run examples whose name matches this glob",
	}
	Table = &cli.BoolFlag{
		Name:    "table",
		EnvVars: prefixEnvVar("TABLE"),
		Usage:   "Print a per-case results table after the summary",
	}
	Color = &cli.StringFlag{
		Name:    "color",
		EnvVars: prefixEnvVar("COLOR"),
		Usage:   "Color output: 'auto', 'always' or 'never'",
	}
	MetricsFile = &cli.StringFlag{
		Name:    "metrics.file",
		EnvVars: prefixEnvVar("METRICS_FILE"),
		Usage:   "Write Prometheus metrics to this textfile after the run",
	}
	KafkaBrokers = &cli.StringFlag{
		Name:    "kafka.brokers",
		EnvVars: prefixEnvVar("KAFKA_BROKERS"),
		Usage:   "Comma-separated Kafka brokers; enables outcome publishing",
	}
	KafkaTopic = &cli.StringFlag{
		Name:    "kafka.topic",
		EnvVars: prefixEnvVar("KAFKA_TOPIC"),
		Usage:   "Kafka topic outcomes are published to",
	}
	KafkaGroupID = &cli.StringFlag{
		Name:    "kafka.group",
		Value:   kafkainfra.DefaultGroupID,
		EnvVars: prefixEnvVar("KAFKA_GROUP_ID"),
		Usage:   "Consumer group used by the watch command",
	}
	RunID = &cli.StringFlag{
		Name:    "run-id",
		EnvVars: prefixEnvVar("RUN_ID"),
		Usage:   "Run identifier attached to published outcomes (default: random UUID)",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		EnvVars: prefixEnvVar("LOG_LEVEL"),
		Usage:   "Log level: trace, debug, info, warn, error or crit",
	}
)

var Flags = []cli.Flag{
	ConfigFile,
	Root,
	ExamplesDir,
	GoldenDir,
	Interpreter,
	InterpreterBase,
	Timeout,
	Runtime,
	DockerImage,
	DockerWorkdir,
	DockerInterpreter,
	DockerMemory,
	AbortOnMissing,
	FailOnMismatch,
	Filter,
	Table,
	Color,
	MetricsFile,
	KafkaBrokers,
	KafkaTopic,
	RunID,
	LogLevel,
}

var WatchFlags = []cli.Flag{
	KafkaBrokers,
	KafkaTopic,
	KafkaGroupID,
	RunID,
	LogLevel,
}

// newFlags copies flags for one app. cli records env-sourced values on the
// flag structs it applies, so apps must not share them.
func newFlags(flags []cli.Flag) []cli.Flag {
	out := make([]cli.Flag, len(flags))
	for i, flag := range flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			c := *f
			out[i] = &c
		case *cli.BoolFlag:
			c := *f
			out[i] = &c
		case *cli.DurationFlag:
			c := *f
			out[i] = &c
		case *cli.Int64Flag:
			c := *f
			out[i] = &c
		default:
			panic(fmt.Sprintf("newFlags: unsupported flag type %T", flag))
		}
	}
	return out
}
