package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	runtimeHost   = "host"
	runtimeDocker = "docker"

	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"

	defaultKafkaTopic        = "goldrun-outcomes"
	defaultDockerInterpreter = "/usr/local/bin/lisp_impl"
	defaultLogLevel          = "info"
)

type appConfig struct {
	Root            string        `yaml:"root"`
	ExamplesDir     string        `yaml:"examples_dir"`
	GoldenDir       string        `yaml:"golden_dir"`
	Interpreter     string        `yaml:"interpreter"`
	InterpreterBase string        `yaml:"interpreter_base"`
	Timeout         time.Duration `yaml:"timeout"`
	Runtime         string        `yaml:"runtime"`
	Docker          dockerConfig  `yaml:"docker"`
	AbortOnMissing  bool          `yaml:"abort_on_missing"`
	FailOnMismatch  bool          `yaml:"fail_on_mismatch"`
	Filter          string        `yaml:"filter"`
	Table           bool          `yaml:"table"`
	Color           string        `yaml:"color"`
	MetricsFile     string        `yaml:"metrics_file"`
	Kafka           kafkaConfig   `yaml:"kafka"`
	RunID           string        `yaml:"run_id"`
	LogLevel        string        `yaml:"log_level"`
}

type dockerConfig struct {
	Image       string `yaml:"image"`
	Workdir     string `yaml:"workdir"`
	Interpreter string `yaml:"interpreter"`
	MemoryBytes int64  `yaml:"memory_bytes"`
}

type kafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// loadAppConfig layers flags and env vars over the optional YAML file over
// defaults.
func loadAppConfig(c *cli.Context) (appConfig, error) {
	var cfg appConfig

	if path := c.String(ConfigFile.Name); path != "" {
		fileCfg, err := readConfigFile(path)
		if err != nil {
			return appConfig{}, err
		}
		cfg = fileCfg
	}

	applyFlags(c, &cfg)

	if err := cfg.applyDefaults(); err != nil {
		return appConfig{}, err
	}
	if err := cfg.validate(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func readConfigFile(path string) (appConfig, error) {
	var cfg appConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyFlags(c *cli.Context, cfg *appConfig) {
	setString := func(flag *cli.StringFlag, dst *string) {
		if c.IsSet(flag.Name) {
			*dst = c.String(flag.Name)
		}
	}
	setBool := func(flag *cli.BoolFlag, dst *bool) {
		if c.IsSet(flag.Name) {
			*dst = c.Bool(flag.Name)
		}
	}

	setString(Root, &cfg.Root)
	setString(ExamplesDir, &cfg.ExamplesDir)
	setString(GoldenDir, &cfg.GoldenDir)
	setString(Interpreter, &cfg.Interpreter)
	setString(InterpreterBase, &cfg.InterpreterBase)
	setString(Runtime, &cfg.Runtime)
	setString(DockerImage, &cfg.Docker.Image)
	setString(DockerWorkdir, &cfg.Docker.Workdir)
	setString(DockerInterpreter, &cfg.Docker.Interpreter)
	setString(Filter, &cfg.Filter)
	setString(Color, &cfg.Color)
	setString(MetricsFile, &cfg.MetricsFile)
	setString(KafkaTopic, &cfg.Kafka.Topic)
	setString(RunID, &cfg.RunID)
	setString(LogLevel, &cfg.LogLevel)
	setBool(AbortOnMissing, &cfg.AbortOnMissing)
	setBool(FailOnMismatch, &cfg.FailOnMismatch)
	setBool(Table, &cfg.Table)

	if c.IsSet(Timeout.Name) {
		cfg.Timeout = c.Duration(Timeout.Name)
	}
	if c.IsSet(DockerMemory.Name) {
		cfg.Docker.MemoryBytes = c.Int64(DockerMemory.Name)
	}
	if c.IsSet(KafkaBrokers.Name) {
		cfg.Kafka.Brokers = parseBrokerList(c.String(KafkaBrokers.Name))
	}
}

// applyDefaults fills the conventional project layout: examples in
// <root>/examples, golden files in <root>/examples/out_test and the
// interpreter in <root>/build.
func (cfg *appConfig) applyDefaults() error {
	if cfg.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		cfg.Root = wd
	}
	if cfg.ExamplesDir == "" {
		cfg.ExamplesDir = filepath.Join(cfg.Root, "examples")
	}
	if cfg.GoldenDir == "" {
		cfg.GoldenDir = filepath.Join(cfg.ExamplesDir, "out_test")
	}
	if cfg.InterpreterBase == "" {
		cfg.InterpreterBase = filepath.Join(cfg.Root, "build", "lisp_impl")
	}
	if cfg.Runtime == "" {
		cfg.Runtime = runtimeHost
	}
	if cfg.Docker.Interpreter == "" {
		cfg.Docker.Interpreter = defaultDockerInterpreter
	}
	if cfg.Color == "" {
		cfg.Color = colorAuto
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = defaultKafkaTopic
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	return nil
}

func (cfg appConfig) validate() error {
	switch cfg.Runtime {
	case runtimeHost:
	case runtimeDocker:
		if cfg.Docker.Image == "" {
			return fmt.Errorf("--%s is required with --%s %s", DockerImage.Name, Runtime.Name, runtimeDocker)
		}
	default:
		return fmt.Errorf("unknown runtime %q", cfg.Runtime)
	}

	switch cfg.Color {
	case colorAuto, colorAlways, colorNever:
	default:
		return fmt.Errorf("invalid color mode %q", cfg.Color)
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if cfg.Docker.MemoryBytes < 0 {
		return fmt.Errorf("docker memory limit must not be negative")
	}
	return nil
}

func parseBrokerList(raw string) []string {
	fields := strings.Split(raw, ",")
	brokers := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
