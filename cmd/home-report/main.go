package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"home-registry/internal/home"
	"home-registry/internal/layout"
	"home-registry/internal/metrics"
	"home-registry/internal/state"
	"home-registry/internal/store"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

type Config struct {
	Home struct {
		Name   string `yaml:"name"`
		Layout string `yaml:"layout"`
	} `yaml:"home"`
	Store struct {
		Backend string `yaml:"backend"` // "memory" or "bolt"
		Path    string `yaml:"path"`
		Locked  bool   `yaml:"locked"`
	} `yaml:"store"`
	State struct {
		Source string `yaml:"source"` // "layout", "mqtt" or "lua"
		Script string `yaml:"script"`
	} `yaml:"state"`
	MQTT struct {
		Broker      string `yaml:"broker"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		TopicPrefix string `yaml:"topic_prefix"`
		Settle      string `yaml:"settle"`
	} `yaml:"mqtt"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "memory", "bolt":
	default:
		return fmt.Errorf("store.backend must be memory or bolt, got %q", c.Store.Backend)
	}
	switch c.State.Source {
	case "layout":
		if c.Home.Layout == "" {
			return fmt.Errorf("state.source layout requires home.layout")
		}
	case "mqtt":
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required for state.source mqtt")
		}
		if _, err := time.ParseDuration(c.MQTT.Settle); err != nil {
			return fmt.Errorf("mqtt.settle: %w", err)
		}
	case "lua":
		if c.State.Script == "" {
			return fmt.Errorf("state.script is required for state.source lua")
		}
	default:
		return fmt.Errorf("state.source must be layout, mqtt or lua, got %q", c.State.Source)
	}
	// A fresh memory store has no rooms, so the report could only be a header.
	if c.State.Source != "layout" && c.Store.Backend == "memory" && c.Home.Layout == "" {
		return fmt.Errorf("state.source %s with store.backend memory requires home.layout", c.State.Source)
	}
	return nil
}

func main() {
	// Temporary logger for config loading errors.
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfgPath := "config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootLogger.Error("load config", "err", err)
		os.Exit(1)
	}

	if err := cfg.validate(); err != nil {
		bootLogger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Debug("home-report starting", "version", version)

	if err := run(cfg, logger, os.Stdout); err != nil {
		logger.Error("home-report failed", "err", err)
		os.Exit(1)
	}
}

// run builds the home described by cfg and writes its report to out.
// Storage and the state reporter are released before it returns.
func run(cfg *Config, logger *slog.Logger, out io.Writer) error {
	var lay *layout.Layout
	if cfg.Home.Layout != "" {
		var err error
		lay, err = layout.Load(cfg.Home.Layout)
		if err != nil {
			return fmt.Errorf("load layout: %w", err)
		}
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStorage()

	var opts []home.Option
	opts = append(opts, home.WithLogger(logger))
	reg := prometheus.NewRegistry()
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, home.WithMetrics(metrics.New(reg)))
	}

	h := home.New(homeName(cfg, lay), storage, opts...)
	if lay != nil {
		n, err := lay.Apply(h)
		if err != nil {
			return fmt.Errorf("apply layout: %w", err)
		}
		logger.Debug("layout applied", "rooms_added", n)
	}

	reporter, stopReporter, err := createReporter(cfg, lay, logger)
	if err != nil {
		return fmt.Errorf("create state reporter %s: %w", cfg.State.Source, err)
	}
	defer stopReporter()

	if _, err := io.WriteString(out, h.GetReport(reporter)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg); err != nil {
			logger.Error("write metrics", "path", cfg.Metrics.Textfile, "err", err)
		}
	}
	return nil
}

func homeName(cfg *Config, lay *layout.Layout) string {
	if cfg.Home.Name != "" {
		return cfg.Home.Name
	}
	if lay != nil && lay.Home != "" {
		return lay.Home
	}
	return "Home"
}

func openStorage(cfg *Config) (store.Storage, func(), error) {
	var (
		s       store.Storage
		closeFn = func() {}
	)
	switch cfg.Store.Backend {
	case "bolt":
		db, err := store.NewBoltStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		s = db
		closeFn = func() { db.Close() }
	default:
		s = store.NewMemoryStore()
	}
	if cfg.Store.Locked {
		s = store.Locked(s)
	}
	return s, closeFn, nil
}

func createReporter(cfg *Config, lay *layout.Layout, logger *slog.Logger) (state.Reporter, func(), error) {
	switch cfg.State.Source {
	case "layout":
		return lay.Provider(), func() {}, nil
	case "lua":
		r, err := state.LoadScriptReporter(cfg.State.Script, logger)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case "mqtt":
		return initMQTTReporter(cfg, logger)
	default:
		return nil, nil, fmt.Errorf("unknown state source: %q (supported: layout, mqtt, lua)", cfg.State.Source)
	}
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "home.db"
	}
	if cfg.State.Source == "" {
		cfg.State.Source = "layout"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "home/state"
	}
	if cfg.MQTT.Settle == "" {
		cfg.MQTT.Settle = "2s"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return &cfg, nil
}

func newLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// The report goes to stdout, diagnostics to stderr.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
