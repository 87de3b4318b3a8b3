package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dm/rul-go/internal/client"
	"github.com/dm/rul-go/internal/config"
	"github.com/dm/rul-go/internal/engine"
	"github.com/dm/rul-go/internal/metrics"
	"github.com/dm/rul-go/internal/model"
	"github.com/dm/rul-go/internal/telemetry"
	"github.com/dm/rul-go/internal/tui"
)

// parseEndpoint validates an inference endpoint URI and returns its base URL
// with any query string, fragment and trailing slash removed. Credentials are
// rejected: the endpoint is unauthenticated.
func parseEndpoint(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid URI %q: %w", uri, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q (must be http or https)", u.Scheme)
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid URI %q: host is required", uri)
	}

	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return "", fmt.Errorf("invalid URI %q: port %q out of range", uri, p)
		}
	}

	if u.User != nil {
		return "", fmt.Errorf("invalid URI %q: credentials are not supported", uri)
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String(), nil
}

// options are the flags that are not part of config.Config.
type options struct {
	once      bool
	telemetry string
}

// loadConfig parses args, loads the optional config file and applies the
// flags that were given explicitly on top of it.
func loadConfig(args []string, stderr io.Writer) (*config.Config, options, error) {
	fs := flag.NewFlagSet("rul", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath   = fs.String("config", "", "YAML config file")
		endpoint     = fs.String("endpoint", "", "inference endpoint base URL (default "+config.DefaultEndpoint+")")
		timeout      = fs.Duration("timeout", config.DefaultRequestTimeout, "per-request timeout (e.g. 10s, 30s)")
		insecure     = fs.Bool("insecure", false, "skip TLS certificate verification")
		fleetSize    = fs.Int("fleet-size", config.DefaultFleetSize, "number of generated engine IDs")
		concurrency  = fs.Int("concurrency", 0, "max in-flight predictions per sync (0 = all)")
		telemetryDir = fs.String("telemetry-dir", "", "read fleet telemetry from <dir>/<engine id>.csv")
		seed         = fs.Uint64("seed", config.DefaultSeed, "synthetic telemetry seed")
		metricsAddr  = fs.String("metrics-addr", "", "serve Prometheus metrics on host:port")
		logFile      = fs.String("log-file", "", "write JSON logs to this file")
		logLevel     = fs.String("log-level", config.DefaultLogLevel, "debug | info | warn | error")
		once         = fs.Bool("once", false, "sync the fleet once, print a table and exit")
		watch        = fs.String("telemetry", "", "load this CSV into the single-engine view and reload it on change")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: rul [flags] [endpoint-uri]\n\n")
		fmt.Fprintf(stderr, "examples:\n")
		fmt.Fprintf(stderr, "  rul\n")
		fmt.Fprintf(stderr, "  rul http://inference.local:8000\n")
		fmt.Fprintf(stderr, "  rul --config rul.yaml --telemetry engine.csv\n")
		fmt.Fprintf(stderr, "  rul --once --fleet-size 12 https://rul.example.com\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, options{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, options{}, err
		}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Reject extra positional arguments. flag.Parse stops at the first
	// non-flag argument, so trailing --flags would also be silently ignored.
	rest := fs.Args()
	if len(rest) > 1 {
		extra := rest[1]
		if len(extra) > 1 && extra[0] == '-' {
			return nil, options{}, fmt.Errorf("flag %q must be placed before the URI", extra)
		}
		return nil, options{}, fmt.Errorf("unexpected argument %q", extra)
	}
	if len(rest) == 1 {
		if set["endpoint"] {
			return nil, options{}, fmt.Errorf("endpoint given both as --endpoint and as an argument")
		}
		*endpoint = rest[0]
		set["endpoint"] = true
	}

	if set["endpoint"] {
		base, err := parseEndpoint(*endpoint)
		if err != nil {
			return nil, options{}, err
		}
		cfg.Endpoint = base
	}
	if set["timeout"] {
		cfg.RequestTimeout = *timeout
	}
	if set["insecure"] {
		cfg.InsecureSkipVerify = *insecure
	}
	if set["fleet-size"] {
		cfg.Fleet.Size = *fleetSize
		cfg.Fleet.EngineIDs = nil
	}
	if set["concurrency"] {
		cfg.Fleet.Concurrency = *concurrency
	}
	if set["telemetry-dir"] {
		cfg.Fleet.TelemetryDir = *telemetryDir
	}
	if set["seed"] {
		cfg.Seed = *seed
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = *metricsAddr
	}
	if set["log-file"] {
		cfg.LogFile = *logFile
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, options{}, err
	}
	return cfg, options{once: *once, telemetry: *watch}, nil
}

// newLogger returns the process logger. The dashboard owns the terminal, so
// without a log file it logs nothing; --once logs to stderr.
func newLogger(cfg *config.Config, once bool) (zerolog.Logger, func(), error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		log := zerolog.New(f).Level(cfg.Level()).With().Timestamp().Logger()
		return log, func() { _ = f.Close() }, nil
	}
	if once {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		return zerolog.New(w).Level(cfg.Level()).With().Timestamp().Logger(), func() {}, nil
	}
	return zerolog.Nop(), func() {}, nil
}

func main() {
	cfg, opts, err := loadConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(run(cfg, opts))
}

func run(cfg *config.Config, opts options) int {
	log, closeLog, err := newLogger(cfg, opts.once)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.NewDefaultClient(client.ClientConfig{
		BaseURL:            cfg.Endpoint,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		RequestTimeout:     cfg.RequestTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ids := cfg.Fleet.IDs()
	store, err := model.NewStore(ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	gen := telemetry.NewGenerator(cfg.Seed)
	source := engine.SyntheticSource(gen, ids)
	if cfg.Fleet.TelemetryDir != "" {
		source = engine.DirSource(cfg.Fleet.TelemetryDir)
	}

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, log); err != nil {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server failed")
			}
		}()
	}

	syncer, err := engine.NewSyncer(engine.SyncerConfig{
		Client:      c,
		Store:       store,
		Source:      source,
		Recorder:    rec,
		Concurrency: cfg.Fleet.Concurrency,
		Logger:      log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Int("engines", len(ids)).
		Bool("telemetry_dir", cfg.Fleet.TelemetryDir != "").
		Msg("starting")

	if opts.once {
		return runOnce(ctx, c, syncer, os.Stdout, log)
	}

	app := tui.NewApp(tui.AppConfig{
		Client:          c,
		Syncer:          syncer,
		Store:           store,
		Generator:       gen,
		NotificationTTL: cfg.NotificationTTL,
		Logger:          log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.telemetry != "" {
		go watchTelemetry(ctx, p, opts.telemetry, log)
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// watchTelemetry loads path into the single-engine view, then reloads it on
// every change until ctx is done.
func watchTelemetry(ctx context.Context, p *tea.Program, path string, log zerolog.Logger) {
	if data, err := os.ReadFile(path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("telemetry: initial load failed")
	} else {
		p.Send(tui.TelemetryLoadedMsg{Raw: string(data), Source: path})
	}

	err := telemetry.Watch(ctx, path, log, func(raw string) {
		p.Send(tui.TelemetryLoadedMsg{Raw: raw, Source: path})
	})
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("telemetry: watch failed")
	}
}
