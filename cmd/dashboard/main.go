package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/cryptodash/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

type options struct {
	mode    string
	once    bool
	table   bool
	sim     simulateFlags
	market  marketFlags
	cfgPath string
}

func main() {
	var opts options
	flag.StringVar(&opts.cfgPath, "config", "config/config.yaml", "path to config file")
	flag.StringVar(&opts.mode, "mode", "watch", "watch | simulate | market")
	flag.BoolVar(&opts.once, "once", false, "watch: run one poll and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.BoolVar(&opts.table, "table", false, "print full tables (default: compact 1-line)")
	opts.sim.register(flag.CommandLine)
	opts.market.register(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", opts.cfgPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch opts.mode {
	case "watch":
		err = runWatch(ctx, cfg, opts)
	case "simulate":
		err = runSimulate(cfg, opts)
	case "market":
		err = runMarket(ctx, cfg, opts)
	default:
		err = fmt.Errorf("unknown mode %q", opts.mode)
	}
	if err != nil {
		slog.Error("cryptodash exited with error", "mode", opts.mode, "err", err)
		closeLog()
		os.Exit(1)
	}
}

// setupLogger configura slog. Con log.file se escribe además a un fichero
// rotado por lumberjack. Devuelve la función que cierra ese fichero.
func setupLogger(cfg config.LogConfig) func() {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stderr, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	return closeFn
}
