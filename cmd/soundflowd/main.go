package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/soundflow/soundflow-go"
	"github.com/soundflow/soundflow-go/device/malgodev"
	"github.com/soundflow/soundflow-go/transport/ws"
)

type config struct {
	Addr          string        `env:"SOUNDFLOW_ADDR, default=:8080"`
	Path          string        `env:"SOUNDFLOW_PATH, default=/"`
	LogLevel      string        `env:"SOUNDFLOW_LOG_LEVEL, default=info"`
	PackageSize   int           `env:"SOUNDFLOW_PACKAGE_SIZE, default=1000"`
	QueueCapacity int           `env:"SOUNDFLOW_QUEUE_CAPACITY, default=128"`
	PollInterval  time.Duration `env:"SOUNDFLOW_POLL_INTERVAL, default=10ms"`
	SampleRate    uint32        `env:"SOUNDFLOW_SAMPLE_RATE, default=48000"`
	Channels      uint32        `env:"SOUNDFLOW_CHANNELS, default=1"`
	Compression   bool          `env:"SOUNDFLOW_WS_COMPRESSION, default=false"`
}

func (c *config) logLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("invalid log level [%s]: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	lvl, err := cfg.logLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	engine, err := malgodev.New(malgodev.Config{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	}, logger)
	if err != nil {
		return fmt.Errorf("audio engine: %w", err)
	}

	svc := soundflow.NewService(engine,
		soundflow.WithLogger(logger),
		soundflow.WithPackageSize(cfg.PackageSize),
		soundflow.WithQueueCapacity(cfg.QueueCapacity),
		soundflow.WithPollInterval(cfg.PollInterval),
	)
	if err := svc.Open(); err != nil {
		return fmt.Errorf("open audio endpoints: %w", err)
	}
	defer svc.Close()

	go svc.Run(ctx)

	srv := soundflow.NewServer(
		ws.NewServer(ws.ServerConfig{
			Addr: cfg.Addr,
			Path: cfg.Path,
			Transport: ws.TransportConfig{
				MaxPacketSamples:  cfg.PackageSize,
				EnableCompression: cfg.Compression,
			},
		}),
		svc.Handler(),
		soundflow.WithLogger(logger),
	)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(30 * time.Second):
				logger.Info("server stats", slog.Any("stats", srv.Stats()))
			}
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("signal received", slog.String("signal", s.String()))
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	return srv.Shutdown()
}

func main() {
	if err := run(); err != nil {
		slog.Error("soundflowd failed", slog.Any("err", err))
		os.Exit(1)
	}
}
