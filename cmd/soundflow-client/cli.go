package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soundflow/soundflow-go/transport/ws"
)

type cliArgs struct {
	url        string
	logLevel   string
	devices    bool
	direction  string
	setDevice  int
	ping       bool
	feedback   bool
	play       bool
	sampleRate int
}

func (a *cliArgs) config() ws.ClientConfig {
	return ws.ClientConfig{
		Dial: ws.DialConfig{
			URL:            a.url,
			ConnectTimeout: 5 * time.Second,
		},
	}
}

func (a *cliArgs) LogLevel() slog.Level {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(a.logLevel))
	if err != nil {
		panic(fmt.Errorf("invalid log level [%s]: %w", a.logLevel, err))
	}
	return lvl
}

func initCLI() (*cliArgs, *slog.Logger) {
	args := cliArgs{
		url:        "ws://localhost:8080/",
		logLevel:   "info",
		setDevice:  -1,
		sampleRate: 48_000,
	}
	flag.StringVar(&args.url, "url", args.url, "websocket url")
	flag.StringVar(&args.logLevel, "log-level", args.logLevel, "log level")
	flag.BoolVar(&args.devices, "devices", args.devices, "list devices and exit")
	flag.StringVar(&args.direction, "direction", args.direction, "device direction for -devices (capture|playback)")
	flag.IntVar(&args.setDevice, "set-device", args.setDevice, "set default output device by id and exit")
	flag.BoolVar(&args.ping, "ping", args.ping, "ping the service and exit")
	flag.BoolVar(&args.feedback, "feedback", args.feedback, "loop the captured flow back into playback")
	flag.BoolVar(&args.play, "play", args.play, "play the captured flow on the local output device")
	flag.IntVar(&args.sampleRate, "sample-rate", args.sampleRate, "local playback sample rate for -play")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: args.LogLevel(),
	})))

	return &args, slog.Default()
}
