package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/soundflow/soundflow-go"
	"github.com/soundflow/soundflow-go/proto"
	"github.com/soundflow/soundflow-go/proto/flowv1"
	"github.com/soundflow/soundflow-go/transport/ws"
)

func decodeResult[T any](resp *proto.Response) (*T, error) {
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func listDevices(ctx context.Context, hc soundflow.SHC, direction string) error {
	resp, err := hc.Request(ctx, &flowv1.DeviceListRequest{Direction: direction})
	if err != nil {
		return err
	}
	res, err := decodeResult[flowv1.DeviceListResponse](resp)
	if err != nil {
		return err
	}
	for _, d := range res.Devices {
		fmt.Printf("%d\t%s\n", d.ID, d.Name)
	}
	return nil
}

func setDevice(ctx context.Context, hc soundflow.SHC, id uint32) error {
	if _, err := hc.Request(ctx, &flowv1.DeviceSetRequest{ID: id}); err != nil {
		return err
	}
	fmt.Printf("default output device set to %d\n", id)
	return nil
}

func ping(ctx context.Context, hc soundflow.SHC) error {
	resp, err := hc.Request(ctx, flowv1.NewPingRequest(nil))
	if err != nil {
		return err
	}
	res, err := decodeResult[flowv1.PingResponse](resp)
	if err != nil {
		return err
	}
	fmt.Printf("rtt=%dms owd=%dms\n", time.Now().UnixMilli()-res.T0, res.OWD)
	return nil
}

// feedback subscribes to the captured flow and sends every packet straight
// back for playback, audibly verifying the full pipeline.
func feedback(ctx context.Context, hc soundflow.SHC) error {
	if _, err := hc.Request(ctx, &flowv1.FlowGetRequest{}); err != nil {
		return err
	}
	if _, err := hc.Request(ctx, &flowv1.FlowSendRequest{}); err != nil {
		return err
	}

	hc.Log().Info("feedback loop running")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hc.Done():
			return nil
		case pkt, ok := <-hc.Audio().ReadChan():
			if !ok {
				return nil
			}
			if err := hc.Audio().Write(pkt); err != nil {
				return err
			}
		}
	}
}

func main() {
	args, log := initCLI()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	shcCh := make(chan soundflow.SHC, 1)
	handler := soundflow.NewHandler(soundflow.HandlerConfig{
		OnBegin: func(_ context.Context, h soundflow.SHC) error {
			shcCh <- h
			return nil
		},
	})

	session := soundflow.NewSession(ws.Client(args.config()), handler, soundflow.WithLogger(log))

	runErr := make(chan error, 1)
	go func() {
		runErr <- session.Run(ctx)
	}()

	var hc soundflow.SHC
	select {
	case hc = <-shcCh:
	case err := <-runErr:
		log.Error("connect failed", slog.Any("err", err))
		os.Exit(1)
	case <-ctx.Done():
		os.Exit(1)
	}

	err := func() error {
		switch {
		case args.devices:
			return listDevices(ctx, hc, args.direction)
		case args.setDevice >= 0:
			return setDevice(ctx, hc, uint32(args.setDevice))
		case args.ping:
			return ping(ctx, hc)
		case args.feedback:
			return feedback(ctx, hc)
		case args.play:
			return playLocal(ctx, hc, float64(args.sampleRate))
		default:
			return ping(ctx, hc)
		}
	}()

	_ = session.CloseTimeout(5 * time.Second)

	if err != nil {
		log.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}
