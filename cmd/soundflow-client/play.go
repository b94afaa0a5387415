package main

import (
	"context"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"github.com/soundflow/soundflow-go"
	"github.com/soundflow/soundflow-go/audio"
	"github.com/soundflow/soundflow-go/proto/flowv1"
)

const framesPerBuffer = 256

// playLocal subscribes to the captured flow and renders it on the default
// local output device. Network packets land in a sample buffer; the audio
// callback drains it without blocking and pads with silence.
func playLocal(ctx context.Context, hc soundflow.SHC, sampleRate float64) error {
	if _, err := hc.Request(ctx, &flowv1.FlowGetRequest{}); err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	// half a second of buffer between network jitter and the device
	buf := audio.NewBuffer(int(sampleRate / 2))
	defer buf.Close()
	nb := audio.NewNonBlockingReader(buf)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hc.Done():
				return
			case pkt, ok := <-hc.Audio().ReadChan():
				if !ok {
					return
				}
				if _, err := buf.Write(pkt); err != nil {
					return
				}
			}
		}
	}()

	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, framesPerBuffer, func(out []float32) {
		n, err := nb.Read(out)
		if err != nil {
			n = 0
		}
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	slog.Info("local playback started", slog.Float64("sample_rate", sampleRate))

	select {
	case <-ctx.Done():
	case <-hc.Done():
	}
	return nil
}
