package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func run() error {
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	midiPort := flag.String("midi", "", "substring of the MIDI input port to open")
	demo := flag.Bool("demo", false, "loop the built-in pattern instead of listening for MIDI")
	bouncePath := flag.String("bounce", "", "render the built-in pattern to this WAV file and exit")
	dur := flag.Float64("dur", 8, "bounce length in seconds")
	rate := flag.Int("rate", SampleRate, "bounce output sample rate")
	bpm := flag.Float64("bpm", 120, "tempo for the pattern and the arpeggiator")
	wave := flag.String("wave", "sine", "oscillator waveform")
	flag.Parse()

	if err := InitLogger(*logLevel); err != nil {
		return err
	}

	engine := NewEngine()
	engine.Enqueue(ParamUpdate(map[string]any{
		"bpm":      *bpm,
		"waveform": *wave,
	}))

	if *bouncePath != "" {
		return Bounce(engine, demoPattern(Smp(*bpm)), *bouncePath, *dur, *rate)
	}

	player, err := StartPlayback(engine)
	if err != nil {
		return err
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *demo {
		go demoPattern(Smp(*bpm)).Play(ctx, engine)
	} else {
		in, err := OpenMidiInput(engine, *midiPort)
		if err != nil {
			logger.Warn("MIDI unavailable, falling back to the demo pattern", "err", err)
			go demoPattern(Smp(*bpm)).Play(ctx, engine)
		} else {
			defer in.Close()
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")
	engine.Enqueue(AllNotesOff())
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
