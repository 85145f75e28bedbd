package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Bounce renders a pattern offline and writes the result as a 16-bit
// stereo WAV. Rendering runs at the engine's native rate buffer by
// buffer, with the pattern's events injected through the normal command
// queue at their scheduled buffer boundaries; resampling to the requested
// output rate happens afterwards on the finished take.
func Bounce(e *Engine, pat *Pattern, path string, seconds float64, outRate int) error {
	if seconds <= 0 {
		return fmt.Errorf("bounce: non-positive duration %g", seconds)
	}
	totalFrames := int(seconds * SampleRate)
	events := pat.schedule(totalFrames)

	samples := make([]float32, 0, totalFrames*2)
	evIdx := 0
	for frame := 0; frame < totalFrames; frame += RenderFrames {
		for evIdx < len(events) && events[evIdx].at < frame+RenderFrames {
			e.Enqueue(events[evIdx].cmd)
			evIdx++
		}
		left, right := e.Render()
		for n := range left {
			samples = append(samples, float32(left[n]), float32(right[n]))
		}
	}

	samples, err := resampleStereo(samples, SampleRate, outRate)
	if err != nil {
		return err
	}

	if err := writeWav(path, samples, outRate); err != nil {
		return err
	}
	logger.Info("bounce complete",
		"path", path, "seconds", seconds, "rate", outRate)
	return nil
}

func writeWav(path string, samples []float32, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bounce: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(clamp(Smp(s), -1, 1) * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("bounce: write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("bounce: finalize: %w", err)
	}
	return nil
}
