package main

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"
)

const (
	resampleMaxRatio = 16.0
	resampleMinRatio = 1.0 / 16
)

func isValidRatio(ratio float64) bool {
	if !gosamplerate.IsValidRatio(ratio) {
		return false
	}
	return ratio >= resampleMinRatio && ratio <= resampleMaxRatio
}

// resampleStereo converts an interleaved stereo buffer from one sample
// rate to another in a single shot. The engine always renders at its
// native rate; this runs only on bounced output.
func resampleStereo(samples []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return samples, nil
	}
	ratio := float64(toRate) / float64(fromRate)
	if !isValidRatio(ratio) {
		return nil, fmt.Errorf("resample: invalid ratio %d -> %d", fromRate, toRate)
	}
	out, err := gosamplerate.Simple(samples, ratio, 2, gosamplerate.SRC_SINC_BEST_QUALITY)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	return out, nil
}
