package main

import "math"

const twoPi = 2 * math.Pi

// oscillator generates one voice's raw waveform. The phase accumulator
// persists across buffers so the waveform is continuous at buffer
// boundaries; it is only reset at a fresh (non-retrigger) note start.
type oscillator struct {
	phase Smp // radians, [0, 2π)
	rng   xorshift32
	pink  pinkFilter
}

func newOscillator(seed uint32) oscillator {
	return oscillator{rng: newXorshift32(seed)}
}

func (o *oscillator) reset() {
	o.phase = 0
	o.pink.reset()
}

// fill writes nframes of the selected waveform at the given frequency.
// All shapes are derived from the phase accumulator so that switching
// waveforms mid-note stays phase-coherent.
func (o *oscillator) fill(out []Smp, wave Waveform, freq Smp) {
	incr := twoPi * freq / SampleRate
	phase := o.phase
	switch wave {
	case WaveSine:
		for i := range out {
			out[i] = math.Sin(phase)
			phase += incr
		}
	case WaveSquare:
		for i := range out {
			if phase-twoPi*math.Floor(phase/twoPi) < math.Pi {
				out[i] = 1
			} else {
				out[i] = -1
			}
			phase += incr
		}
	case WaveSawtooth:
		for i := range out {
			t := phase / twoPi
			out[i] = 2*(t-math.Floor(t)) - 1
			phase += incr
		}
	case WaveTriangle:
		for i := range out {
			t := phase / twoPi
			frac := t - math.Floor(t)
			out[i] = 2*math.Abs(2*frac-1) - 1
			phase += incr
		}
	case WaveNoise:
		for i := range out {
			out[i] = o.rng.next()
		}
		phase += incr * Smp(len(out))
	case WavePink:
		for i := range out {
			out[i] = o.pink.next(o.rng.next())
		}
		phase += incr * Smp(len(out))
	}
	o.phase = math.Mod(phase, twoPi)
}
