package main

import "math"

const (
	chorusBaseDelaySec  = 0.020 // center of the swept window
	chorusSweepSec      = 0.008 // peak excursion at full depth
	chorusBufferSamples = 2048  // covers base + sweep with headroom
)

// Chorus is the first master-bus effect: a modulated multi-tap delay per
// channel. Up to four taps sweep the same ring buffer with their phases
// spread evenly around the LFO cycle. At mix=0 the stage is a hard bypass
// and neither reads nor writes its state.
type Chorus struct {
	buf   [2][]Smp
	write int
	phase Smp
}

func newChorus() *Chorus {
	c := &Chorus{}
	c.buf[0] = make([]Smp, chorusBufferSamples)
	c.buf[1] = make([]Smp, chorusBufferSamples)
	return c
}

// readInterp reads the ring buffer at a fractional delay behind the write
// head, with linear interpolation between neighboring samples.
func chorusRead(buf []Smp, write int, delay Smp) Smp {
	idx := Smp(write) - delay
	for idx < 0 {
		idx += chorusBufferSamples
	}
	i0 := int(idx)
	frac := idx - Smp(i0)
	i1 := (i0 + 1) % chorusBufferSamples
	i0 %= chorusBufferSamples
	return buf[i0]*(1-frac) + buf[i1]*frac
}

// process runs the chorus in place over one stereo buffer.
func (c *Chorus) process(left, right []Smp, p *Params) {
	if p.ChorusMix <= 0 {
		return
	}

	taps := p.ChorusVoices
	if taps < 1 {
		taps = 1
	} else if taps > 4 {
		taps = 4
	}
	base := chorusBaseDelaySec * SampleRate
	sweep := p.ChorusDepth * chorusSweepSec * SampleRate
	inc := twoPi * p.ChorusRate / SampleRate
	mix := p.ChorusMix
	dry := 1 - mix
	tapGain := 1 / Smp(taps)
	tapSpacing := twoPi / Smp(taps)

	phase := c.phase
	write := c.write
	for i := range left {
		c.buf[0][write] = left[i]
		c.buf[1][write] = right[i]

		var wetL, wetR Smp
		for t := 0; t < taps; t++ {
			tapPhase := phase + Smp(t)*tapSpacing
			delay := base + sweep*(0.5+0.5*math.Sin(tapPhase))
			wetL += chorusRead(c.buf[0], write, delay)
			wetR += chorusRead(c.buf[1], write, delay)
		}
		wetL *= tapGain
		wetR *= tapGain

		left[i] = left[i]*dry + wetL*mix
		right[i] = right[i]*dry + wetR*mix

		write = (write + 1) % chorusBufferSamples
		phase += inc
		if phase >= twoPi {
			phase -= twoPi
		}
	}
	c.phase = phase
	c.write = write
}

func (c *Chorus) reset() {
	for ch := range c.buf {
		for i := range c.buf[ch] {
			c.buf[ch][i] = 0
		}
	}
	c.write = 0
	c.phase = 0
}
