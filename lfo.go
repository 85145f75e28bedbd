package main

import "math"

// Modulation is the per-buffer output of the modulation bus, resolved once
// per render and consumed by every voice.
type Modulation struct {
	PitchRatio  Smp // multiplies each voice's frequency
	CutoffScale Smp // multiplies the filter cutoff
	AmpScale    Smp // multiplies the mixed voice level
	PanOffset   Smp // added to each voice's pan position
}

func neutralModulation() Modulation {
	return Modulation{PitchRatio: 1, CutoffScale: 1, AmpScale: 1}
}

// lfoPitchSemitones bounds the pitch target at full depth.
const lfoPitchSemitones = 1.0

// LFO is the single shared low-frequency oscillator. Its phase advances
// once per buffer; the control value is held for the whole buffer.
type LFO struct {
	phase Smp // radians, [0, 2π)
	held  Smp // sample-and-hold latch
	rng   xorshift32
}

func newLFO(seed uint32) LFO {
	return LFO{rng: newXorshift32(seed)}
}

// tick advances the phase by one buffer and returns the modulation for the
// coming buffer. The phase is free-running: it advances even at zero depth,
// so re-engaging the LFO resumes mid-cycle instead of from a stale phase.
// The sample-and-hold latch draws a new value exactly when the phase wraps;
// the wrap is detected by the new phase being numerically smaller than the
// old one, which is sound because the per-buffer increment (rate ≤ 20 Hz,
// 512 frames, 48 kHz) is always far below 2π.
func (l *LFO) tick(p *Params) Modulation {
	prev := l.phase
	phase := prev + twoPi*p.LFORate*RenderFrames/SampleRate
	if phase >= twoPi {
		phase -= twoPi
	}
	l.phase = phase
	if phase < prev {
		l.held = l.rng.next()
	}

	if p.LFODepth <= 0 {
		return neutralModulation()
	}

	var value Smp
	switch p.LFOShape {
	case LFOSine:
		value = math.Sin(phase)
	case LFOTriangle:
		// Symmetric ramp: 0 -> 1 -> 0 -> -1 -> 0 over one cycle.
		value = 1 - 4*math.Abs(phase/twoPi-0.5)
	case LFOSquare:
		if phase < math.Pi {
			value = 1
		} else {
			value = -1
		}
	case LFOSampleHold:
		value = l.held
	}

	mod := neutralModulation()
	depth := p.LFODepth
	switch p.LFOTarget {
	case TargetPitch:
		mod.PitchRatio = semitoneRatio(value * depth * lfoPitchSemitones)
	case TargetFilter:
		mod.CutoffScale = math.Exp2(value * depth * 2)
	case TargetAmp:
		// Tremolo: dips the level by up to depth, never boosts above unity.
		mod.AmpScale = 1 - depth*(0.5+0.5*value)
		mod.PanOffset = value * depth
	case TargetAll:
		mod.PitchRatio = semitoneRatio(value * depth * lfoPitchSemitones)
		mod.CutoffScale = math.Exp2(value * depth * 2)
		mod.AmpScale = 1 - depth*(0.5+0.5*value)
		mod.PanOffset = value * depth
	}
	return mod
}

func (l *LFO) reset() {
	l.phase = 0
	l.held = 0
}
