package main

import "math"

// highpass1 is a one-pole high-pass stage. State persists across buffers
// per voice.
type highpass1 struct {
	a      Smp
	x1, y1 Smp
}

// setCutoff derives the pole coefficient from a cutoff in Hz.
func (h *highpass1) setCutoff(cutoffHz Smp) {
	h.a = math.Exp(-twoPi * clamp(cutoffHz, 1, SampleRate*0.45) / SampleRate)
}

func (h *highpass1) process(x Smp) Smp {
	y := h.a * (h.y1 + x - h.x1)
	h.x1 = x
	h.y1 = y
	return y
}

func (h *highpass1) reset() {
	h.x1, h.y1 = 0, 0
}

// svfLowpass is the low-pass output of a topology-preserving-transform
// state-variable filter (Simper). Two integrator states persist across
// buffers per voice.
type svfLowpass struct {
	ic1eq, ic2eq Smp
}

// svfCoefficient computes the one-pole SVF coefficient: tan(pi * min(0.499, f/sr)).
func svfCoefficient(cutoffHz Smp) Smp {
	ratio := cutoffHz / SampleRate
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 0.499 {
		ratio = 0.499
	}
	return math.Tan(math.Pi * ratio)
}

// resonanceToQ maps the 0..0.9 resonance control onto a Q factor, clamped
// well below self-oscillation.
func resonanceToQ(resonance Smp) Smp {
	return 0.5 + clamp(resonance, 0, 0.9)*10.5
}

// process filters one buffer in place. Cutoff and Q are held constant for
// the buffer; parameter changes land at buffer boundaries anyway.
func (f *svfLowpass) process(buf []Smp, cutoffHz, q Smp) {
	g := svfCoefficient(cutoffHz)
	if q < 1e-6 {
		q = 1e-6
	}
	k := 1 / q

	// TPT SVF coefficients (a1..a3 in the Simper paper).
	a0 := 1 / (1 + g*(g+k))
	a1 := g * a0
	a2 := g * a1

	ic1, ic2 := f.ic1eq, f.ic2eq
	for i, x := range buf {
		v3 := x - ic2
		v1 := a0*ic1 + a1*v3
		v2 := ic2 + a1*ic1 + a2*v3
		ic1 = 2*v1 - ic1
		ic2 = 2*v2 - ic2
		buf[i] = v2
	}
	f.ic1eq, f.ic2eq = ic1, ic2
}

func (f *svfLowpass) reset() {
	f.ic1eq, f.ic2eq = 0, 0
}

// voiceFilter is the per-voice two-stage filter: one-pole high-pass into
// the resonant SVF low-pass.
type voiceFilter struct {
	hp highpass1
	lp svfLowpass
}

func (vf *voiceFilter) process(buf []Smp, p *Params, cutoffScale Smp) {
	vf.hp.setCutoff(p.HPFCutoff)
	for i, x := range buf {
		buf[i] = vf.hp.process(x)
	}
	cutoff := clamp(p.Cutoff*cutoffScale, 20, 20000)
	vf.lp.process(buf, cutoff, resonanceToQ(p.Resonance))
}

func (vf *voiceFilter) reset() {
	vf.hp.reset()
	vf.lp.reset()
}
