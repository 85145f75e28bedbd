package main

// VoiceState is the lifecycle of one synthesis unit.
type VoiceState uint8

const (
	VoiceIdle VoiceState = iota
	VoiceActive
	VoiceReleasing
)

const (
	// stealFadeSamples is the fixed crossfade window when a sounding voice
	// is reallocated to a new note.
	stealFadeSamples = 64

	// onsetMinSamples bounds the trigger fade-in from below (2 ms).
	onsetMinSamples = 96
)

// Voice is one of the NumVoices synthesis units. All of its DSP state
// (oscillator phase, filter integrators, DC blocker, envelope clock)
// persists across buffers; only the binding (note/state) changes when the
// allocator reuses it.
type Voice struct {
	index    int
	note     uint8
	hasNote  bool
	velocity Smp
	state    VoiceState
	baseFreq Smp

	osc    oscillator
	env    envelope
	filter voiceFilter
	dc     dcBlocker

	// Onset ramp: short fade-in after a trigger, sized to cover the DC
	// blocker's settling time. onsetFrom is 1 on an in-place retrigger,
	// which makes the ramp a no-op (nothing was reset, nothing to mask).
	onsetPos   int
	onsetTotal int
	onsetFrom  Smp

	// Steal crossfade: the previous note's trailing level decays linearly
	// over stealFadeSamples while the new onset ramps in.
	stealTail      Smp
	stealRemaining int

	startClock uint64 // engine sample clock at trigger, for age ordering
	lastOut    Smp
	pan        Smp
}

// onsetSamples adapts the fade-in length to the fundamental: roughly three
// periods, clamped to span the DC blocker's settling time.
func (v *Voice) onsetSamples(freq Smp) int {
	if freq <= 0 {
		return onsetMinSamples
	}
	n := int(3 * SampleRate / freq)
	return clampInt(n, onsetMinSamples, v.dc.settleSamples())
}

// trigger binds the voice to a note. A fresh trigger (idle voice or steal)
// resets every piece of DSP state; an in-place retrigger of the note the
// voice already holds keeps oscillator phase and filter/DC state so the
// output stays continuous, restarting only the envelope clock and ramp.
func (v *Voice) trigger(note uint8, velocity Smp, clock uint64, fresh bool) {
	v.note = note
	v.hasNote = true
	v.velocity = velocity
	v.baseFreq = midiToFreq(note)
	v.state = VoiceActive
	v.startClock = clock

	v.dc.setFundamental(v.baseFreq)
	v.onsetTotal = v.onsetSamples(v.baseFreq)
	v.onsetPos = 0

	if fresh {
		v.osc.reset()
		v.filter.reset()
		v.dc.reset()
		v.env.reset()
		v.onsetFrom = 0
	} else {
		v.onsetFrom = 1
	}
	v.env.trigger()
}

// beginSteal starts the crossfade out of the current note. Must be called
// before the fresh trigger that rebinds the voice.
func (v *Voice) beginSteal() {
	v.stealTail = v.lastOut
	v.stealRemaining = stealFadeSamples
}

// release moves an active voice into its release tail.
func (v *Voice) release(p *Params) {
	if v.state != VoiceActive {
		return
	}
	v.env.release(p, v.velocity)
	v.state = VoiceReleasing
}

// forceIdle silences the voice immediately, zeroing all DSP state.
// Used by AllNotesOff; there is no release tail.
func (v *Voice) forceIdle() {
	v.state = VoiceIdle
	v.hasNote = false
	v.osc.reset()
	v.filter.reset()
	v.dc.reset()
	v.env.reset()
	v.onsetPos = 0
	v.onsetTotal = 0
	v.stealRemaining = 0
	v.stealTail = 0
	v.lastOut = 0
}

// render produces one buffer of the voice into out, running the fixed
// pipeline: oscillator, filter, envelope, onset ramp, DC blocker, steal
// tail. Pan is applied by the engine when mixing. Returns false once a
// releasing voice has fully decayed and gone idle.
func (v *Voice) render(out, envBuf []Smp, p *Params, mod Modulation) bool {
	if v.state == VoiceIdle {
		return false
	}

	freq := v.baseFreq * mod.PitchRatio
	if p.Octave != 0 {
		freq *= semitoneRatio(Smp(p.Octave) * 12)
	}

	v.osc.fill(out, p.Waveform, freq)
	v.filter.process(out, p, mod.CutoffScale)

	finished := v.env.fill(envBuf, p, v.velocity)
	for i := range out {
		out[i] *= envBuf[i]
	}

	if v.onsetPos < v.onsetTotal {
		total := Smp(v.onsetTotal)
		from := v.onsetFrom
		for i := range out {
			if v.onsetPos >= v.onsetTotal {
				break
			}
			m := from + (1-from)*Smp(v.onsetPos)/total
			out[i] *= m
			v.onsetPos++
		}
	}

	v.dc.process(out)

	if v.stealRemaining > 0 {
		total := Smp(stealFadeSamples)
		for i := range out {
			if v.stealRemaining <= 0 {
				break
			}
			out[i] += v.stealTail * Smp(v.stealRemaining) / total
			v.stealRemaining--
		}
	}

	v.lastOut = out[len(out)-1]

	if v.state == VoiceReleasing && finished {
		v.state = VoiceIdle
		v.hasNote = false
		v.lastOut = 0
		return false
	}
	return true
}
