package main

import (
	"math"
)

const (
	// muteRampSamples is the anti-click fade length for the mute gate.
	muteRampSamples = 256

	// pitchBendSemitones is the bend range at full deflection.
	pitchBendSemitones = 2.0

	// bendSmoothing is the per-buffer pole toward the bend target; one
	// coefficient keeps wheel moves glitch-free without a per-sample ramp.
	bendSmoothing = 0.2
)

// Engine owns the whole signal path: the command queue, the voice pool,
// the shared modulation sources and the master bus. Everything below
// Enqueue runs on the render thread only, so no field needs a lock.
type Engine struct {
	cmds   CommandQueue
	params Params

	voices [NumVoices]Voice
	held   map[uint8]bool

	lfo    LFO
	arp    Arp
	chorus *Chorus
	delay  *Delay

	clock    uint64 // samples rendered since start
	bend     Smp    // smoothed pitch bend position, -1..1
	muted    bool
	gateGain Smp // current mute-ramp gain

	left, right []Smp
	voiceBuf    []Smp
	envBuf      []Smp
}

func NewEngine() *Engine {
	e := &Engine{
		params:   defaultParams(),
		held:     make(map[uint8]bool),
		lfo:      newLFO(0x1f123bb5),
		arp:      newArp(0x6c078965),
		chorus:   newChorus(),
		delay:    newDelay(),
		gateGain: 1,
		left:     make([]Smp, RenderFrames),
		right:    make([]Smp, RenderFrames),
		voiceBuf: make([]Smp, RenderFrames),
		envBuf:   make([]Smp, RenderFrames),
	}
	for i := range e.voices {
		e.voices[i].index = i
		e.voices[i].osc = newOscillator(0x9e3779b9 * uint32(i+1))
		e.voices[i].dc.reset()
	}
	return e
}

// Enqueue hands a command to the render thread. Safe to call from any
// goroutine; the command takes effect at the next buffer boundary.
func (e *Engine) Enqueue(cmd Command) {
	e.cmds.Push(cmd)
}

// Params returns a copy of the current parameter snapshot. Render thread
// only; producers observe parameters through what they hear.
func (e *Engine) Params() Params {
	return e.params
}

// apply executes one command. Render thread only; tests drive the engine
// deterministically by calling it directly instead of going through the
// queue.
func (e *Engine) apply(cmd Command) {
	switch cmd.Kind {
	case CmdNoteOn:
		e.noteOn(cmd.Note, cmd.Velocity)
	case CmdNoteOff:
		e.noteOff(cmd.Note)
	case CmdParamUpdate:
		e.paramUpdate(cmd.Params)
	case CmdAllNotesOff:
		e.allNotesOff()
	case CmdMuteGate:
		e.muted = !e.muted
	}
}

func (e *Engine) noteOn(note uint8, velocity Smp) {
	if note > 127 {
		return
	}
	e.held[note] = true
	e.arp.velocity = velocity
	if e.params.ArpMode != ArpOff {
		// The clock plays on our behalf; keys only edit its sequence.
		e.arp.rebuild(e.held, e.params.ArpRange)
		return
	}
	e.triggerNote(note, velocity)
}

func (e *Engine) noteOff(note uint8) {
	delete(e.held, note)
	if e.params.ArpMode != ArpOff {
		e.arp.rebuild(e.held, e.params.ArpRange)
		return
	}
	e.releaseNote(note)
}

func (e *Engine) paramUpdate(m map[string]any) {
	prevMode := e.params.ArpMode
	prevRange := e.params.ArpRange
	e.params.Apply(m)

	switch {
	case prevMode == ArpOff && e.params.ArpMode != ArpOff:
		// The clock takes over from directly-held voices.
		for i := range e.voices {
			e.voices[i].release(&e.params)
		}
		e.arp.rebuild(e.held, e.params.ArpRange)
	case prevMode != ArpOff && e.params.ArpMode == ArpOff:
		e.arp.closeGate(e)
		e.arp.reset()
	case e.params.ArpRange != prevRange:
		e.arp.rebuild(e.held, e.params.ArpRange)
	}
}

func (e *Engine) allNotesOff() {
	for n := range e.held {
		delete(e.held, n)
	}
	e.arp.reset()
	e.arp.rebuild(e.held, e.params.ArpRange)
	for i := range e.voices {
		e.voices[i].forceIdle()
	}
	// Flush the shared modulation and effect tails too, so the master
	// output is exactly silent within one buffer even with wet mixes.
	e.lfo.reset()
	e.chorus.reset()
	e.delay.reset()
}

// triggerNote allocates a voice for a note, in priority order: the voice
// already bound to that note (retriggered in place), any idle voice, and
// finally a stolen one.
func (e *Engine) triggerNote(note uint8, velocity Smp) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.state != VoiceIdle && v.hasNote && v.note == note {
			v.trigger(note, velocity, e.clock, false)
			return
		}
	}
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == VoiceIdle {
			v.trigger(note, velocity, e.clock, true)
			return
		}
	}
	v := e.stealVictim()
	v.beginSteal()
	v.trigger(note, velocity, e.clock, true)
}

// stealVictim picks the least audible voice: first a releasing voice whose
// key is no longer held (furthest into its release), then any releasing
// voice, then the oldest active one.
func (e *Engine) stealVictim() *Voice {
	var best *Voice
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == VoiceReleasing && !e.held[v.note] {
			if best == nil || v.env.time > best.env.time {
				best = v
			}
		}
	}
	if best != nil {
		return best
	}
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == VoiceReleasing {
			if best == nil || v.env.time > best.env.time {
				best = v
			}
		}
	}
	if best != nil {
		return best
	}
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == VoiceActive {
			if best == nil || v.startClock < best.startClock {
				best = v
			}
		}
	}
	return best
}

func (e *Engine) releaseNote(note uint8) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == VoiceActive && v.hasNote && v.note == note {
			v.release(&e.params)
		}
	}
}

// arpNoteOn and arpNoteOff are the arpeggiator's path into the voice pool,
// bypassing the held-note bookkeeping that real key events maintain.
func (e *Engine) arpNoteOn(note uint8, velocity Smp) {
	e.triggerNote(note, velocity)
}

func (e *Engine) arpNoteOff(note uint8) {
	e.releaseNote(note)
}

// Render produces one stereo buffer of RenderFrames samples and returns
// the engine's internal buffers, valid until the next call. The stage
// order is fixed: commands, arpeggiator, LFO, voices, mix, chorus, delay,
// mute gate, soft clip, master volume.
func (e *Engine) Render() (left, right []Smp) {
	e.cmds.Drain(e.apply)

	mod := e.lfo.tick(&e.params)
	e.bend += (e.params.PitchBendTarget - e.bend) * bendSmoothing
	if math.Abs(e.bend-e.params.PitchBendTarget) < 1e-5 {
		e.bend = e.params.PitchBendTarget
	}
	if e.bend != 0 {
		mod.PitchRatio *= semitoneRatio(e.bend * pitchBendSemitones)
	}

	e.arp.tick(e, &e.params)

	for i := range e.left {
		e.left[i] = 0
		e.right[i] = 0
	}

	active := 0
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == VoiceIdle {
			continue
		}
		// A false return means the voice finished inside this buffer;
		// the buffer still carries its tail, so it is mixed regardless.
		v.render(e.voiceBuf, e.envBuf, &e.params, mod)
		active++

		pan := clamp(voicePan(v.index, e.params.PanSpread)+mod.PanOffset, -1, 1)
		gl, gr := equalPowerPan(pan)
		for n := range e.voiceBuf {
			e.left[n] += e.voiceBuf[n] * gl
			e.right[n] += e.voiceBuf[n] * gr
		}
	}

	if active > 0 {
		// Square-root normalization: full level for one voice, gentle
		// compression as the pool fills instead of a hard 1/N duck.
		gain := e.params.waveformGain() * e.params.Amp * mod.AmpScale /
			math.Sqrt(Smp(active))
		for n := range e.left {
			e.left[n] *= gain
			e.right[n] *= gain
		}
	}

	e.chorus.process(e.left, e.right, &e.params)
	e.delay.process(e.left, e.right, &e.params)

	e.applyMuteGate()

	vol := e.params.Volume
	for n := range e.left {
		e.left[n] = math.Tanh(e.left[n]) * vol
		e.right[n] = math.Tanh(e.right[n]) * vol
	}

	e.clock += RenderFrames
	return e.left, e.right
}

// applyMuteGate ramps the master gain toward the gate target over
// muteRampSamples so toggling never clicks.
func (e *Engine) applyMuteGate() {
	target := Smp(1)
	if e.muted {
		target = 0
	}
	g := e.gateGain
	if g == target {
		if target == 0 {
			for n := range e.left {
				e.left[n] = 0
				e.right[n] = 0
			}
		}
		return
	}
	step := Smp(1) / muteRampSamples
	if target < g {
		step = -step
	}
	for n := range e.left {
		if g != target {
			g += step
			if (step > 0 && g > target) || (step < 0 && g < target) {
				g = target
			}
		}
		e.left[n] *= g
		e.right[n] *= g
	}
	e.gateGain = g
}
