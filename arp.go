package main

import "sort"

// Arp is the sample-accurate arpeggiator clock. It never sees a wall
// clock: a sample counter advances by the render quantum each buffer, and
// the remainder is preserved when a step fires so phase error cannot
// accumulate across buffer boundaries.
type Arp struct {
	seq  []uint8 // held notes expanded across the octave range
	idx  int
	down bool // current direction in bounce mode

	counter       Smp // samples accumulated toward the next step
	gateRemaining Smp
	gateOpen      bool
	current       uint8 // the note the gate is holding open
	velocity      Smp   // velocity of the most recent key press
	pending       bool  // fire immediately when notes first arrive

	rng xorshift32
}

func newArp(seed uint32) Arp {
	return Arp{velocity: 0.8, rng: newXorshift32(seed)}
}

// stepSamples derives the step length (one beat) from the shared BPM cell.
func arpStepSamples(bpm Smp) Smp {
	if bpm <= 0 {
		bpm = 120
	}
	return 60.0 / bpm * SampleRate
}

// rebuild regenerates the step sequence from the held-note set, expanding
// each note upward by 12 semitones per octave of range. Notes pushed past
// the valid MIDI range are dropped. Called whenever the held set or the
// range changes.
func (a *Arp) rebuild(held map[uint8]bool, octaves int) {
	wasEmpty := len(a.seq) == 0
	a.seq = a.seq[:0]
	notes := make([]int, 0, len(held))
	for n := range held {
		notes = append(notes, int(n))
	}
	sort.Ints(notes)
	if octaves < 1 {
		octaves = 1
	}
	for oct := 0; oct < octaves; oct++ {
		for _, n := range notes {
			shifted := n + 12*oct
			if shifted > 127 {
				continue
			}
			a.seq = append(a.seq, uint8(shifted))
		}
	}
	if len(a.seq) == 0 {
		a.idx = 0
		a.down = false
		a.counter = 0
		return
	}
	if a.idx >= len(a.seq) {
		a.idx = len(a.seq) - 1
	}
	if wasEmpty {
		a.pending = true
		a.counter = 0
		a.idx = 0
		a.down = false
	}
}

// advance moves to the next sequence position for the given mode.
func (a *Arp) advance(mode ArpMode) {
	n := len(a.seq)
	if n <= 1 {
		a.idx = 0
		return
	}
	switch mode {
	case ArpUp:
		a.idx = (a.idx + 1) % n
	case ArpDown:
		a.idx = (a.idx - 1 + n) % n
	case ArpUpDown:
		if !a.down {
			a.idx++
			if a.idx >= n-1 {
				a.idx = n - 1
				a.down = true
			}
		} else {
			a.idx--
			if a.idx <= 0 {
				a.idx = 0
				a.down = false
			}
		}
	case ArpRandom:
		a.idx = int(a.rng.state % uint32(n))
		a.rng.next()
	}
}

// noteSink is where the arpeggiator sends its synthetic note events; the
// engine's voice pool implements it.
type noteSink interface {
	arpNoteOn(note uint8, velocity Smp)
	arpNoteOff(note uint8)
}

// tick runs the clock for one render quantum. Steps and gate are both
// tracked in samples; the gate counter runs independently of the step
// counter and issues the implicit NoteOff whenever it elapses.
func (a *Arp) tick(sink noteSink, p *Params) {
	if p.ArpMode == ArpOff || len(a.seq) == 0 {
		a.closeGate(sink)
		a.counter = 0
		a.pending = false
		return
	}

	step := arpStepSamples(p.BPM)
	gateLen := step * p.ArpGate

	if a.gateOpen {
		a.gateRemaining -= RenderFrames
		if a.gateRemaining <= 0 {
			a.closeGate(sink)
		}
	}

	if a.pending {
		a.pending = false
		a.fire(sink, p, gateLen)
	}

	a.counter += RenderFrames
	for a.counter >= step {
		// Keep the remainder: the step grid stays phase-locked to the
		// sample clock no matter how buffers divide it.
		a.counter -= step
		a.advance(p.ArpMode)
		a.fire(sink, p, gateLen)
	}
}

func (a *Arp) fire(sink noteSink, p *Params, gateLen Smp) {
	a.closeGate(sink)
	if a.idx >= len(a.seq) {
		a.idx = 0
	}
	a.current = a.seq[a.idx]
	sink.arpNoteOn(a.current, a.velocity)
	a.gateOpen = true
	a.gateRemaining = gateLen
}

func (a *Arp) closeGate(sink noteSink) {
	if a.gateOpen {
		sink.arpNoteOff(a.current)
		a.gateOpen = false
	}
}

// reset silences the clock without touching the held-note set.
func (a *Arp) reset() {
	a.gateOpen = false
	a.counter = 0
	a.pending = false
	a.idx = 0
	a.down = false
}
