package main

import (
	"context"
	"time"
)

// PatternStep is one slot of a step pattern. An empty Notes slice is a
// rest; Gate is the fraction of the step the notes stay held.
type PatternStep struct {
	Notes    []uint8
	Velocity Smp
	Gate     Smp
}

// Pattern is a looping step sequence that drives the engine from outside,
// through the same command queue a MIDI keyboard would use. One step is
// one beat at the pattern's tempo.
type Pattern struct {
	BPM   Smp
	Steps []PatternStep
}

func (p *Pattern) stepDuration() time.Duration {
	bpm := p.BPM
	if bpm <= 0 {
		bpm = 120
	}
	return time.Duration(60.0 / bpm * float64(time.Second))
}

// Play loops the pattern until the context is cancelled, sleeping between
// events. Timing here is only as good as the scheduler; the engine's own
// clocks stay sample-accurate regardless, since every event lands on a
// buffer boundary anyway.
func (p *Pattern) Play(ctx context.Context, e *Engine) {
	if len(p.Steps) == 0 {
		return
	}
	step := p.stepDuration()
	idx := 0
	for {
		st := &p.Steps[idx%len(p.Steps)]
		idx++

		for _, n := range st.Notes {
			e.Enqueue(NoteOn(n, st.Velocity))
		}
		gate := time.Duration(float64(step) * float64(clamp(st.Gate, 0.05, 1)))

		select {
		case <-ctx.Done():
			e.Enqueue(AllNotesOff())
			return
		case <-time.After(gate):
		}
		for _, n := range st.Notes {
			e.Enqueue(NoteOff(n, 0))
		}
		select {
		case <-ctx.Done():
			e.Enqueue(AllNotesOff())
			return
		case <-time.After(step - gate):
		}
	}
}

// scheduledEvent is a command pinned to a sample position, for offline
// rendering where there is no wall clock to sleep on.
type scheduledEvent struct {
	at  int // sample position
	cmd Command
}

// schedule lays the pattern out over totalFrames samples, looping as
// needed, and returns the events in time order.
func (p *Pattern) schedule(totalFrames int) []scheduledEvent {
	if len(p.Steps) == 0 {
		return nil
	}
	bpm := p.BPM
	if bpm <= 0 {
		bpm = 120
	}
	stepSamples := 60.0 / bpm * SampleRate

	var events []scheduledEvent
	pos := 0.0
	idx := 0
	for int(pos) < totalFrames {
		st := &p.Steps[idx%len(p.Steps)]
		idx++
		// All NoteOns before all NoteOffs keeps the event list in
		// nondecreasing time order, which the bounce loop relies on.
		gate := stepSamples * float64(clamp(st.Gate, 0.05, 1))
		for _, n := range st.Notes {
			events = append(events, scheduledEvent{at: int(pos), cmd: NoteOn(n, st.Velocity)})
		}
		for _, n := range st.Notes {
			events = append(events, scheduledEvent{at: int(pos + gate), cmd: NoteOff(n, 0)})
		}
		pos += stepSamples
	}
	return events
}

// demoPattern is a I-vi-IV-V loop in C, enough to hear the pool, the
// envelope and both bus effects working.
func demoPattern(bpm Smp) *Pattern {
	chord := func(notes ...uint8) PatternStep {
		return PatternStep{Notes: notes, Velocity: 0.85, Gate: 0.8}
	}
	rest := PatternStep{Gate: 1}
	return &Pattern{
		BPM: bpm,
		Steps: []PatternStep{
			chord(60, 64, 67), rest,
			chord(57, 60, 64), rest,
			chord(53, 57, 60), rest,
			chord(55, 59, 62), chord(55, 59, 62, 67),
		},
	}
}
