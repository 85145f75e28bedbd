package main

import (
	"math"
	"testing"
)

func activeVoices(e *Engine) int {
	n := 0
	for i := range e.voices {
		if e.voices[i].state != VoiceIdle {
			n++
		}
	}
	return n
}

func voiceForNote(e *Engine, note uint8) *Voice {
	for i := range e.voices {
		v := &e.voices[i]
		if v.state != VoiceIdle && v.hasNote && v.note == note {
			return v
		}
	}
	return nil
}

func TestNoteOnAllocatesVoice(t *testing.T) {
	e := NewEngine()
	e.apply(NoteOn(60, 1))
	if activeVoices(e) != 1 {
		t.Fatalf("active voices = %d, want 1", activeVoices(e))
	}
	v := voiceForNote(e, 60)
	if v == nil {
		t.Fatal("no voice bound to the note")
	}
	if v.state != VoiceActive {
		t.Fatalf("voice state = %v, want active", v.state)
	}
}

func TestNoteOnSameNoteRetriggersInPlace(t *testing.T) {
	e := NewEngine()
	e.apply(NoteOn(60, 1))
	e.Render()
	e.apply(NoteOn(60, 1))
	if activeVoices(e) != 1 {
		t.Fatalf("retrigger allocated a second voice: %d active", activeVoices(e))
	}
}

func TestVoiceCountNeverExceedsPool(t *testing.T) {
	e := NewEngine()
	for n := uint8(0); n < 2*NumVoices; n++ {
		e.apply(NoteOn(48+n, 1))
		if activeVoices(e) > NumVoices {
			t.Fatalf("%d voices active after %d notes", activeVoices(e), n+1)
		}
	}
	if activeVoices(e) != NumVoices {
		t.Fatalf("pool not full: %d active", activeVoices(e))
	}
}

// The ninth simultaneous note steals exactly one voice: the oldest.
func TestNinthNoteStealsOldest(t *testing.T) {
	e := NewEngine()
	for n := uint8(0); n < NumVoices; n++ {
		e.apply(NoteOn(60+n, 1))
		e.Render() // advance the clock so ages differ
	}
	e.apply(NoteOn(80, 1))

	if v := voiceForNote(e, 60); v != nil {
		t.Fatal("oldest note still sounding after steal")
	}
	if v := voiceForNote(e, 80); v == nil {
		t.Fatal("new note not sounding after steal")
	}
	for n := uint8(1); n < NumVoices; n++ {
		if v := voiceForNote(e, 60+n); v == nil {
			t.Fatalf("steal displaced more than one voice: note %d gone", 60+n)
		}
	}
}

// The buffer rendered across a steal must stay continuous: the victim's
// tail crossfades out while the new note's onset ramps in, so no sample
// step may exceed a small epsilon.
func TestStealBufferHasNoDiscontinuity(t *testing.T) {
	e := NewEngine()
	for n := uint8(0); n < NumVoices; n++ {
		e.apply(NoteOn(60+n, 1))
		e.Render()
	}
	// Settle past every onset ramp so the mix is steady state.
	var last Smp
	for i := 0; i < 20; i++ {
		l, _ := e.Render()
		last = l[len(l)-1]
	}

	e.apply(NoteOn(80, 1))
	l, _ := e.Render()

	// Eight steady sines move by well under this per sample; a dropped
	// crossfade would step by the full victim amplitude.
	const eps = 0.15
	if math.Abs(l[0]-last) > eps {
		t.Fatalf("discontinuity at steal boundary: %g -> %g", last, l[0])
	}
	for i := 1; i < len(l); i++ {
		if math.Abs(l[i]-l[i-1]) > eps {
			t.Fatalf("discontinuity inside post-steal buffer at %d: %g -> %g", i, l[i-1], l[i])
		}
	}
}

// Releasing voices whose keys are up are preferred over held ones.
func TestStealPrefersReleasedVoices(t *testing.T) {
	e := NewEngine()
	for n := uint8(0); n < NumVoices; n++ {
		e.apply(NoteOn(60+n, 1))
		e.Render()
	}
	e.apply(NoteOff(63, 0)) // voice for 63 enters release, key up
	e.apply(NoteOn(80, 1))

	if v := voiceForNote(e, 63); v != nil {
		t.Fatal("releasing voice not chosen as steal victim")
	}
	if v := voiceForNote(e, 60); v == nil {
		t.Fatal("held voice stolen while a releasing one was available")
	}
}

func TestRetriggerContinuity(t *testing.T) {
	e := NewEngine()
	e.apply(NoteOn(60, 1))

	var last Smp
	for i := 0; i < 20; i++ {
		l, _ := e.Render()
		last = l[len(l)-1]
	}

	e.apply(NoteOn(60, 1))
	l, _ := e.Render()

	// One sample of a 261 Hz sine moves by at most ~2π·261/48000 of its
	// amplitude; anything much larger is a discontinuity.
	if math.Abs(l[0]-last) > 0.1 {
		t.Fatalf("retrigger jumped from %g to %g", last, l[0])
	}
	for i := 1; i < len(l); i++ {
		if math.Abs(l[i]-l[i-1]) > 0.1 {
			t.Fatalf("retrigger discontinuity inside buffer at %d: %g -> %g", i, l[i-1], l[i])
		}
	}
}

func TestAllNotesOffSilencesWithinOneBuffer(t *testing.T) {
	e := NewEngine()
	for n := uint8(0); n < 4; n++ {
		e.apply(NoteOn(60+n*3, 1))
	}
	for i := 0; i < 10; i++ {
		e.Render()
	}

	e.Enqueue(AllNotesOff())
	l, r := e.Render()
	for i := range l {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("sample %d nonzero after AllNotesOff: %g/%g", i, l[i], r[i])
		}
	}
	if activeVoices(e) != 0 {
		t.Fatalf("%d voices still active", activeVoices(e))
	}
}

// With wet effect mixes the delay line would otherwise keep echoing past
// the cutoff; AllNotesOff flushes the effect tails too.
func TestAllNotesOffFlushesEffectTails(t *testing.T) {
	e := NewEngine()
	e.apply(ParamUpdate(map[string]any{
		"chorus_mix": 0.5,
		"delay_mix":  0.5,
		"delay_time": 0.05,
	}))
	for n := uint8(0); n < 3; n++ {
		e.apply(NoteOn(60+n*4, 1))
	}
	for i := 0; i < 10; i++ {
		e.Render()
	}

	e.Enqueue(AllNotesOff())
	l, r := e.Render()
	for i := range l {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("sample %d nonzero after AllNotesOff with wet mixes: %g/%g", i, l[i], r[i])
		}
	}
}

func TestNoteOffEntersReleaseNotSilence(t *testing.T) {
	e := NewEngine()
	e.apply(NoteOn(60, 1))
	for i := 0; i < 5; i++ {
		e.Render()
	}
	e.apply(NoteOff(60, 0))
	l, _ := e.Render()

	peak := 0.0
	for _, x := range l {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		t.Fatal("note cut instead of entering release")
	}
	v := voiceForNote(e, 60)
	if v != nil && v.state != VoiceReleasing {
		t.Fatalf("voice state = %v, want releasing", v.state)
	}
}

func TestReleasedVoiceReturnsToPool(t *testing.T) {
	e := NewEngine()
	e.apply(ParamUpdate(map[string]any{"release": 0.01}))
	e.apply(NoteOn(60, 1))
	e.Render()
	e.apply(NoteOff(60, 0))
	// 0.01 s release fits in one buffer; render a few to be past it.
	for i := 0; i < 5; i++ {
		e.Render()
	}
	if activeVoices(e) != 0 {
		t.Fatalf("%d voices active after release elapsed", activeVoices(e))
	}
}

func TestMuteGateRampsToSilence(t *testing.T) {
	e := NewEngine()
	e.apply(NoteOn(60, 1))
	for i := 0; i < 5; i++ {
		e.Render()
	}

	e.Enqueue(MuteGate())
	l, _ := e.Render()
	if l[0] == 0 {
		t.Fatal("mute cut instantly instead of ramping")
	}
	if l[len(l)-1] != 0 {
		t.Fatalf("still audible at end of mute buffer: %g", l[len(l)-1])
	}

	// Toggle back: sound returns.
	e.Enqueue(MuteGate())
	l, _ = e.Render()
	if l[len(l)-1] == 0 {
		t.Fatal("unmute did not restore output")
	}
}

func TestPitchBendIsSmoothed(t *testing.T) {
	e := NewEngine()
	e.apply(NoteOn(69, 1))
	e.Render()

	e.apply(ParamUpdate(map[string]any{"pitch_bend": 1.0}))
	e.Render()
	afterOne := e.bend
	if afterOne <= 0 || afterOne >= 1 {
		t.Fatalf("bend after one buffer = %g, want strictly between 0 and 1", afterOne)
	}
	for i := 0; i < 200; i++ {
		e.Render()
	}
	if e.bend != 1 {
		t.Fatalf("bend never converged: %g", e.bend)
	}
}

func TestArpModeSwitchTakesOverHeldNotes(t *testing.T) {
	e := NewEngine()
	e.apply(NoteOn(60, 1))
	e.apply(NoteOn(64, 1))
	e.Render()

	e.apply(ParamUpdate(map[string]any{"arp_mode": "up"}))
	e.Render()

	// Exactly one arp note sounds at a time (plus old voices releasing).
	act := 0
	for i := range e.voices {
		if e.voices[i].state == VoiceActive {
			act++
		}
	}
	if act != 1 {
		t.Fatalf("%d active voices under arp, want 1", act)
	}

	e.apply(ParamUpdate(map[string]any{"arp_mode": "off"}))
	e.Render()
	for i := range e.voices {
		if e.voices[i].state == VoiceActive {
			t.Fatal("arp note still held after arp off")
		}
	}
}

func TestParamClamping(t *testing.T) {
	p := defaultParams()
	p.Apply(map[string]any{
		"cutoff":    99999.0,
		"resonance": 5.0,
		"octave":    7,
		"bpm":       1.0,
		"volume":    -3.0,
	})
	if p.Cutoff != 20000 {
		t.Errorf("cutoff = %g, want clamped to 20000", p.Cutoff)
	}
	if p.Resonance != 0.9 {
		t.Errorf("resonance = %g, want clamped to 0.9", p.Resonance)
	}
	if p.Octave != 2 {
		t.Errorf("octave = %d, want clamped to 2", p.Octave)
	}
	if p.BPM != 30 {
		t.Errorf("bpm = %g, want clamped to 30", p.BPM)
	}
	if p.Volume != 0 {
		t.Errorf("volume = %g, want clamped to 0", p.Volume)
	}
}

func TestUnknownParamsIgnored(t *testing.T) {
	p := defaultParams()
	before := p
	p.Apply(map[string]any{
		"no_such_param": 1.0,
		"cutoff":        "not a number",
	})
	if p != before {
		t.Fatal("unknown key or ill-typed value mutated the snapshot")
	}
}
