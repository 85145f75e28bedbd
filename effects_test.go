package main

import (
	"math"
	"testing"
)

func testSignal(n int, seed uint32) []Smp {
	rng := newXorshift32(seed)
	buf := make([]Smp, n)
	for i := range buf {
		buf[i] = rng.next() * 0.5
	}
	return buf
}

func TestChorusBypassAtZeroMix(t *testing.T) {
	p := defaultParams()
	p.ChorusMix = 0
	c := newChorus()

	l := testSignal(RenderFrames, 1)
	r := testSignal(RenderFrames, 2)
	wantL := append([]Smp(nil), l...)
	wantR := append([]Smp(nil), r...)

	c.process(l, r, &p)
	for i := range l {
		if l[i] != wantL[i] || r[i] != wantR[i] {
			t.Fatalf("sample %d modified under bypass", i)
		}
	}
}

func TestChorusWetAltersSignal(t *testing.T) {
	p := defaultParams()
	p.ChorusMix = 0.5
	p.ChorusDepth = 0.5
	p.ChorusVoices = 2
	c := newChorus()

	l := testSignal(RenderFrames, 1)
	r := testSignal(RenderFrames, 2)
	origL := append([]Smp(nil), l...)

	// Run enough buffers for the delay line to fill past the base tap.
	for i := 0; i < 4; i++ {
		c.process(l, r, &p)
	}
	same := true
	for i := range l {
		if l[i] != origL[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("chorus at 50% mix left the signal untouched")
	}
}

func TestDelayBypassAtZeroMix(t *testing.T) {
	p := defaultParams()
	p.DelayMix = 0
	d := newDelay()

	l := testSignal(RenderFrames, 3)
	r := testSignal(RenderFrames, 4)
	wantL := append([]Smp(nil), l...)

	d.process(l, r, &p)
	for i := range l {
		if l[i] != wantL[i] {
			t.Fatalf("sample %d modified under bypass", i)
		}
	}
}

func TestDelayEchoTiming(t *testing.T) {
	p := defaultParams()
	p.DelayMix = 0.5
	p.DelayFeedback = 0
	p.DelayTime = 0.05 // 2400 samples
	d := newDelay()

	delaySamples := int(p.DelayTime * SampleRate)
	buffers := delaySamples/RenderFrames + 2

	var out []Smp
	for b := 0; b < buffers; b++ {
		l := make([]Smp, RenderFrames)
		r := make([]Smp, RenderFrames)
		if b == 0 {
			l[0] = 1 // impulse
			r[0] = 1
		}
		d.process(l, r, &p)
		out = append(out, l...)
	}

	// Dry impulse at 0, echo at delaySamples scaled by the wet mix.
	if math.Abs(out[0]-0.5) > 1e-9 {
		t.Fatalf("dry impulse = %g, want 0.5", out[0])
	}
	if math.Abs(out[delaySamples]-0.5) > 1e-9 {
		t.Fatalf("echo at %d = %g, want 0.5", delaySamples, out[delaySamples])
	}
	for i, x := range out[1:delaySamples] {
		if x != 0 {
			t.Fatalf("unexpected energy at sample %d: %g", i+1, x)
		}
	}
}

func TestDelayFeedbackDecays(t *testing.T) {
	p := defaultParams()
	p.DelayMix = 1
	p.DelayFeedback = 0.5
	p.DelayTime = 0.01 // 480 samples
	d := newDelay()

	delaySamples := int(p.DelayTime * SampleRate)
	var out []Smp
	for b := 0; b < 10; b++ {
		l := make([]Smp, RenderFrames)
		r := make([]Smp, RenderFrames)
		if b == 0 {
			l[0] = 1
			r[0] = 1
		}
		d.process(l, r, &p)
		out = append(out, l...)
	}

	first := math.Abs(out[delaySamples])
	second := math.Abs(out[2*delaySamples])
	third := math.Abs(out[3*delaySamples])
	if first <= second || second <= third {
		t.Fatalf("echoes not decaying: %g, %g, %g", first, second, third)
	}
}

func TestVoicePanSpread(t *testing.T) {
	if p := voicePan(3, 0); p != 0 {
		t.Fatalf("pan with zero spread = %g, want 0", p)
	}
	if p := voicePan(0, 1); p != -1 {
		t.Fatalf("first voice at full spread = %g, want -1", p)
	}
	if p := voicePan(NumVoices-1, 1); p != 1 {
		t.Fatalf("last voice at full spread = %g, want 1", p)
	}
	mid := voicePan(0, 0.5)
	if mid != -0.5 {
		t.Fatalf("first voice at half spread = %g, want -0.5", mid)
	}
}

func TestPatternScheduleIsOrdered(t *testing.T) {
	pat := demoPattern(120)
	events := pat.schedule(10 * SampleRate)
	if len(events) == 0 {
		t.Fatal("empty schedule")
	}
	for i := 1; i < len(events); i++ {
		if events[i].at < events[i-1].at {
			t.Fatalf("event %d at %d precedes event %d at %d", i, events[i].at, i-1, events[i-1].at)
		}
	}
	// Every NoteOn has a matching NoteOff.
	balance := make(map[uint8]int)
	for _, ev := range events {
		switch ev.cmd.Kind {
		case CmdNoteOn:
			balance[ev.cmd.Note]++
		case CmdNoteOff:
			balance[ev.cmd.Note]--
		}
	}
	for note, n := range balance {
		if n != 0 {
			t.Errorf("note %d: %+d unmatched events", note, n)
		}
	}
}
