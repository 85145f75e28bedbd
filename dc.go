package main

// dcBlocker is a one-pole high-pass (y[n] = x[n] - x[n-1] + R*y[n-1])
// that strips DC offset from a voice before panning. The pole is adaptive:
// low fundamentals get a pole much closer to 1 so the blocker averages over
// several cycles instead of chewing into the fundamental itself.
type dcBlocker struct {
	r      Smp
	x1, y1 Smp
}

const (
	dcPoleDefault = 0.995  // ~38 Hz corner at 48 kHz
	dcPoleLow     = 0.9995 // ~3.8 Hz corner, for bass fundamentals
)

// setFundamental picks the pole for the sounding note's fundamental.
func (d *dcBlocker) setFundamental(freq Smp) {
	switch {
	case freq <= 0 || freq >= 110:
		d.r = dcPoleDefault
	case freq <= 55:
		d.r = dcPoleLow
	default:
		// Blend linearly between the two corners across one octave.
		t := (freq - 55) / 55
		d.r = dcPoleLow + t*(dcPoleDefault-dcPoleLow)
	}
}

func (d *dcBlocker) process(buf []Smp) {
	x1, y1, r := d.x1, d.y1, d.r
	for i, x := range buf {
		y := x - x1 + r*y1
		x1 = x
		y1 = y
		buf[i] = y
	}
	d.x1, d.y1 = x1, y1
}

func (d *dcBlocker) reset() {
	d.x1, d.y1 = 0, 0
	if d.r == 0 {
		d.r = dcPoleDefault
	}
}

// settleSamples estimates how long the blocker takes to absorb a step at
// the current pole; the onset ramp is sized to cover it.
func (d *dcBlocker) settleSamples() int {
	if d.r >= dcPoleLow {
		return 768 // 16 ms
	}
	return 192 // 4 ms
}
