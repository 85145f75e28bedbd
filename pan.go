package main

import "math"

// equalPowerPan returns gains for left/right given pan in [-1,1].
func equalPowerPan(p Smp) (Smp, Smp) {
	if p < -1 {
		p = -1
	}
	if p > 1 {
		p = 1
	}
	// map p=-1..1 -> theta in [0..pi/2]
	theta := (p + 1) * math.Pi / 4
	return math.Cos(theta), math.Sin(theta)
}

// voicePan spreads the fixed voice pool across the stereo field. With
// spread=0 every voice sits center; with spread=1 voice 0 is hard left and
// voice N-1 hard right.
func voicePan(index int, spread Smp) Smp {
	if spread <= 0 || NumVoices <= 1 {
		return 0
	}
	if spread > 1 {
		spread = 1
	}
	step := 2 * spread / Smp(NumVoices-1)
	return -spread + Smp(index)*step
}
