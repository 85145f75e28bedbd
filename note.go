package main

import (
	"fmt"
	"math"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// pitchName renders a MIDI note number as e.g. "C4" or "A#2".
func pitchName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}

// midiToFreq converts a MIDI note number to Hz using A440 tuning
// (A4 = note 69 = 440 Hz).
func midiToFreq(note uint8) Smp {
	return 440.0 * math.Exp2((Smp(note)-69)/12)
}

// velocityCurve maps raw MIDI velocity 0..127 to a normalized gain.
// The square root makes low velocities more playable.
func velocityCurve(velocity uint8) Smp {
	if velocity > 127 {
		velocity = 127
	}
	return math.Sqrt(Smp(velocity) / 127.0)
}

// semitoneRatio returns the frequency ratio for a pitch offset in semitones.
func semitoneRatio(semitones Smp) Smp {
	return math.Exp2(semitones / 12)
}
