package main

// Smp is the sample type used throughout the DSP code.
type Smp = float64

const (
	// SampleRate is the fixed engine sample rate in Hz.
	SampleRate = 48000

	// RenderFrames is the fixed render quantum in frames. Commands are
	// applied only at quantum boundaries.
	RenderFrames = 512

	// NumVoices is the fixed polyphony of the voice pool.
	NumVoices = 8
)
