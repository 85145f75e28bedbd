package main

// Waveform selects the oscillator shape. Resolved from ParamUpdate strings
// once per drain, never compared per sample.
type Waveform uint8

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	WaveNoise
	WavePink
)

func parseWaveform(s string) (Waveform, bool) {
	switch s {
	case "sine":
		return WaveSine, true
	case "square":
		return WaveSquare, true
	case "sawtooth", "saw":
		return WaveSawtooth, true
	case "triangle":
		return WaveTriangle, true
	case "noise", "white":
		return WaveNoise, true
	case "pink":
		return WavePink, true
	}
	return 0, false
}

// LFOShape selects the modulation waveform.
type LFOShape uint8

const (
	LFOSine LFOShape = iota
	LFOTriangle
	LFOSquare
	LFOSampleHold
)

func parseLFOShape(s string) (LFOShape, bool) {
	switch s {
	case "sine":
		return LFOSine, true
	case "triangle":
		return LFOTriangle, true
	case "square":
		return LFOSquare, true
	case "sh", "samplehold", "sample-hold":
		return LFOSampleHold, true
	}
	return 0, false
}

// LFOTarget selects which part of the voice pipeline the LFO modulates.
type LFOTarget uint8

const (
	TargetPitch LFOTarget = iota
	TargetFilter
	TargetAmp
	TargetAll
)

func parseLFOTarget(s string) (LFOTarget, bool) {
	switch s {
	case "pitch":
		return TargetPitch, true
	case "filter":
		return TargetFilter, true
	case "amp", "amplitude":
		return TargetAmp, true
	case "all":
		return TargetAll, true
	}
	return 0, false
}

// ArpMode selects the arpeggiator stepping order. ArpOff disables the clock.
type ArpMode uint8

const (
	ArpOff ArpMode = iota
	ArpUp
	ArpDown
	ArpUpDown
	ArpRandom
)

func parseArpMode(s string) (ArpMode, bool) {
	switch s {
	case "off":
		return ArpOff, true
	case "up":
		return ArpUp, true
	case "down":
		return ArpDown, true
	case "updown", "up-down":
		return ArpUpDown, true
	case "random":
		return ArpRandom, true
	}
	return 0, false
}

// Params is the single coherent snapshot of every engine setting. It is
// owned by the render thread and mutated only by applying ParamUpdate
// commands at buffer boundaries.
type Params struct {
	Waveform Waveform
	Octave   int
	Amp      Smp
	AmpComp  bool

	Cutoff    Smp // low-pass cutoff, Hz
	Resonance Smp // 0..0.9
	HPFCutoff Smp // high-pass stage cutoff, Hz

	Attack    Smp // seconds
	Decay     Smp
	Sustain   Smp // level 0..1
	Release   Smp
	Intensity Smp // envelope peak level

	LFOShape  LFOShape
	LFOTarget LFOTarget
	LFORate   Smp // Hz
	LFODepth  Smp // 0..1

	ChorusRate   Smp // Hz
	ChorusDepth  Smp // 0..1
	ChorusMix    Smp // 0..1, 0 = hard bypass
	ChorusVoices int // 1..4 taps

	DelayTime     Smp // seconds
	DelayFeedback Smp // 0..0.95
	DelayMix      Smp // 0..1, 0 = hard bypass

	ArpMode  ArpMode
	ArpGate  Smp // fraction of a step, 0.05..1
	ArpRange int // octaves, 1..4
	BPM      Smp // shared tempo cell, read by the arpeggiator

	PanSpread Smp // 0..1, voices fan out across the stereo field

	PitchBendTarget Smp // -1..1, maps to ±2 semitones
	Volume          Smp // master gain
}

// defaultParams mirrors the factory patch.
func defaultParams() Params {
	return Params{
		Waveform:  WaveSine,
		Octave:    0,
		Amp:       0.75,
		AmpComp:   true,
		Cutoff:    2000,
		Resonance: 0.3,
		HPFCutoff: 20,
		Attack:    0.01,
		Decay:     0.2,
		Sustain:   0.7,
		Release:   0.05,
		Intensity: 0.8,

		LFOShape:  LFOSine,
		LFOTarget: TargetFilter,
		LFORate:   1.0,
		LFODepth:  0,

		ChorusRate:   0.8,
		ChorusDepth:  0.5,
		ChorusMix:    0,
		ChorusVoices: 2,

		DelayTime:     0.3,
		DelayFeedback: 0.35,
		DelayMix:      0,

		ArpMode:  ArpOff,
		ArpGate:  0.8,
		ArpRange: 1,
		BPM:      120,

		PanSpread: 0,
		Volume:    0.8,
	}
}

// waveformGain compensates perceived loudness differences between shapes.
// Sine is the reference; square has a high RMS and gets pulled down.
func (p *Params) waveformGain() Smp {
	if !p.AmpComp {
		return 1.0
	}
	switch p.Waveform {
	case WaveSine:
		return 1.4
	case WaveSquare:
		return 0.8
	case WaveSawtooth, WaveTriangle:
		return 1.7
	default:
		return 1.0
	}
}

func paramFloat(v any) (Smp, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return Smp(x), true
	case int:
		return Smp(x), true
	case int64:
		return Smp(x), true
	}
	return 0, false
}

func paramInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

func paramBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case int:
		return x != 0, true
	case float64:
		return x != 0, true
	}
	return false, false
}

func paramString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Apply folds a ParamUpdate map into the snapshot. Out-of-range values are
// clamped to their valid domain, never rejected; unknown keys and
// ill-typed values are ignored.
func (p *Params) Apply(params map[string]any) {
	for key, v := range params {
		switch key {
		case "waveform":
			if s, ok := paramString(v); ok {
				if w, ok := parseWaveform(s); ok {
					p.Waveform = w
				}
			}
		case "octave":
			if n, ok := paramInt(v); ok {
				p.Octave = clampInt(n, -2, 2)
			}
		case "amp":
			if f, ok := paramFloat(v); ok {
				p.Amp = clamp(f, 0, 1)
			}
		case "amp_comp":
			if b, ok := paramBool(v); ok {
				p.AmpComp = b
			}
		case "cutoff":
			if f, ok := paramFloat(v); ok {
				p.Cutoff = clamp(f, 20, 20000)
			}
		case "resonance":
			if f, ok := paramFloat(v); ok {
				p.Resonance = clamp(f, 0, 0.9)
			}
		case "hpf_cutoff":
			if f, ok := paramFloat(v); ok {
				p.HPFCutoff = clamp(f, 20, 2000)
			}
		case "attack":
			if f, ok := paramFloat(v); ok {
				p.Attack = clamp(f, 0.001, 5)
			}
		case "decay":
			if f, ok := paramFloat(v); ok {
				p.Decay = clamp(f, 0.001, 5)
			}
		case "sustain":
			if f, ok := paramFloat(v); ok {
				p.Sustain = clamp(f, 0, 1)
			}
		case "release":
			if f, ok := paramFloat(v); ok {
				p.Release = clamp(f, 0.001, 5)
			}
		case "intensity":
			if f, ok := paramFloat(v); ok {
				p.Intensity = clamp(f, 0, 1)
			}
		case "lfo_shape":
			if s, ok := paramString(v); ok {
				if sh, ok := parseLFOShape(s); ok {
					p.LFOShape = sh
				}
			}
		case "lfo_target":
			if s, ok := paramString(v); ok {
				if t, ok := parseLFOTarget(s); ok {
					p.LFOTarget = t
				}
			}
		case "lfo_rate":
			if f, ok := paramFloat(v); ok {
				p.LFORate = clamp(f, 0.01, 20)
			}
		case "lfo_depth":
			if f, ok := paramFloat(v); ok {
				p.LFODepth = clamp(f, 0, 1)
			}
		case "chorus_rate":
			if f, ok := paramFloat(v); ok {
				p.ChorusRate = clamp(f, 0.05, 5)
			}
		case "chorus_depth":
			if f, ok := paramFloat(v); ok {
				p.ChorusDepth = clamp(f, 0, 1)
			}
		case "chorus_mix":
			if f, ok := paramFloat(v); ok {
				p.ChorusMix = clamp(f, 0, 1)
			}
		case "chorus_voices":
			if n, ok := paramInt(v); ok {
				p.ChorusVoices = clampInt(n, 1, 4)
			}
		case "delay_time":
			if f, ok := paramFloat(v); ok {
				p.DelayTime = clamp(f, 0.01, 1)
			}
		case "delay_feedback":
			if f, ok := paramFloat(v); ok {
				p.DelayFeedback = clamp(f, 0, 0.95)
			}
		case "delay_mix":
			if f, ok := paramFloat(v); ok {
				p.DelayMix = clamp(f, 0, 1)
			}
		case "arp_mode":
			if s, ok := paramString(v); ok {
				if m, ok := parseArpMode(s); ok {
					p.ArpMode = m
				}
			}
		case "arp_gate":
			if f, ok := paramFloat(v); ok {
				p.ArpGate = clamp(f, 0.05, 1)
			}
		case "arp_range":
			if n, ok := paramInt(v); ok {
				p.ArpRange = clampInt(n, 1, 4)
			}
		case "bpm":
			if f, ok := paramFloat(v); ok {
				p.BPM = clamp(f, 30, 300)
			}
		case "pan_spread":
			if f, ok := paramFloat(v); ok {
				p.PanSpread = clamp(f, 0, 1)
			}
		case "pitch_bend":
			if f, ok := paramFloat(v); ok {
				p.PitchBendTarget = clamp(f, -1, 1)
			}
		case "volume":
			if f, ok := paramFloat(v); ok {
				p.Volume = clamp(f, 0, 1)
			}
		}
	}
}
