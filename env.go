package main

// envelope is a sample-accurate ADSR generator. It tracks elapsed time in
// the current stage family (trigger-relative while the gate is held,
// release-relative afterwards) and fills a whole buffer in one pass,
// segment by segment, instead of branching per sample.
type envelope struct {
	time         Smp // seconds since trigger (or since release start)
	releasing    bool
	attackFrom   Smp // level the attack ramps up from; nonzero on retrigger
	releaseLevel Smp // level captured when release began
	lastLevel    Smp
}

// trigger restarts the envelope. The attack ramps from the current level so
// a retrigger never drives the output through zero.
func (e *envelope) trigger() {
	e.attackFrom = e.lastLevel
	e.time = 0
	e.releasing = false
}

// release captures the current level and switches to the release stage.
// The release tail decays from wherever the envelope actually was, not
// from the configured peak.
func (e *envelope) release(p *Params, velocity Smp) {
	if e.releasing {
		return
	}
	e.releaseLevel = e.levelAt(e.time, p, velocity)
	e.time = 0
	e.releasing = true
}

func (e *envelope) reset() {
	e.time = 0
	e.releasing = false
	e.attackFrom = 0
	e.releaseLevel = 0
	e.lastLevel = 0
}

// levelAt evaluates the gate-held ADSR curve at a given elapsed time.
func (e *envelope) levelAt(t Smp, p *Params, velocity Smp) Smp {
	peak := p.Intensity * velocity
	if t < p.Attack {
		if p.Attack <= 0 {
			return peak
		}
		return e.attackFrom + (peak-e.attackFrom)*(t/p.Attack)
	}
	t -= p.Attack
	if t < p.Decay {
		if p.Decay <= 0 {
			return peak * p.Sustain
		}
		return peak * (1 - (t/p.Decay)*(1-p.Sustain))
	}
	return peak * p.Sustain
}

// fill writes one buffer of envelope values and advances elapsed time.
// It returns true when a releasing envelope has fully decayed within this
// buffer, meaning the voice can go idle.
func (e *envelope) fill(out []Smp, p *Params, velocity Smp) (finished bool) {
	const dt = 1.0 / SampleRate
	n := len(out)

	if e.releasing {
		rel := p.Release
		if rel <= 0 {
			for i := range out {
				out[i] = 0
			}
			e.lastLevel = 0
			return true
		}
		for i := range out {
			t := e.time + Smp(i)*dt
			level := e.releaseLevel * (1 - t/rel)
			if level < 0 {
				level = 0
			}
			out[i] = level
		}
		e.time += Smp(n) * dt
		e.lastLevel = out[n-1]
		return e.time >= rel
	}

	// Gate held: walk the attack/decay/sustain segments by index range so
	// the inner loops stay branch-free.
	peak := p.Intensity * velocity
	t0 := e.time
	i := 0

	if t0 < p.Attack && p.Attack > 0 {
		end := min(n, int((p.Attack-t0)/dt)+1)
		slope := (peak - e.attackFrom) / p.Attack
		for ; i < end; i++ {
			t := t0 + Smp(i)*dt
			if t >= p.Attack {
				break
			}
			out[i] = e.attackFrom + slope*t
		}
	}
	decayEnd := p.Attack + p.Decay
	if i < n && t0+Smp(i)*dt < decayEnd && p.Decay > 0 {
		slope := peak * (1 - p.Sustain) / p.Decay
		for ; i < n; i++ {
			t := t0 + Smp(i)*dt
			if t >= decayEnd {
				break
			}
			out[i] = peak - slope*(t-p.Attack)
		}
	}
	sustain := peak * p.Sustain
	for ; i < n; i++ {
		out[i] = sustain
	}

	e.time += Smp(n) * dt
	e.lastLevel = out[n-1]
	return false
}
