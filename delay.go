package main

// delayBufferSamples bounds the delay time at one second.
const delayBufferSamples = SampleRate

// Delay is the second master-bus effect: a feedback echo per channel.
// The tail persists across bypass toggles; at mix=0 the stage neither
// reads nor writes, so whatever is in the line simply waits.
type Delay struct {
	buf   [2][]Smp
	write int
}

func newDelay() *Delay {
	d := &Delay{}
	d.buf[0] = make([]Smp, delayBufferSamples)
	d.buf[1] = make([]Smp, delayBufferSamples)
	return d
}

// process runs the echo in place over one stereo buffer.
func (d *Delay) process(left, right []Smp, p *Params) {
	if p.DelayMix <= 0 {
		return
	}

	dist := int(p.DelayTime * SampleRate)
	dist = clampInt(dist, 1, delayBufferSamples-1)
	mix := p.DelayMix
	dry := 1 - mix
	fb := p.DelayFeedback

	write := d.write
	for i := range left {
		read := write - dist
		if read < 0 {
			read += delayBufferSamples
		}
		wetL := d.buf[0][read]
		wetR := d.buf[1][read]

		d.buf[0][write] = left[i] + wetL*fb
		d.buf[1][write] = right[i] + wetR*fb

		left[i] = left[i]*dry + wetL*mix
		right[i] = right[i]*dry + wetR*mix

		write++
		if write >= delayBufferSamples {
			write = 0
		}
	}
	d.write = write
}

func (d *Delay) reset() {
	for ch := range d.buf {
		for i := range d.buf[ch] {
			d.buf[ch][i] = 0
		}
	}
	d.write = 0
}
