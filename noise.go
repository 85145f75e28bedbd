package main

// xorshift32 is a tiny deterministic PRNG for the noise oscillators.
// Seed 0 is mapped to 1 to avoid lockup.
type xorshift32 struct {
	state uint32
}

func newXorshift32(seed uint32) xorshift32 {
	if seed == 0 {
		seed = 1
	}
	return xorshift32{state: seed}
}

func (x *xorshift32) next() Smp {
	x.state ^= x.state << 13
	x.state ^= x.state >> 17
	x.state ^= x.state << 5
	u := float64(x.state) / float64(^uint32(0))
	return Smp(2*u - 1)
}

// pinkFilter turns white noise into pink (-3 dB/oct) using Paul Kellet's
// three-pole economy approximation.
type pinkFilter struct {
	b0, b1, b2 Smp
}

func (p *pinkFilter) next(white Smp) Smp {
	p.b0 = 0.99765*p.b0 + white*0.0990460
	p.b1 = 0.96300*p.b1 + white*0.2965164
	p.b2 = 0.57000*p.b2 + white*1.0526913
	return (p.b0 + p.b1 + p.b2 + white*0.1848) * 0.25
}

func (p *pinkFilter) reset() {
	p.b0, p.b1, p.b2 = 0, 0, 0
}
