package main

import (
	"encoding/binary"
	"math"

	"github.com/ebitengine/oto/v3"
)

var otoContext *oto.Context

type OtoPlayer = oto.Player

func InitOtoContext(sampleRate int) error {
	otoContextOptions := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}
	ctx, readyChan, err := oto.NewContext(otoContextOptions)
	if err != nil {
		return err
	}
	<-readyChan
	otoContext = ctx
	return nil
}

// engineReader adapts the engine's pull renderer to the io.Reader the oto
// player consumes: interleaved stereo float32 little-endian. The device
// read size rarely lines up with the render quantum, so leftover bytes of
// the last rendered buffer are carried over to the next Read.
type engineReader struct {
	engine *Engine
	buf    [RenderFrames * 8]byte
	off    int // bytes already handed out
	n      int // bytes valid in buf
}

func (r *engineReader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if r.off == r.n {
			left, right := r.engine.Render()
			w := 0
			for i := range left {
				binary.LittleEndian.PutUint32(r.buf[w:], math.Float32bits(float32(left[i])))
				w += 4
				binary.LittleEndian.PutUint32(r.buf[w:], math.Float32bits(float32(right[i])))
				w += 4
			}
			r.off, r.n = 0, w
		}
		c := copy(p[total:], r.buf[r.off:r.n])
		total += c
		r.off += c
	}
	return total, nil
}

// StartPlayback wires the engine to the audio device and starts the
// stream. The returned player must be closed by the caller.
func StartPlayback(e *Engine) (*OtoPlayer, error) {
	if otoContext == nil {
		if err := InitOtoContext(SampleRate); err != nil {
			return nil, err
		}
	}
	player := otoContext.NewPlayer(&engineReader{engine: e})
	player.Play()
	logger.Info("audio stream started",
		"sample_rate", SampleRate, "frames", RenderFrames)
	return player, nil
}
