package effect

import (
	"math"

	"github.com/cadenza-audio/cadenza/audio"
)

type volume struct{ base }

func (e *volume) Process(buf []float32, from int64) {
	for i := 0; i+1 < len(buf); i += audio.Channels {
		g := float32(e.value("gain", audio.FrameSeconds(from+int64(i/audio.Channels))))
		buf[i] *= g
		buf[i+1] *= g
	}
}

// panning applies a stereo balance law: pan -1 mutes the right channel,
// +1 mutes the left, 0 leaves both untouched.
type panning struct{ base }

func (e *panning) Process(buf []float32, from int64) {
	for i := 0; i+1 < len(buf); i += audio.Channels {
		p := e.value("pan", audio.FrameSeconds(from+int64(i/audio.Channels)))
		if p > 0 {
			buf[i] *= float32(1 - p)
		} else if p < 0 {
			buf[i+1] *= float32(1 + p)
		}
	}
}

// tremolo modulates the gain with a sine LFO; depth 0 is transparent.
type tremolo struct{ base }

func (e *tremolo) Process(buf []float32, from int64) {
	t0 := audio.FrameSeconds(from)
	if e.transparentAt(t0) {
		return
	}
	rate := e.value("rate", t0)
	depth := e.value("depth", t0)
	for i := 0; i+1 < len(buf); i += audio.Channels {
		t := audio.FrameSeconds(from + int64(i/audio.Channels))
		g := float32(1 - depth*(0.5+0.5*math.Sin(2*math.Pi*rate*t)))
		buf[i] *= g
		buf[i+1] *= g
	}
}

// distortion is a wave shaper with the curve f(x) = (1+k)x / (1+k|x|):
// the identity at k=0, approaching hard clipping as the amount grows.
type distortion struct{ base }

func (e *distortion) Process(buf []float32, from int64) {
	t0 := audio.FrameSeconds(from)
	k := float32(e.value("amount", t0))
	if k == 0 {
		return
	}
	for i := range buf {
		x := buf[i]
		ax := x
		if ax < 0 {
			ax = -ax
		}
		buf[i] = (1 + k) * x / (1 + k*ax)
	}
}
