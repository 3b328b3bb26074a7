package effect

import (
	"math"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
)

// biquadState is one channel's filter memory in direct form 1.
type biquadState struct {
	x1, x2, y1, y2 float32
}

func (s *biquadState) process(x, b0, b1, b2, a1, a2 float32) float32 {
	y := b0*x + b1*s.x1 + b2*s.x2 - a1*s.y1 - a2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

// filter implements the four classic second-order responses with the
// standard audio-cookbook coefficients. Coefficients are refreshed per
// block from the automated frequency and q parameters. Low/high pass are
// bypassed while their parameters sit at the transparent defaults; the
// band responses blend through their mix parameter instead.
type filter struct {
	base
	states [2]biquadState
}

func newFilter(name string, typ cadenza.EffectType) *filter {
	return &filter{base: newBase(name, typ)}
}

func (e *filter) coefficients(frequency, q float64) (b0, b1, b2, a1, a2 float32) {
	w0 := 2 * math.Pi * frequency / audio.SampleRate
	if w0 > math.Pi {
		w0 = math.Pi
	}
	sin, cos := math.Sin(w0), math.Cos(w0)
	alpha := sin / (2 * q)
	var fb0, fb1, fb2 float64
	switch e.typ {
	case cadenza.EffectLowPassFilter:
		fb1 = 1 - cos
		fb0, fb2 = fb1/2, fb1/2
	case cadenza.EffectHighPassFilter:
		fb1 = -(1 + cos)
		fb0, fb2 = -fb1/2, -fb1/2
	case cadenza.EffectBandPassFilter:
		fb0, fb1, fb2 = alpha, 0, -alpha
	case cadenza.EffectBandRejectFilter:
		fb0, fb1, fb2 = 1, -2*cos, 1
	}
	a0 := 1 + alpha
	return float32(fb0 / a0), float32(fb1 / a0), float32(fb2 / a0),
		float32(-2 * cos / a0), float32((1 - alpha) / a0)
}

func (e *filter) Process(buf []float32, from int64) {
	t0 := audio.FrameSeconds(from)
	if e.transparentAt(t0) {
		return
	}
	frequency := e.value("frequency", t0)
	q := e.value("q", t0)
	b0, b1, b2, a1, a2 := e.coefficients(frequency, q)
	band := e.typ == cadenza.EffectBandPassFilter || e.typ == cadenza.EffectBandRejectFilter
	mix := float32(1)
	if band {
		mix = float32(e.value("mix", t0))
	}
	for i := 0; i+1 < len(buf); i += audio.Channels {
		for c := 0; c < audio.Channels; c++ {
			x := buf[i+c]
			y := e.states[c].process(x, b0, b1, b2, a1, a2)
			buf[i+c] = x*(1-mix) + y*mix
		}
	}
}
