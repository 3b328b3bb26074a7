package effect

import (
	"math"

	"github.com/cadenza-audio/cadenza/audio"
)

// compressor is the chainable dynamics effect. The default threshold of
// 0 dB with ratio 1 never attenuates; the master bus carries its own
// always-on compressor separately.
type compressor struct {
	base
	env    float64
	inited bool
	attack, release float64
}

func (e *compressor) Process(buf []float32, from int64) {
	t0 := audio.FrameSeconds(from)
	if e.transparentAt(t0) {
		return
	}
	if !e.inited {
		e.attack = 1 - math.Exp(-1/(0.003*audio.SampleRate))
		e.release = 1 - math.Exp(-1/(0.250*audio.SampleRate))
		e.inited = true
	}
	thresholdLin := math.Pow(10, e.value("threshold", t0)/20)
	ratio := e.value("ratio", t0)
	for i := 0; i+1 < len(buf); i += audio.Channels {
		level := math.Max(math.Abs(float64(buf[i])), math.Abs(float64(buf[i+1])))
		coef := e.release
		if level > e.env {
			coef = e.attack
		}
		e.env += coef * (level - e.env)
		gain := 1.0
		if e.env > thresholdLin && ratio > 1 {
			gain = thresholdLin * math.Pow(e.env/thresholdLin, 1/ratio) / e.env
		}
		buf[i] *= float32(gain)
		buf[i+1] *= float32(gain)
	}
}
