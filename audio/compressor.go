package audio

import "math"

// Compressor is the master-bus dynamics stage: a feed-forward compressor
// with an envelope follower, protecting the output from summed voices
// clipping. Defaults follow the common dynamics-node settings: -24 dB
// threshold, ratio 12, 3 ms attack, 250 ms release.
type Compressor struct {
	Threshold float64 // dB
	Ratio     float64
	attack    float64 // per-frame smoothing coefficients
	release   float64
	env       float64
}

// NewCompressor creates a compressor with the default settings at the
// given rate.
func NewCompressor(sampleRate int) *Compressor {
	return &Compressor{
		Threshold: -24,
		Ratio:     12,
		attack:    1 - math.Exp(-1/(0.003*float64(sampleRate))),
		release:   1 - math.Exp(-1/(0.250*float64(sampleRate))),
	}
}

// Process compresses an interleaved stereo block in place.
func (c *Compressor) Process(buf []float32) {
	thresholdLin := math.Pow(10, c.Threshold/20)
	for i := 0; i+1 < len(buf); i += Channels {
		level := math.Max(math.Abs(float64(buf[i])), math.Abs(float64(buf[i+1])))
		coef := c.release
		if level > c.env {
			coef = c.attack
		}
		c.env += coef * (level - c.env)
		gain := 1.0
		if c.env > thresholdLin {
			compressed := thresholdLin * math.Pow(c.env/thresholdLin, 1/c.Ratio)
			gain = compressed / c.env
		}
		buf[i] *= float32(gain)
		buf[i+1] *= float32(gain)
	}
}
