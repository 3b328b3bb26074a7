package effect

import (
	"math"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
)

const maxDelaySeconds = 5

// delayLine is a fixed-capacity circular buffer for one channel.
type delayLine struct {
	buf []float32
	pos int
}

func newDelayLine(seconds float64) *delayLine {
	n := int(seconds * audio.SampleRate)
	if n < 1 {
		n = 1
	}
	return &delayLine{buf: make([]float32, n)}
}

// read taps the line the given number of frames back, with linear
// interpolation for fractional delays.
func (d *delayLine) read(frames float64) float32 {
	if frames < 0 {
		frames = 0
	}
	if max := float64(len(d.buf) - 1); frames > max {
		frames = max
	}
	i := int(frames)
	frac := float32(frames - float64(i))
	a := d.buf[(d.pos-i+len(d.buf))%len(d.buf)]
	b := d.buf[(d.pos-i-1+len(d.buf))%len(d.buf)]
	return a + (b-a)*frac
}

func (d *delayLine) write(x float32) {
	d.pos = (d.pos + 1) % len(d.buf)
	d.buf[d.pos] = x
}

// delay is a feedback delay with a wet/dry mix; Echo shares the
// implementation under its own registry entry.
type delay struct {
	base
	lines [2]*delayLine
}

func newDelay(name string, typ cadenza.EffectType) *delay {
	e := &delay{base: newBase(name, typ)}
	e.lines[0] = newDelayLine(maxDelaySeconds)
	e.lines[1] = newDelayLine(maxDelaySeconds)
	return e
}

func (e *delay) Process(buf []float32, from int64) {
	t0 := audio.FrameSeconds(from)
	if e.transparentAt(t0) {
		return
	}
	frames := e.value("delayTime", t0) * audio.SampleRate
	feedback := float32(e.value("feedback", t0))
	mix := float32(e.value("mix", t0))
	for i := 0; i+1 < len(buf); i += audio.Channels {
		for c := 0; c < audio.Channels; c++ {
			x := buf[i+c]
			wet := e.lines[c].read(frames)
			e.lines[c].write(x + wet*feedback)
			buf[i+c] = x*(1-mix) + wet*mix
		}
	}
}

// Schroeder reverberator tunings, in frames at the engine rate.
var (
	reverbCombTunings    = [4]int{1557, 1617, 1491, 1422}
	reverbAllpassTunings = [2]int{225, 556}
)

// reverb is a small Schroeder reverberator: four parallel feedback combs
// into two series allpasses, per channel. The decay parameter sets the
// -60 dB time of the comb feedback.
type reverb struct {
	base
	combs     [2][4]*delayLine
	allpasses [2][2]*delayLine
}

func newReverb(name string) *reverb {
	e := &reverb{base: newBase(name, cadenza.EffectReverb)}
	for c := 0; c < 2; c++ {
		for i, n := range reverbCombTunings {
			e.combs[c][i] = &delayLine{buf: make([]float32, n+c*23)}
		}
		for i, n := range reverbAllpassTunings {
			e.allpasses[c][i] = &delayLine{buf: make([]float32, n+c*23)}
		}
	}
	return e
}

func (e *reverb) Process(buf []float32, from int64) {
	t0 := audio.FrameSeconds(from)
	if e.transparentAt(t0) {
		return
	}
	decay := e.value("decay", t0)
	mix := float32(e.value("mix", t0))
	for i := 0; i+1 < len(buf); i += audio.Channels {
		for c := 0; c < audio.Channels; c++ {
			x := buf[i+c]
			var wet float32
			for _, comb := range e.combs[c] {
				delaySeconds := float64(len(comb.buf)) / audio.SampleRate
				g := float32(math.Pow(10, -3*delaySeconds/decay))
				tap := comb.read(float64(len(comb.buf) - 1))
				comb.write(x + tap*g)
				wet += tap
			}
			wet /= float32(len(e.combs[c]))
			for _, ap := range e.allpasses[c] {
				tap := ap.read(float64(len(ap.buf) - 1))
				ap.write(wet + tap*0.5)
				wet = tap - 0.5*wet
			}
			buf[i+c] = x*(1-mix) + wet*mix
		}
	}
}

// modDelay is the modulated-delay family: an LFO sweeps a short tap that
// is blended with the dry path. Chorus, vibrato and flanger differ only
// in their schema defaults.
type modDelay struct {
	base
	lines [2]*delayLine
}

func newModDelay(name string, typ cadenza.EffectType) *modDelay {
	e := &modDelay{base: newBase(name, typ)}
	e.lines[0] = newDelayLine(0.1)
	e.lines[1] = newDelayLine(0.1)
	return e
}

func (e *modDelay) Process(buf []float32, from int64) {
	t0 := audio.FrameSeconds(from)
	depth := e.value("depth", t0)
	if depth == 0 {
		return
	}
	rate := e.value("rate", t0)
	mix := float32(e.value("mix", t0))
	for i := 0; i+1 < len(buf); i += audio.Channels {
		t := audio.FrameSeconds(from + int64(i/audio.Channels))
		sweep := depth * (0.5 + 0.5*math.Sin(2*math.Pi*rate*t))
		frames := (depth + sweep) * audio.SampleRate
		for c := 0; c < audio.Channels; c++ {
			x := buf[i+c]
			wet := e.lines[c].read(frames)
			e.lines[c].write(x)
			buf[i+c] = x*(1-mix) + wet*mix
		}
	}
}
