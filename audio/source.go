package audio

import (
	"math"

	"github.com/cadenza-audio/cadenza"
)

// BufferSource plays a PCM buffer, resampling for the buffer's native rate
// and the detune in cents, with optional loop points. It is a single-shot
// object: the voice starts and stops it exactly once.
type BufferSource struct {
	buffer             *cadenza.Buffer
	rate               float64 // source frames per output frame
	pos                float64
	loop               bool
	loopStart, loopEnd float64 // source frames
}

// NewBufferSource wraps a buffer for playback at the given engine rate,
// detuned by the given number of cents.
func NewBufferSource(buffer *cadenza.Buffer, detuneCents float64, sampleRate int) *BufferSource {
	return &BufferSource{
		buffer: buffer,
		rate:   float64(buffer.SampleRate) / float64(sampleRate) * math.Pow(2, detuneCents/1200),
	}
}

// SetLoop enables looping between the given points in seconds of buffer
// time. The source then never exhausts on its own.
func (s *BufferSource) SetLoop(startSeconds, endSeconds float64) {
	s.loop = true
	s.loopStart = startSeconds * float64(s.buffer.SampleRate)
	s.loopEnd = endSeconds * float64(s.buffer.SampleRate)
	if s.loopStart < 0 {
		s.loopStart = 0
	}
	if max := float64(s.buffer.Frames()); s.loopEnd <= s.loopStart || s.loopEnd > max {
		s.loopEnd = max
	}
}

// Next returns the next linearly interpolated sample.
func (s *BufferSource) Next() (float32, bool) {
	if s.loop && s.pos >= s.loopEnd {
		s.pos -= s.loopEnd - s.loopStart
	}
	frames := s.buffer.Frames()
	i := int(s.pos)
	if i >= frames {
		return 0, false
	}
	a := s.buffer.Sample(0, i)
	b := a
	if i+1 < frames {
		b = s.buffer.Sample(0, i+1)
	}
	frac := float32(s.pos - float64(i))
	s.pos += s.rate
	return a + (b-a)*frac, true
}

// Oscillator is the fallback voice source for instruments without sample
// data: a plain sine at the pitch frequency. It never exhausts.
type Oscillator struct {
	phase, inc float64
}

// NewOscillator creates a sine source at the given frequency and engine
// rate.
func NewOscillator(frequency float64, sampleRate int) *Oscillator {
	return &Oscillator{inc: 2 * math.Pi * frequency / float64(sampleRate)}
}

func (o *Oscillator) Next() (float32, bool) {
	v := float32(math.Sin(o.phase))
	o.phase += o.inc
	if o.phase > 2*math.Pi {
		o.phase -= 2 * math.Pi
	}
	return v, true
}

// BufferSliceSource plays a stereo or mono buffer verbatim at the engine
// rate without resampling, used for clip playback of already-decoded
// audio. Stereo buffers are averaged to mono; the voice pans them back
// out.
type BufferSliceSource struct {
	buffer *cadenza.Buffer
	frame  int
}

// NewBufferSliceSource wraps a decoded clip buffer.
func NewBufferSliceSource(buffer *cadenza.Buffer) *BufferSliceSource {
	return &BufferSliceSource{buffer: buffer}
}

func (s *BufferSliceSource) Next() (float32, bool) {
	if s.frame >= s.buffer.Frames() {
		return 0, false
	}
	var v float32
	for c := 0; c < s.buffer.Channels; c++ {
		v += s.buffer.Sample(c, s.frame)
	}
	v /= float32(s.buffer.Channels)
	s.frame++
	return v, true
}
