package audio

// Voice couples a source to its gain automation and its place on the
// frame clock. A stop frame below zero means the voice runs until its
// source exhausts or StopAt is called.
type Voice struct {
	source Source
	gain   *Param
	start  int64
	stop   int64
	done   bool
}

// NewVoice schedules a source between the given frames.
func NewVoice(source Source, gain *Param, startFrame, stopFrame int64) *Voice {
	return &Voice{source: source, gain: gain, start: startFrame, stop: stopFrame}
}

// Gain exposes the voice's gain parameter for ramp scheduling.
func (v *Voice) Gain() *Param { return v.gain }

// StopAt schedules the source stop at the given frame.
func (v *Voice) StopAt(frame int64) { v.stop = frame }

// Done reports whether the voice has finished and can be released.
func (v *Voice) Done() bool { return v.done }

// Mix renders the voice's share of the block starting at the given frame
// into interleaved stereo dst, adding to what is already there.
func (v *Voice) Mix(dst []float32, from int64) {
	if v.done {
		return
	}
	frames := len(dst) / Channels
	for i := 0; i < frames; i++ {
		f := from + int64(i)
		if f < v.start {
			continue
		}
		if v.stop >= 0 && f >= v.stop {
			v.done = true
			return
		}
		s, ok := v.source.Next()
		if !ok {
			v.done = true
			return
		}
		s *= float32(v.gain.Value(FrameSeconds(f)))
		dst[Channels*i] += s
		dst[Channels*i+1] += s
	}
}
