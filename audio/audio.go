// Package audio implements the sample-accurate rendering primitives the
// engine is built on: automation parameters keyed to the frame clock,
// voice sources (sample playback with detune and looping, oscillators),
// mixing helpers, the master compressor and the analysis taps. Everything
// renders on a pull model: the engine asks for a block of interleaved
// stereo float32 frames and the whole graph advances exactly that far.
package audio

const (
	// SampleRate is the fixed engine rate.
	SampleRate = 44100
	// Channels is the engine output channel count.
	Channels = 2
)

type (
	// Source generates mono samples at the engine rate, one at a time.
	// Next returns false once the source is exhausted; sources with no
	// natural end (oscillators, looping samples) never return false.
	Source interface {
		Next() (float32, bool)
	}

	// SampleSource produces interleaved stereo float32 frames on demand.
	// The engine and the offline renderer both implement it; the realtime
	// adapter pulls from it.
	SampleSource interface {
		Process(dst []float32)
	}
)

// FrameSeconds converts a frame count on the engine clock to seconds.
func FrameSeconds(frame int64) float64 {
	return float64(frame) / SampleRate
}

// SecondsFrames converts seconds to a frame count, rounding down.
func SecondsFrames(seconds float64) int64 {
	return int64(seconds * SampleRate)
}
