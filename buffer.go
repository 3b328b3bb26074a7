package cadenza

import "fmt"

// Buffer is a decoded PCM buffer: interleaved float32 samples at a fixed
// rate. Instruments hold mono buffers; recorded and rendered output is
// stereo.
type Buffer struct {
	Data       []float32
	Channels   int
	SampleRate int
}

// NewBuffer allocates a zeroed buffer of the given length in frames.
func NewBuffer(channels, frames, sampleRate int) *Buffer {
	return &Buffer{
		Data:       make([]float32, channels*frames),
		Channels:   channels,
		SampleRate: sampleRate,
	}
}

// Frames returns the buffer length in sample frames.
func (b *Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Sample returns the sample of the given channel at the given frame,
// clamping the channel so mono buffers can be read as either side.
func (b *Buffer) Sample(channel, frame int) float32 {
	if channel >= b.Channels {
		channel = b.Channels - 1
	}
	return b.Data[frame*b.Channels+channel]
}

func (b *Buffer) Validate() error {
	if b.Channels < 1 || b.Channels > 2 {
		return fmt.Errorf("%w: buffer must be mono or stereo, got %d channels", ErrValue, b.Channels)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: buffer sample rate must be positive, got %d", ErrValue, b.SampleRate)
	}
	if len(b.Data)%b.Channels != 0 {
		return fmt.Errorf("%w: buffer data length %d is not a multiple of %d channels", ErrValue, len(b.Data), b.Channels)
	}
	return nil
}
