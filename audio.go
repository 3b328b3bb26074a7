package cadenza

// AudioSink consumes interleaved stereo float32 audio.
type AudioSink interface {
	WriteAudio(buffer []float32) error
	Close() error
}

// AudioContext is a platform audio output that can hand out a sink.
type AudioContext interface {
	Output() AudioSink
	Close() error
}

// Decoder turns encoded audio bytes into a PCM buffer. The engine never
// decodes compressed audio itself; container-aware decoders are
// collaborators registered by format.
type Decoder interface {
	Decode(data []byte) (*Buffer, error)
}

// Encoder turns a PCM buffer into encoded audio bytes.
type Encoder interface {
	Encode(buffer *Buffer) ([]byte, error)
}
