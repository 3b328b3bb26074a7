package codec

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cadenza-audio/cadenza"
)

// EncodePCM compresses a mono float32 buffer into the gzipped payload
// form carried by instrument containers.
func EncodePCM(buffer *cadenza.Buffer) ([]byte, error) {
	if buffer.Channels != 1 {
		return nil, fmt.Errorf("%w: container payloads are mono, got %d channels",
			cadenza.ErrValue, buffer.Channels)
	}
	var out bytes.Buffer
	zw := gzip.NewWriter(&out)
	if err := binary.Write(zw, binary.LittleEndian, buffer.Data); err != nil {
		return nil, fmt.Errorf("could not compress pcm payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("could not compress pcm payload: %w", err)
	}
	return out.Bytes(), nil
}

// PCMDecoder decompresses gzipped float32 mono payloads at the sample
// rate declared by the container metadata.
type PCMDecoder struct {
	SampleRate int
}

func (d PCMDecoder) Decode(data []byte) (*cadenza.Buffer, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not gzip: %v", cadenza.ErrValue, err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt gzip payload: %v", cadenza.ErrValue, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("%w: corrupt gzip payload: %v", cadenza.ErrValue, err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: payload length %d is not a multiple of 4", cadenza.ErrValue, len(raw))
	}
	samples := make([]float32, len(raw)/4)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("%w: corrupt pcm payload: %v", cadenza.ErrValue, err)
	}
	return &cadenza.Buffer{Data: samples, Channels: 1, SampleRate: d.SampleRate}, nil
}
