// Package codec implements the audio codec collaborators: WAV (RIFF PCM
// 16-bit) encode and decode, the gzipped float32 payload format of
// instrument containers, and the encoder registry keyed by encoding
// type. The engine core never touches encoded bytes itself.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cadenza-audio/cadenza"
)

// WAVEncoder encodes a buffer as a RIFF/WAVE file with 16-bit signed PCM
// samples, the channel count and sample rate taken from the buffer.
type WAVEncoder struct{}

func (WAVEncoder) Encode(buffer *cadenza.Buffer) ([]byte, error) {
	if err := buffer.Validate(); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	wavHeader(buf, len(buffer.Data), buffer.Channels, buffer.SampleRate)
	int16data := make([]int16, len(buffer.Data))
	for i, v := range buffer.Data {
		int16data[i] = int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
	}
	if err := binary.Write(buf, binary.LittleEndian, int16data); err != nil {
		return nil, fmt.Errorf("could not write wav samples: %w", err)
	}
	return buf.Bytes(), nil
}

// wavHeader writes the standard 44-byte PCM header. Refer to:
// http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
func wavHeader(buf *bytes.Buffer, samples, channels, sampleRate int) {
	const bytesPerSample = 2
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(36+bytesPerSample*samples))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(bytesPerSample*samples))
}

// WAVDecoder decodes 16-bit PCM RIFF/WAVE files. Compressed or float
// WAVE variants are rejected.
type WAVDecoder struct{}

func (WAVDecoder) Decode(data []byte) (*cadenza.Buffer, error) {
	r := bytes.NewReader(data)
	var riff [12]byte
	if _, err := r.Read(riff[:]); err != nil || string(riff[:4]) != "RIFF" || string(riff[8:]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE file", cadenza.ErrValue)
	}
	var channels, sampleRate int
	for {
		var header [8]byte
		if _, err := r.Read(header[:]); err != nil {
			return nil, fmt.Errorf("%w: no data chunk found", cadenza.ErrValue)
		}
		size := int(binary.LittleEndian.Uint32(header[4:]))
		switch string(header[:4]) {
		case "fmt ":
			chunk := make([]byte, size)
			if _, err := r.Read(chunk); err != nil || size < 16 {
				return nil, fmt.Errorf("%w: truncated fmt chunk", cadenza.ErrValue)
			}
			if format := binary.LittleEndian.Uint16(chunk[0:]); format != 1 {
				return nil, fmt.Errorf("%w: wav format %d is not 16-bit PCM", cadenza.ErrValue, format)
			}
			if bits := binary.LittleEndian.Uint16(chunk[14:]); bits != 16 {
				return nil, fmt.Errorf("%w: wav bit depth %d is not 16", cadenza.ErrValue, bits)
			}
			channels = int(binary.LittleEndian.Uint16(chunk[2:]))
			sampleRate = int(binary.LittleEndian.Uint32(chunk[4:]))
		case "data":
			if channels == 0 {
				return nil, fmt.Errorf("%w: data chunk precedes fmt chunk", cadenza.ErrValue)
			}
			int16data := make([]int16, size/2)
			if err := binary.Read(r, binary.LittleEndian, int16data); err != nil {
				return nil, fmt.Errorf("%w: truncated data chunk", cadenza.ErrValue)
			}
			buffer := &cadenza.Buffer{
				Data:       make([]float32, len(int16data)),
				Channels:   channels,
				SampleRate: sampleRate,
			}
			for i, v := range int16data {
				buffer.Data[i] = float32(v) / math.MaxInt16
			}
			return buffer, nil
		default:
			if _, err := r.Seek(int64(size), 1); err != nil {
				return nil, fmt.Errorf("%w: truncated chunk %q", cadenza.ErrValue, header[:4])
			}
		}
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
