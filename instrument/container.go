// Package instrument implements the pitched-sample instrument model: the
// WAIN binary container, the 132-entry note table with nearest-neighbor
// detuning, the oscillator fallback and the instrument library manifest.
package instrument

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cadenza-audio/cadenza"
)

// Payload format codes of the container.
const (
	FormatPCM      uint16 = 0 // gzipped float32 mono
	FormatWebmOpus uint16 = 1
)

const (
	containerMagic = "WAIN"
	metadataLength = 61
	maxNameBytes   = 32
	entrySize      = 10
)

// CurrentVersion is the container version this package reads and writes.
var CurrentVersion = Version{0, 1, 0}

type (
	// Version is the container format version triple.
	Version struct {
		Major, Minor, Patch byte
	}

	// Metadata is the fixed-size header of a container.
	Metadata struct {
		Name                string
		MinValidNote        cadenza.Note
		MaxValidNote        cadenza.Note
		SustainedNotesDecay bool
		SlideNotesPossible  bool
		SampleRate          int
		BitRate             int
		Format              uint16
	}

	// Entry is one sample-bearing note: its MIDI pitch and its encoded
	// payload bytes.
	Entry struct {
		Midi cadenza.Note
		Data []byte
	}

	// Container is a parsed instrument file.
	Container struct {
		Version  Version
		Metadata Metadata
		Entries  []Entry
	}
)

// Emit serializes the container. All multi-byte integers are
// little-endian; payloads are laid out in entry order.
func (c *Container) Emit() ([]byte, error) {
	name := []byte(c.Metadata.Name)
	if len(name) > maxNameBytes {
		return nil, fmt.Errorf("%w: instrument name %q exceeds %d bytes",
			cadenza.ErrInstrument, c.Metadata.Name, maxNameBytes)
	}
	if len(c.Entries) > 255 {
		return nil, fmt.Errorf("%w: %d note entries exceed the 1-byte count",
			cadenza.ErrInstrument, len(c.Entries))
	}
	dataLength := 0
	for _, e := range c.Entries {
		dataLength += len(e.Data)
	}
	buf := new(bytes.Buffer)
	buf.WriteString(containerMagic)
	buf.Write([]byte{c.Version.Major, c.Version.Minor, c.Version.Patch})
	binary.Write(buf, binary.LittleEndian, uint16(metadataLength))
	binary.Write(buf, binary.LittleEndian, uint32(dataLength))
	var padded [maxNameBytes + 1]byte
	copy(padded[:], name)
	buf.Write(padded[:])
	buf.WriteByte(byte(len(c.Entries)))
	buf.WriteByte(byte(c.Metadata.MinValidNote))
	buf.WriteByte(byte(c.Metadata.MaxValidNote))
	buf.WriteByte(boolByte(c.Metadata.SustainedNotesDecay))
	buf.WriteByte(boolByte(c.Metadata.SlideNotesPossible))
	binary.Write(buf, binary.LittleEndian, uint32(c.Metadata.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(c.Metadata.BitRate))
	binary.Write(buf, binary.LittleEndian, c.Metadata.Format)
	offset := 0
	for _, e := range c.Entries {
		binary.Write(buf, binary.LittleEndian, uint16(e.Midi))
		binary.Write(buf, binary.LittleEndian, uint32(offset))
		binary.Write(buf, binary.LittleEndian, uint32(len(e.Data)))
		offset += len(e.Data)
	}
	for _, e := range c.Entries {
		buf.Write(e.Data)
	}
	return buf.Bytes(), nil
}

// Parse reads and validates a container. Payload offsets are relative to
// the start of the payload area, which follows the note entries.
func Parse(data []byte) (*Container, error) {
	if len(data) < metadataLength {
		return nil, fmt.Errorf("%w: container truncated at %d bytes", cadenza.ErrInstrument, len(data))
	}
	if string(data[0:4]) != containerMagic {
		return nil, fmt.Errorf("%w: bad magic %q", cadenza.ErrInstrument, data[0:4])
	}
	version := Version{data[4], data[5], data[6]}
	if version != CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported container version %d.%d.%d",
			cadenza.ErrInstrument, version.Major, version.Minor, version.Patch)
	}
	if got := binary.LittleEndian.Uint16(data[7:]); got != metadataLength {
		return nil, fmt.Errorf("%w: metadata length %d, expected %d", cadenza.ErrInstrument, got, metadataLength)
	}
	dataLength := int(binary.LittleEndian.Uint32(data[9:]))
	name := string(bytes.TrimRight(data[13:13+maxNameBytes+1], "\x00"))
	numNotes := int(data[46])
	c := &Container{
		Version: version,
		Metadata: Metadata{
			Name:                name,
			MinValidNote:        cadenza.Note(data[47]),
			MaxValidNote:        cadenza.Note(data[48]),
			SustainedNotesDecay: data[49] != 0,
			SlideNotesPossible:  data[50] != 0,
			SampleRate:          int(binary.LittleEndian.Uint32(data[51:])),
			BitRate:             int(binary.LittleEndian.Uint32(data[55:])),
			Format:              binary.LittleEndian.Uint16(data[59:]),
		},
	}
	if c.Metadata.Format != FormatPCM && c.Metadata.Format != FormatWebmOpus {
		return nil, fmt.Errorf("%w: unknown payload format %d", cadenza.ErrInstrument, c.Metadata.Format)
	}
	payloadStart := metadataLength + numNotes*entrySize
	if len(data) < payloadStart+dataLength {
		return nil, fmt.Errorf("%w: container truncated: %d bytes, %d declared",
			cadenza.ErrInstrument, len(data), payloadStart+dataLength)
	}
	payload := data[payloadStart : payloadStart+dataLength]
	for i := 0; i < numNotes; i++ {
		at := metadataLength + i*entrySize
		offset := int(binary.LittleEndian.Uint32(data[at+2:]))
		length := int(binary.LittleEndian.Uint32(data[at+6:]))
		if offset+length > len(payload) {
			return nil, fmt.Errorf("%w: note entry %d payload [%d, %d) outside the data area",
				cadenza.ErrInstrument, i, offset, offset+length)
		}
		c.Entries = append(c.Entries, Entry{
			Midi: cadenza.Note(binary.LittleEndian.Uint16(data[at:])),
			Data: append([]byte(nil), payload[offset:offset+length]...),
		})
	}
	return c, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
