// Package midi implements the MIDI message codec and the device stream
// abstraction the engine consumes: standard 3-byte messages, pitch bend
// math, and multi-subscriber event dispatch with a virtual device for
// tests and clip round-trips. Hardware transport lives in midi/gomidi.
package midi

import (
	"fmt"
	"math"

	"github.com/cadenza-audio/cadenza"
)

// Command is the high nibble of a message's status byte.
type Command byte

const (
	NoteOff         Command = 0x80
	NoteOn          Command = 0x90
	Aftertouch      Command = 0xA0
	ControlChange   Command = 0xB0
	ProgramChange   Command = 0xC0
	ChannelPressure Command = 0xD0
	PitchBend       Command = 0xE0
)

// Message is one standard 3-byte MIDI message.
type Message [3]byte

// NewNoteOn builds a note-on with the velocity scaled to the 7-bit wire
// range.
func NewNoteOn(channel byte, pitch cadenza.Note, velocity cadenza.Velocity) Message {
	return Message{byte(NoteOn) | channel&0x0F, byte(pitch) & 0x7F, velocityByte(velocity)}
}

// NewNoteOff builds a note-off.
func NewNoteOff(channel byte, pitch cadenza.Note) Message {
	return Message{byte(NoteOff) | channel&0x0F, byte(pitch) & 0x7F, 0}
}

func velocityByte(v cadenza.Velocity) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(math.Round(v * 127))
}

func (m Message) Command() Command { return Command(m[0] & 0xF0) }
func (m Message) Channel() byte    { return m[0] & 0x0F }

// Pitch returns the note number of a note or aftertouch message.
func (m Message) Pitch() cadenza.Note { return cadenza.Note(m[1]) }

// Velocity returns the third byte scaled to [0, 1].
func (m Message) Velocity() cadenza.Velocity { return float64(m[2]) / 127 }

// IsNoteOn reports a sounding note-on; a note-on with zero velocity is a
// note-off by convention and reports false here.
func (m Message) IsNoteOn() bool {
	return m.Command() == NoteOn && m[2] != 0
}

// IsNoteOff reports a note release, either form.
func (m Message) IsNoteOff() bool {
	return m.Command() == NoteOff || (m.Command() == NoteOn && m[2] == 0)
}

// BendValue returns the 14-bit pitch bend value, 8192 = center.
func (m Message) BendValue() int {
	return int(m[1])&0x7F | int(m[2])&0x7F<<7
}

func (m Message) String() string {
	switch {
	case m.IsNoteOn():
		return fmt.Sprintf("NoteOn(%v, %.2f)", m.Pitch(), m.Velocity())
	case m.IsNoteOff():
		return fmt.Sprintf("NoteOff(%v)", m.Pitch())
	default:
		return fmt.Sprintf("% X", m[:])
	}
}

// BendRatio converts a 14-bit pitch bend value to a playback-rate
// multiplier, with the full deflection spanning maxSemitones either way.
func BendRatio(value int, maxSemitones float64) float64 {
	semitones := float64(value-8192) / 8192 * maxSemitones
	return math.Pow(2, semitones/12)
}

// Event is a message stamped with its arrival time on the engine clock.
type Event struct {
	Time    float64
	Message Message
}
