package cadenza

import "errors"

// Error kinds of the engine. Failures wrap one of these sentinels so that
// callers can classify with errors.Is while still reading a message naming
// the offending parameter and its acceptable range.
var (
	// ErrDevice covers audio/MIDI hardware failures: permission denied,
	// device not found, output selection failure.
	ErrDevice = errors.New("device error")

	// ErrMIDI covers misuse of the MIDI layer, such as binding a device
	// that was never enumerated or recording without a bound device.
	ErrMIDI = errors.New("midi error")

	// ErrInstrument covers corrupt containers, unsupported versions or
	// formats, and notes outside an instrument's valid range.
	ErrInstrument = errors.New("instrument error")

	// ErrEffect covers unknown effect types.
	ErrEffect = errors.New("effect error")

	// ErrValue covers parameters out of range, absent required parameters,
	// incompatible modification combinations and unsatisfied modification
	// preconditions.
	ErrValue = errors.New("value error")

	// ErrTrack covers operations on unknown track names, where the
	// operation is not defined as a boolean no-op.
	ErrTrack = errors.New("track error")

	// ErrRecording covers double finalization and encoding a clip that was
	// never finalized.
	ErrRecording = errors.New("recording error")
)
