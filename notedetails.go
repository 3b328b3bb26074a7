package cadenza

// NoteDetails is one sub-note of an expanded modification: a pitch, a
// velocity, a span, and where it starts relative to the start of the
// principal note's slot. Slot is set only when the sub-note occupies a slot
// of a different length than it sounds (staccato sounds for half the slot,
// marcato sounds past it).
type NoteDetails struct {
	Note        Note
	Velocity    Velocity
	Duration    Span
	StartOffset float64 // seconds from the slot start
	Slot        float64 // seconds the sub-note occupies; 0 means same as sounded
}

// PlainNote wraps an unmodified note into its trivial detail record.
func PlainNote(n Note, velocity Velocity, duration Duration) NoteDetails {
	return NoteDetails{Note: n, Velocity: velocity, Duration: BeatSpan(duration)}
}

// SlotSeconds returns the length of the time slot the sub-note occupies
// under the given tempo.
func (d NoteDetails) SlotSeconds(t Tempo) float64 {
	if d.Slot != 0 {
		return d.Slot
	}
	return d.Duration.Seconds(t)
}
