package mods

import (
	"fmt"
	"math"

	"github.com/cadenza-audio/cadenza"
)

type (
	// ElementNote is one pitch of a sequence element with its own duration
	// and modifications.
	ElementNote struct {
		Note     cadenza.Note
		Duration cadenza.Duration
		Velocity cadenza.Velocity // 0 inherits the sequence default
		Mods     []Modification
	}

	// Element is one step of a sequence: a single note, or a chord whose
	// pitches share the start time. The element's slot is the longest slot
	// among its pitches.
	Element struct {
		Notes []ElementNote
	}

	// Expansion is the result of expanding one element: its sub-notes with
	// offsets relative to the sequence start, and the slot it advanced.
	Expansion struct {
		Notes []cadenza.NoteDetails
		Slot  float64
	}
)

// SingleNote builds a one-pitch element.
func SingleNote(n cadenza.Note, d cadenza.Duration, mods ...Modification) Element {
	return Element{Notes: []ElementNote{{Note: n, Duration: d, Mods: mods}}}
}

// slur, tie and crescendo act on relationships between successive sequence
// notes; on a single note they are the identity.

type slur struct{}

func (slur) Type() cadenza.ModificationType { return cadenza.ModSlur }
func (slur) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	return []cadenza.NoteDetails{n}, nil
}

type tie struct{}

func (tie) Type() cadenza.ModificationType { return cadenza.ModTie }
func (tie) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	return []cadenza.NoteDetails{n}, nil
}

type crescendo struct {
	ending float64 // target dynamic degree
	rising bool
}

func (c crescendo) Type() cadenza.ModificationType {
	if c.rising {
		return cadenza.ModCrescendo
	}
	return cadenza.ModDecrescendo
}

func (crescendo) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	return []cadenza.NoteDetails{n}, nil
}

// ExpandSequence expands every element of a sequence through Compose and
// applies the sequence-context modifications across the result. Sub-note
// start offsets are relative to the sequence start and are non-decreasing
// element by element. It returns the expansions and the total slot time of
// the sequence.
func ExpandSequence(t cadenza.Tempo, k cadenza.KeySignature, seq []Element, defaultVelocity cadenza.Velocity, seqMods []Modification) ([]Expansion, float64, error) {
	if err := CheckCompatible(seqMods); err != nil {
		return nil, 0, err
	}
	for _, m := range seqMods {
		if !CanModifySequence(m.Type()) {
			return nil, 0, fmt.Errorf("%w: modification %d cannot be applied to a sequence", cadenza.ErrValue, m.Type())
		}
	}
	expansions := make([]Expansion, 0, len(seq))
	carry := Params{}
	at := 0.0
	for i, elem := range seq {
		var exp Expansion
		for _, en := range elem.Notes {
			velocity := en.Velocity
			if velocity == 0 {
				velocity = defaultVelocity
			}
			note := cadenza.PlainNote(en.Note, velocity, en.Duration)
			mods := make([]Modification, 0, len(en.Mods)+len(seqMods))
			mods = append(mods, en.Mods...)
			for _, sm := range seqMods {
				if sequenceOnly(sm.Type()) {
					continue
				}
				inferred, err := reifyForElement(sm, seq, i, carry)
				if err != nil {
					return nil, 0, err
				}
				if inferred == nil {
					continue // nothing to infer at the sequence tail
				}
				mods = append(mods, inferred)
			}
			sub, err := Compose(t, k, note, mods)
			if err != nil {
				return nil, 0, err
			}
			slot := 0.0
			for _, d := range sub {
				if end := d.StartOffset + d.SlotSeconds(t); end > slot {
					slot = end
				}
			}
			for j := range sub {
				sub[j].StartOffset += at
			}
			exp.Notes = append(exp.Notes, sub...)
			if slot > exp.Slot {
				exp.Slot = slot
			}
		}
		at += exp.Slot
		expansions = append(expansions, exp)
	}
	for _, sm := range seqMods {
		switch m := sm.(type) {
		case crescendo:
			applyDynamicRamp(expansions, m)
		case slur:
			applySlur(t, expansions)
		case tie:
			expansions = applyTie(t, expansions)
		}
	}
	return expansions, at, nil
}

// reifyForElement rebuilds a sequence modification with the parameters it
// infers from its position; ornaments that need a following note return nil
// at the tail.
func reifyForElement(m Modification, seq []Element, index int, carry Params) (Modification, error) {
	switch m.Type() {
	case cadenza.ModPortamento, cadenza.ModGlissando:
		inferred := InferParameters(m.Type(), seq, index, carry)
		if _, ok := inferred["nextNoteValue"]; !ok {
			return nil, nil
		}
		next := cadenza.Note(inferred["nextNoteValue"])
		if next <= seq[index].Notes[0].Note {
			return nil, nil // descending steps connect without a ladder
		}
		return New(m.Type(), inferred)
	}
	return m, nil
}

// applyDynamicRamp interpolates velocities linearly from the first
// element's velocity to the ending dynamic across the element boundaries.
func applyDynamicRamp(expansions []Expansion, c crescendo) {
	if len(expansions) == 0 {
		return
	}
	start := 0.0
	for _, d := range expansions[0].Notes {
		if d.Velocity > start {
			start = d.Velocity
		}
	}
	end := cadenza.DynamicVelocity(c.ending)
	steps := len(expansions) - 1
	for i := range expansions {
		target := end
		if steps > 0 {
			target = start + (end-start)*float64(i)/float64(steps)
		}
		for j := range expansions[i].Notes {
			if expansions[i].Notes[j].Note == cadenza.REST {
				continue
			}
			expansions[i].Notes[j].Velocity = target
		}
	}
}

// applySlur closes the articulation gaps: every sub-note whose sounded
// length is shorter than its slot is stretched to fill it, connecting each
// note to the next.
func applySlur(t cadenza.Tempo, expansions []Expansion) {
	for i := range expansions {
		for j := range expansions[i].Notes {
			d := &expansions[i].Notes[j]
			if slot := d.SlotSeconds(t); d.Duration.Seconds(t) < slot {
				d.Duration = cadenza.SecondsSpan(slot)
				d.Slot = 0
			}
		}
	}
}

// applyTie merges an element into its predecessor when both are a single
// sub-note of the same pitch, summing the durations.
func applyTie(t cadenza.Tempo, expansions []Expansion) []Expansion {
	out := expansions[:0]
	for _, exp := range expansions {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if len(prev.Notes) == 1 && len(exp.Notes) == 1 &&
				prev.Notes[0].Note == exp.Notes[0].Note && prev.Notes[0].Note != cadenza.REST {
				merged := prev.Notes[0].Duration.Seconds(t) + exp.Notes[0].Duration.Seconds(t)
				prev.Notes[0].Duration = cadenza.SecondsSpan(merged)
				prev.Notes[0].Slot = 0
				prev.Slot += exp.Slot
				continue
			}
		}
		out = append(out, exp)
	}
	return out
}

// SequenceSeconds is the cumulative slot time of a sequence of elements
// without expanding them, used for scheduling look-ahead.
func SequenceSeconds(t cadenza.Tempo, seq []Element) float64 {
	total := 0.0
	for _, elem := range seq {
		longest := 0.0
		for _, en := range elem.Notes {
			longest = math.Max(longest, t.NoteSeconds(en.Duration))
		}
		total += longest
	}
	return total
}
