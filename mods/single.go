package mods

import (
	"fmt"

	"github.com/cadenza-audio/cadenza"
)

// accent doubles the velocity; the track gain finally clips whatever
// exceeds full scale. Covers both Accent and Sforzando.
type accent struct {
	typ cadenza.ModificationType
}

func (a accent) Type() cadenza.ModificationType { return a.typ }

func (a accent) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note != cadenza.REST {
		n.Velocity *= 2
	}
	return []cadenza.NoteDetails{n}, nil
}

// marcato doubles the velocity and sounds the note for twice its printed
// duration while the slot stays at the printed duration; the tail rings
// into the following note's time.
type marcato struct{}

func (marcato) Type() cadenza.ModificationType { return cadenza.ModMarcato }

func (marcato) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note == cadenza.REST {
		return []cadenza.NoteDetails{n}, nil
	}
	slot := n.SlotSeconds(t)
	n.Velocity *= 2
	n.Duration = cadenza.SecondsSpan(2 * n.Duration.Seconds(t))
	n.Slot = slot
	return []cadenza.NoteDetails{n}, nil
}

// staccato sounds the note for a fraction of the printed duration; the slot
// still occupies the full printed duration.
type staccato struct {
	divisor float64
	issimo  bool
}

func (s staccato) Type() cadenza.ModificationType {
	if s.issimo {
		return cadenza.ModStaccatissimo
	}
	return cadenza.ModStaccato
}

func (s staccato) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	slot := n.SlotSeconds(t)
	n.Duration = cadenza.SecondsSpan(n.Duration.Seconds(t) / s.divisor)
	n.Slot = slot
	return []cadenza.NoteDetails{n}, nil
}

// tenuto holds the full printed duration; the expansion is the identity.
type tenuto struct{}

func (tenuto) Type() cadenza.ModificationType { return cadenza.ModTenuto }

func (tenuto) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	return []cadenza.NoteDetails{n}, nil
}

// natural removes the key signature's accidental from the pitch.
type natural struct{}

func (natural) Type() cadenza.ModificationType { return cadenza.ModNatural }

func (natural) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note != cadenza.REST {
		n.Note += cadenza.Note(k.NaturalShift(n.Note))
	}
	return []cadenza.NoteDetails{n}, nil
}

// octaveShift moves the pitch an octave up or down.
type octaveShift struct {
	up bool
}

func (o octaveShift) Type() cadenza.ModificationType {
	if o.up {
		return cadenza.ModOctaveShiftUp
	}
	return cadenza.ModOctaveShiftDown
}

func (o octaveShift) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note == cadenza.REST {
		return []cadenza.NoteDetails{n}, nil
	}
	shifted := n.Note + 12
	if !o.up {
		shifted = n.Note - 12
	}
	if !shifted.Valid() || shifted == cadenza.REST {
		return nil, fmt.Errorf("%w: octave shift moves note %v outside the playable range", cadenza.ErrValue, n.Note)
	}
	n.Note = shifted
	return []cadenza.NoteDetails{n}, nil
}

// setVelocity overwrites the velocity with the supplied value.
type setVelocity struct {
	value float64
}

func (setVelocity) Type() cadenza.ModificationType { return cadenza.ModVelocity }

func (s setVelocity) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note != cadenza.REST {
		n.Velocity = s.value
	}
	return []cadenza.NoteDetails{n}, nil
}

// dynamic sets the velocity from the fixed loudness table.
type dynamic struct {
	typ    cadenza.ModificationType
	degree float64
}

func (d dynamic) Type() cadenza.ModificationType { return d.typ }

func (d dynamic) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note != cadenza.REST {
		n.Velocity = cadenza.DynamicVelocity(d.degree)
	}
	return []cadenza.NoteDetails{n}, nil
}

// fermata extends both the sounded duration and the slot, pausing the
// pulse: following notes move later, unlike marcato.
type fermata struct {
	extension float64
}

func (fermata) Type() cadenza.ModificationType { return cadenza.ModFermata }

func (f fermata) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	slot := n.SlotSeconds(t)
	n.Duration = cadenza.SecondsSpan(n.Duration.Seconds(t) * f.extension)
	n.Slot = slot * f.extension
	return []cadenza.NoteDetails{n}, nil
}

// tuplet rescales the printed duration so that degree notes occupy the time
// of denom notes of the same nominal value: denom is 2 for triplets and 4
// for the larger tuplets. This family deliberately changes the slot length.
type tuplet struct {
	typ    cadenza.ModificationType
	degree int
}

func (u tuplet) Type() cadenza.ModificationType { return u.typ }

func (u tuplet) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if u.degree < 2 {
		return nil, fmt.Errorf("%w: tuplet degree must be at least 2, got %d", cadenza.ErrValue, u.degree)
	}
	denom := 4.0
	if u.degree == 3 {
		denom = 2
	}
	if n.Duration.Absolute() {
		n.Duration = cadenza.SecondsSpan(n.Duration.Seconds(t) * denom / float64(u.degree))
	} else {
		n.Duration = cadenza.BeatSpan(n.Duration.Factor() * cadenza.Duration(float64(u.degree)/denom))
	}
	if n.Slot != 0 {
		n.Slot = n.Slot * denom / float64(u.degree)
	}
	return []cadenza.NoteDetails{n}, nil
}
