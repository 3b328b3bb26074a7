package mods

import (
	"fmt"
	"math"

	"github.com/cadenza-audio/cadenza"
)

// timeEpsilon absorbs float drift when deciding whether a remainder
// sub-note is worth emitting.
const timeEpsilon = 1e-9

// Major-scale neighbor steps per pitch class: the distance to the next
// scale degree above, and to the next below, when reading the class against
// a C major layout. The key signature then re-spells the neighbor.
var (
	majorStepUp   = [12]int{2, 1, 2, 1, 1, 2, 1, 2, 1, 2, 1, 1}
	majorStepDown = [12]int{1, 1, 2, 1, 2, 1, 1, 2, 1, 2, 1, 2}
)

// neighborNote picks the auxiliary pitch of a trill or mordent: an explicit
// semitone offset when supplied, otherwise the major-scale step re-spelled
// into the key.
func neighborNote(n cadenza.Note, k cadenza.KeySignature, upper bool, offset int) (cadenza.Note, error) {
	var neighbor cadenza.Note
	if offset != 0 {
		neighbor = n + cadenza.Note(offset)
	} else {
		pc := int(n) % 12
		if upper {
			neighbor = n + cadenza.Note(majorStepUp[pc])
		} else {
			neighbor = n - cadenza.Note(majorStepDown[pc])
		}
		neighbor = k.InKey(neighbor)
	}
	if !neighbor.Valid() || neighbor == cadenza.REST {
		return 0, fmt.Errorf("%w: ornament neighbor of %v falls outside the playable range", cadenza.ErrValue, n)
	}
	return neighbor, nil
}

// trill alternates the principal and its neighbor at the rate of a
// thirty-second note at the current tempo, padding any non-integer
// remainder with a final shorter sub-note.
type trill struct {
	upper  bool
	offset int
}

func (r trill) Type() cadenza.ModificationType {
	if r.upper {
		return cadenza.ModTrillUpper
	}
	return cadenza.ModTrillLower
}

func (r trill) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note == cadenza.REST {
		return []cadenza.NoteDetails{n}, nil
	}
	neighbor, err := neighborNote(n.Note, k, r.upper, r.offset)
	if err != nil {
		return nil, err
	}
	total := n.Duration.Seconds(t)
	step := t.NoteSeconds(cadenza.ThirtySecond)
	count := int(math.Floor(total/step + timeEpsilon))
	out := make([]cadenza.NoteDetails, 0, count+1)
	at := 0.0
	for i := 0; i < count; i++ {
		pitch := n.Note
		if i%2 == 1 {
			pitch = neighbor
		}
		velocity := n.Velocity
		if i > 0 {
			velocity *= 0.75
		}
		out = append(out, cadenza.NoteDetails{
			Note:        pitch,
			Velocity:    velocity,
			Duration:    cadenza.SecondsSpan(step),
			StartOffset: n.StartOffset + at,
		})
		at += step
	}
	if rem := total - at; rem > timeEpsilon {
		pitch := n.Note
		if count%2 == 1 {
			pitch = neighbor
		}
		velocity := n.Velocity
		if count > 0 {
			velocity *= 0.75
		}
		out = append(out, cadenza.NoteDetails{
			Note:        pitch,
			Velocity:    velocity,
			Duration:    cadenza.SecondsSpan(rem),
			StartOffset: n.StartOffset + at,
		})
	}
	return out, nil
}

// mordent plays principal, neighbor and principal again, the first two at
// thirty-second length and the final holding the remainder of the slot.
type mordent struct {
	upper  bool
	offset int
}

func (m mordent) Type() cadenza.ModificationType {
	if m.upper {
		return cadenza.ModMordentUpper
	}
	return cadenza.ModMordentLower
}

func (m mordent) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note == cadenza.REST {
		return []cadenza.NoteDetails{n}, nil
	}
	neighbor, err := neighborNote(n.Note, k, m.upper, m.offset)
	if err != nil {
		return nil, err
	}
	total := n.Duration.Seconds(t)
	step := t.NoteSeconds(cadenza.ThirtySecond)
	if total < 3*step {
		step = total / 3
	}
	return []cadenza.NoteDetails{
		{Note: n.Note, Velocity: n.Velocity, Duration: cadenza.SecondsSpan(step), StartOffset: n.StartOffset},
		{Note: neighbor, Velocity: n.Velocity * 0.75, Duration: cadenza.SecondsSpan(step), StartOffset: n.StartOffset + step},
		{Note: n.Note, Velocity: n.Velocity, Duration: cadenza.SecondsSpan(total - 2*step), StartOffset: n.StartOffset + 2*step},
	}, nil
}

// turn winds around the principal with both neighbors: principal, one side,
// principal, other side, principal. The first four sub-notes take a fifth
// of the printed duration each when the note is an eighth or longer,
// otherwise thirty-second length; the final principal absorbs the
// remainder. The three middle sub-notes play at 0.75 velocity.
type turn struct {
	upper bool
}

func (u turn) Type() cadenza.ModificationType {
	if u.upper {
		return cadenza.ModTurnUpper
	}
	return cadenza.ModTurnLower
}

func (u turn) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note == cadenza.REST {
		return []cadenza.NoteDetails{n}, nil
	}
	upperNote, err := neighborNote(n.Note, k, true, 0)
	if err != nil {
		return nil, err
	}
	lowerNote, err := neighborNote(n.Note, k, false, 0)
	if err != nil {
		return nil, err
	}
	first, second := upperNote, lowerNote
	if !u.upper {
		first, second = lowerNote, upperNote
	}
	total := n.Duration.Seconds(t)
	step := total / 5
	if !n.Duration.Absolute() && n.Duration.Factor() > cadenza.Eighth {
		step = t.NoteSeconds(cadenza.ThirtySecond)
		if 4*step > total {
			step = total / 5
		}
	}
	pitches := [5]cadenza.Note{n.Note, first, n.Note, second, n.Note}
	out := make([]cadenza.NoteDetails, 0, 5)
	at := 0.0
	for i, pitch := range pitches {
		d := step
		if i == 4 {
			d = total - at
		}
		velocity := n.Velocity
		if i >= 1 && i <= 3 {
			velocity *= 0.75
		}
		out = append(out, cadenza.NoteDetails{
			Note:        pitch,
			Velocity:    velocity,
			Duration:    cadenza.SecondsSpan(d),
			StartOffset: n.StartOffset + at,
		})
		at += d
	}
	return out, nil
}

// grace prefixes the principal with an ornament pitch. The acciaccatura is
// a sixty-fourth-length lead-in stolen from the silence before the slot;
// the appoggiatura consumes the first half of the principal's duration.
type grace struct {
	pitch        cadenza.Note
	appoggiatura bool
}

func (g grace) Type() cadenza.ModificationType {
	if g.appoggiatura {
		return cadenza.ModGraceAppoggiatura
	}
	return cadenza.ModGraceAcciaccatura
}

func (g grace) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note == cadenza.REST {
		return []cadenza.NoteDetails{n}, nil
	}
	if g.appoggiatura {
		total := n.Duration.Seconds(t)
		slot := n.SlotSeconds(t)
		return []cadenza.NoteDetails{
			{Note: g.pitch, Velocity: n.Velocity, Duration: cadenza.SecondsSpan(total / 2), StartOffset: n.StartOffset},
			{Note: n.Note, Velocity: n.Velocity, Duration: cadenza.SecondsSpan(total / 2), StartOffset: n.StartOffset + total/2, Slot: slot - total/2},
		}, nil
	}
	lead := t.NoteSeconds(cadenza.SixtyFourth)
	ornament := cadenza.NoteDetails{
		Note:        g.pitch,
		Velocity:    n.Velocity,
		Duration:    cadenza.SecondsSpan(lead),
		StartOffset: n.StartOffset - lead,
	}
	return []cadenza.NoteDetails{ornament, n}, nil
}

// portamento replaces the note with a semitone ladder climbing to the next
// note, each rung holding an equal share of the printed duration. Also
// backs Glissando.
type portamento struct {
	typ  cadenza.ModificationType
	next cadenza.Note
}

func (p portamento) Type() cadenza.ModificationType { return p.typ }

func (p portamento) Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error) {
	if n.Note == cadenza.REST {
		return []cadenza.NoteDetails{n}, nil
	}
	if p.next <= n.Note {
		return nil, fmt.Errorf("%w: portamento target %v must lie above the current note %v",
			cadenza.ErrValue, p.next, n.Note)
	}
	steps := int(p.next - n.Note)
	total := n.Duration.Seconds(t)
	d := total / float64(steps)
	out := make([]cadenza.NoteDetails, 0, steps)
	for i := 0; i < steps; i++ {
		out = append(out, cadenza.NoteDetails{
			Note:        n.Note + cadenza.Note(i),
			Velocity:    n.Velocity,
			Duration:    cadenza.SecondsSpan(d),
			StartOffset: n.StartOffset + float64(i)*d,
		})
	}
	return out, nil
}
