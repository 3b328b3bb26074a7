// Package mods implements the modification algebra: pure transformations
// that expand one notated note, in the context of a tempo and a key
// signature, into an ordered list of sounded sub-notes. Articulations keep
// the printed time slot while reshaping the sounded length; ornaments
// replace the note with several; dynamics rewrite the velocity. The
// cumulative slot time of the expansion always equals the printed duration,
// except for the tuplet family (which exists to change it) and the
// acciaccatura (whose ornament is stolen from the silence before the slot).
package mods

import (
	"fmt"
	"sort"

	"github.com/cadenza-audio/cadenza"
)

type (
	// Modification is one notated articulation, ornament or dynamic bound
	// to its parameters. Implementations are pure: Apply never mutates the
	// input and returns the ordered sub-note expansion.
	Modification interface {
		Type() cadenza.ModificationType
		Apply(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails) ([]cadenza.NoteDetails, error)
	}

	// Params carries the numeric parameters a modification is constructed
	// from. Pitch-valued parameters hold the note number.
	Params map[string]float64
)

// stage orders composition: pitch shifters first, then velocity writers,
// then duration shapers, then the expanding ornaments. Sequence-context
// modifications (slur, tie, crescendo) never enter Compose; they are
// applied across an expanded sequence.
func stage(m cadenza.ModificationType) int {
	switch m {
	case cadenza.ModNatural, cadenza.ModOctaveShiftUp, cadenza.ModOctaveShiftDown:
		return 0
	case cadenza.ModAccent, cadenza.ModSforzando, cadenza.ModVelocity,
		cadenza.ModPianissississimo, cadenza.ModPianississimo, cadenza.ModPianissimo,
		cadenza.ModPiano, cadenza.ModMezzoPiano, cadenza.ModMezzoForte,
		cadenza.ModForte, cadenza.ModFortissimo, cadenza.ModFortississimo:
		return 1
	case cadenza.ModTenuto, cadenza.ModMarcato, cadenza.ModStaccato,
		cadenza.ModStaccatissimo, cadenza.ModFermata,
		cadenza.ModTuplet, cadenza.ModTriplet, cadenza.ModQuintuplet,
		cadenza.ModSextuplet, cadenza.ModSeptuplet:
		return 2
	default:
		return 3
	}
}

// Compose validates compatibility, orders the modifications into the fixed
// composition order and flat-maps them over the note. The result is the
// ordered sub-note list the scheduler treats as atomic notes.
func Compose(t cadenza.Tempo, k cadenza.KeySignature, n cadenza.NoteDetails, mods []Modification) ([]cadenza.NoteDetails, error) {
	if err := CheckCompatible(mods); err != nil {
		return nil, err
	}
	ordered := make([]Modification, len(mods))
	copy(ordered, mods)
	sort.SliceStable(ordered, func(i, j int) bool {
		return stage(ordered[i].Type()) < stage(ordered[j].Type())
	})
	notes := []cadenza.NoteDetails{n}
	for _, m := range ordered {
		next := make([]cadenza.NoteDetails, 0, len(notes))
		for _, cur := range notes {
			expanded, err := m.Apply(t, k, cur)
			if err != nil {
				return nil, err
			}
			next = append(next, expanded...)
		}
		notes = next
	}
	return notes, nil
}

// New constructs a modification of the given type, validating its
// parameters against the schema.
func New(typ cadenza.ModificationType, params Params) (Modification, error) {
	if params == nil {
		params = Params{}
	}
	if err := validateParams(typ, params, false); err != nil {
		return nil, err
	}
	switch typ {
	case cadenza.ModAccent:
		return accent{typ}, nil
	case cadenza.ModSforzando:
		return accent{typ}, nil
	case cadenza.ModMarcato:
		return marcato{}, nil
	case cadenza.ModStaccato:
		return staccato{divisor: 2}, nil
	case cadenza.ModStaccatissimo:
		return staccato{divisor: 4, issimo: true}, nil
	case cadenza.ModTenuto:
		return tenuto{}, nil
	case cadenza.ModNatural:
		return natural{}, nil
	case cadenza.ModOctaveShiftUp:
		return octaveShift{up: true}, nil
	case cadenza.ModOctaveShiftDown:
		return octaveShift{up: false}, nil
	case cadenza.ModVelocity:
		return setVelocity{value: params["velocity"]}, nil
	case cadenza.ModFermata:
		ext := params["extension"]
		if ext == 0 {
			ext = 2
		}
		return fermata{extension: ext}, nil
	case cadenza.ModTuplet:
		return tuplet{typ: typ, degree: int(params["degree"])}, nil
	case cadenza.ModTriplet:
		return tuplet{typ: typ, degree: 3}, nil
	case cadenza.ModQuintuplet:
		return tuplet{typ: typ, degree: 5}, nil
	case cadenza.ModSextuplet:
		return tuplet{typ: typ, degree: 6}, nil
	case cadenza.ModSeptuplet:
		return tuplet{typ: typ, degree: 7}, nil
	case cadenza.ModTrillUpper:
		return trill{upper: true, offset: int(params["offset"])}, nil
	case cadenza.ModTrillLower:
		return trill{upper: false, offset: int(params["offset"])}, nil
	case cadenza.ModMordentUpper:
		return mordent{upper: true, offset: int(params["offset"])}, nil
	case cadenza.ModMordentLower:
		return mordent{upper: false, offset: int(params["offset"])}, nil
	case cadenza.ModTurnUpper:
		return turn{upper: true}, nil
	case cadenza.ModTurnLower:
		return turn{upper: false}, nil
	case cadenza.ModGraceAcciaccatura:
		return grace{pitch: cadenza.Note(params["gracePitch"])}, nil
	case cadenza.ModGraceAppoggiatura:
		return grace{pitch: cadenza.Note(params["gracePitch"]), appoggiatura: true}, nil
	case cadenza.ModPortamento:
		return portamento{typ: typ, next: cadenza.Note(params["nextNoteValue"])}, nil
	case cadenza.ModGlissando:
		return portamento{typ: typ, next: cadenza.Note(params["nextNoteValue"])}, nil
	case cadenza.ModSlur:
		return slur{}, nil
	case cadenza.ModTie:
		return tie{}, nil
	case cadenza.ModCrescendo:
		return crescendo{ending: params["endingDynamic"], rising: true}, nil
	case cadenza.ModDecrescendo:
		return crescendo{ending: params["endingDynamic"], rising: false}, nil
	}
	if degree, ok := cadenza.DynamicDegree(typ); ok {
		return dynamic{typ: typ, degree: degree}, nil
	}
	return nil, fmt.Errorf("%w: unknown modification type %d", cadenza.ErrValue, typ)
}
