package cadenza

import (
	"fmt"
	"math"
)

type (
	// Note is a pitch in the engine's extended MIDI numbering: 12 is C0, 60
	// is C4 and 131 (B9) is the highest addressable pitch. The zero value is
	// REST, which occupies its time slot but never produces a voice.
	Note int

	// Velocity is the loudness of a note, 0 (silent) to 1 (full scale).
	// Dynamics and accents scale it; the track gain finally clips it.
	Velocity = float64
)

const (
	REST    Note = 0
	NoteMin Note = 1
	NoteMax Note = 131
)

var noteLetters = [7]struct {
	letter   byte
	semitone int
}{
	{'C', 0}, {'D', 2}, {'E', 4}, {'F', 5}, {'G', 7}, {'A', 9}, {'B', 11},
}

var noteAccidentals = [5]struct {
	suffix string
	shift  int
}{
	{"", 0}, {"S", 1}, {"F", -1}, {"SS", 2}, {"FF", -2},
}

// Notes maps every canonical note name to its pitch value. The octave digit
// precedes the accidental letter ("C4S" is C-sharp 4, "D4FF" is D
// double-flat 4) and enharmonic aliases map to the same value.
var Notes = func() map[string]Note {
	m := map[string]Note{"REST": REST}
	for octave := 0; octave <= 9; octave++ {
		for _, l := range noteLetters {
			for _, acc := range noteAccidentals {
				n := Note(12 + octave*12 + l.semitone + acc.shift)
				if n < NoteMin || n > NoteMax {
					continue
				}
				m[fmt.Sprintf("%c%d%s", l.letter, octave, acc.suffix)] = n
			}
		}
	}
	return m
}()

// noteNames is the reverse of Notes, preferring naturals over sharps over
// flats so that e.g. 61 reads back as "C4S" rather than "D4F".
var noteNames = func() map[Note]string {
	rank := map[string]int{"": 0, "S": 1, "F": 2, "SS": 3, "FF": 4}
	best := make(map[Note]int)
	m := make(map[Note]string)
	for octave := 0; octave <= 9; octave++ {
		for _, l := range noteLetters {
			for _, acc := range noteAccidentals {
				n := Note(12 + octave*12 + l.semitone + acc.shift)
				if n < NoteMin || n > NoteMax {
					continue
				}
				if old, ok := best[n]; !ok || rank[acc.suffix] < old {
					best[n] = rank[acc.suffix]
					m[n] = fmt.Sprintf("%c%d%s", l.letter, octave, acc.suffix)
				}
			}
		}
	}
	m[REST] = "REST"
	return m
}()

// Valid reports whether the pitch is REST or within the playable range.
func (n Note) Valid() bool {
	return n == REST || (n >= NoteMin && n <= NoteMax)
}

// Frequency returns the equal-temperament frequency of the pitch, with A4
// (note 69) at 440 Hz. REST has no frequency and returns 0.
func (n Note) Frequency() float64 {
	if n == REST {
		return 0
	}
	return 440 * math.Pow(2, float64(n-69)/12)
}

func (n Note) String() string {
	if name, ok := noteNames[n]; ok {
		return name
	}
	return fmt.Sprintf("Note(%d)", int(n))
}

// ParseNote resolves a canonical note name, including enharmonic aliases.
func ParseNote(name string) (Note, error) {
	if n, ok := Notes[name]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%w: unknown note name %q", ErrValue, name)
}
