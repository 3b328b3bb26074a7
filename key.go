package cadenza

import "fmt"

// KeySignature is a position on the circle of fifths, -7 (C-flat major)
// through +7 (C-sharp major). It derives a 12-element offset vector telling
// for each natural pitch class whether the key sharpens (+1) or flattens
// (-1) it; the Natural and Trill/Turn modifications consult the vector.
type KeySignature int

const (
	KeyMin KeySignature = -7
	KeyMax KeySignature = 7
)

// Order in which sharps are added on the circle of fifths, as natural pitch
// classes: F C G D A E B. Flats are added in the reverse order.
var sharpOrder = [7]int{5, 0, 7, 2, 9, 4, 11}

// KeySignatures maps key names to their circle-of-fifths position. Only the
// major-key spellings are listed; relative minors share the signature.
var KeySignatures = map[string]KeySignature{
	"CFlatMajor":  -7,
	"GFlatMajor":  -6,
	"DFlatMajor":  -5,
	"AFlatMajor":  -4,
	"EFlatMajor":  -3,
	"BFlatMajor":  -2,
	"FMajor":      -1,
	"CMajor":      0,
	"GMajor":      1,
	"DMajor":      2,
	"AMajor":      3,
	"EMajor":      4,
	"BMajor":      5,
	"FSharpMajor": 6,
	"CSharpMajor": 7,
}

// Valid reports whether the signature is within [-7, +7].
func (k KeySignature) Valid() bool { return k >= KeyMin && k <= KeyMax }

// ParseKeySignature resolves a key name like "DMajor".
func ParseKeySignature(name string) (KeySignature, error) {
	if k, ok := KeySignatures[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: unknown key signature %q", ErrValue, name)
}

// Offsets returns the derived offset vector, indexed by natural pitch
// class: +1 where the key sharpens the class, -1 where it flattens it.
func (k KeySignature) Offsets() [12]int {
	var offsets [12]int
	if k > 0 {
		for _, pc := range sharpOrder[:k] {
			offsets[pc] = 1
		}
	} else if k < 0 {
		for i := 0; i < int(-k); i++ {
			offsets[sharpOrder[6-i]] = -1
		}
	}
	return offsets
}

// NaturalShift returns the semitone shift that removes the key's accidental
// from the given pitch: -1 when the pitch is the sharpened form of a degree
// the key sharpens, +1 when it is the flattened form of a degree the key
// flattens, else 0.
func (k KeySignature) NaturalShift(n Note) int {
	offsets := k.Offsets()
	pc := int(n) % 12
	if k > 0 && offsets[(pc+11)%12] == 1 {
		return -1
	}
	if k < 0 && offsets[(pc+1)%12] == -1 {
		return 1
	}
	return 0
}

// InKey re-spells a natural pitch into the key, applying the key's
// accidental to the pitch's class when the signature alters it.
func (k KeySignature) InKey(n Note) Note {
	offsets := k.Offsets()
	return n + Note(offsets[int(n)%12])
}
