package cadenza_test

import (
	"math"
	"testing"

	"github.com/cadenza-audio/cadenza"
)

func TestNoteValues(t *testing.T) {
	for _, test := range []struct {
		name  string
		value cadenza.Note
	}{
		{"REST", 0},
		{"C0", 12},
		{"C4", 60},
		{"C4S", 61},
		{"D4F", 61},
		{"A4", 69},
		{"B9", 131},
		{"C4FF", 58},
		{"B3S", 60},
	} {
		n, err := cadenza.ParseNote(test.name)
		if err != nil {
			t.Fatalf("ParseNote(%q): %v", test.name, err)
		}
		if n != test.value {
			t.Errorf("ParseNote(%q) = %d, expected %d", test.name, n, test.value)
		}
	}
}

func TestParseNoteUnknown(t *testing.T) {
	for _, name := range []string{"", "H4", "C10", "CS4", "C4X"} {
		if _, err := cadenza.ParseNote(name); err == nil {
			t.Errorf("ParseNote(%q) expected an error", name)
		}
	}
}

func TestNoteString(t *testing.T) {
	for _, test := range []struct {
		value cadenza.Note
		name  string
	}{
		{0, "REST"},
		{60, "C4"},
		{61, "C4S"}, // sharp spelling preferred over D4F
		{69, "A4"},
		{131, "B9"},
	} {
		if got := test.value.String(); got != test.name {
			t.Errorf("Note(%d).String() = %q, expected %q", test.value, got, test.name)
		}
	}
}

func TestNoteFrequency(t *testing.T) {
	for _, test := range []struct {
		note cadenza.Note
		freq float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6255653},
		{cadenza.REST, 0},
	} {
		if got := test.note.Frequency(); math.Abs(got-test.freq) > 1e-6 {
			t.Errorf("Note(%d).Frequency() = %g, expected %g", test.note, got, test.freq)
		}
	}
}

func TestNoteValid(t *testing.T) {
	for _, test := range []struct {
		note  cadenza.Note
		valid bool
	}{
		{cadenza.REST, true},
		{1, true},
		{131, true},
		{132, false},
		{-1, false},
	} {
		if got := test.note.Valid(); got != test.valid {
			t.Errorf("Note(%d).Valid() = %v, expected %v", test.note, got, test.valid)
		}
	}
}
