package cadenza_test

import (
	"math"
	"testing"

	"github.com/cadenza-audio/cadenza"
)

func TestNoteSeconds(t *testing.T) {
	tempo, err := cadenza.NewTempo(4, 120, 4, 4)
	if err != nil {
		t.Fatalf("NewTempo: %v", err)
	}
	for _, test := range []struct {
		duration cadenza.Duration
		seconds  float64
	}{
		{cadenza.Whole, 2},
		{cadenza.Half, 1},
		{cadenza.Quarter, 0.5},
		{cadenza.Eighth, 0.25},
		{cadenza.ThirtySecond, 0.0625},
		{cadenza.Dotted(cadenza.Quarter), 0.75},
		{cadenza.DoubleDotted(cadenza.Quarter), 0.875},
	} {
		if got := tempo.NoteSeconds(test.duration); math.Abs(got-test.seconds) > 1e-9 {
			t.Errorf("NoteSeconds(%g) = %g, expected %g", test.duration, got, test.seconds)
		}
	}
}

func TestParseDuration(t *testing.T) {
	for _, test := range []struct {
		name   string
		factor cadenza.Duration
	}{
		{"Quarter", cadenza.Quarter},
		{"DottedHalf", cadenza.Dotted(cadenza.Half)},
		{"DoubleDottedEighth", cadenza.DoubleDotted(cadenza.Eighth)},
	} {
		d, err := cadenza.ParseDuration(test.name)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", test.name, err)
		}
		if d != test.factor {
			t.Errorf("ParseDuration(%q) = %g, expected %g", test.name, d, test.factor)
		}
	}
	if _, err := cadenza.ParseDuration("TripletQuarter"); err == nil {
		t.Errorf("ParseDuration expected an error for an unknown name")
	}
}

func TestSpanSeconds(t *testing.T) {
	tempo := cadenza.DefaultTempo()
	beat := cadenza.BeatSpan(cadenza.Quarter)
	if beat.Absolute() {
		t.Errorf("BeatSpan reported absolute")
	}
	if got := beat.Seconds(tempo); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("BeatSpan(Quarter).Seconds = %g, expected 0.5", got)
	}
	fixed := cadenza.SecondsSpan(0.125)
	if !fixed.Absolute() {
		t.Errorf("SecondsSpan reported non-absolute")
	}
	if got := fixed.Seconds(tempo); got != 0.125 {
		t.Errorf("SecondsSpan(0.125).Seconds = %g", got)
	}
}

func TestTempoValidation(t *testing.T) {
	if _, err := cadenza.NewTempo(0, 120, 4, 4); err == nil {
		t.Errorf("NewTempo accepted zero beat base")
	}
	if _, err := cadenza.NewTempo(4, -1, 4, 4); err == nil {
		t.Errorf("NewTempo accepted negative BPM")
	}
	tempo := cadenza.DefaultTempo()
	if err := tempo.Update(0, 0, 0, 0); err != nil {
		t.Fatalf("Update with all-zero fields: %v", err)
	}
	if tempo.BPM != 120 || tempo.BeatBase != 4 {
		t.Errorf("Update with zero fields changed the tempo: %+v", tempo)
	}
	if err := tempo.Update(0, 60, 3, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := tempo.MeasureSeconds(); math.Abs(got-3) > 1e-9 {
		t.Errorf("MeasureSeconds = %g, expected 3 (3/4 at 60 BPM)", got)
	}
}
