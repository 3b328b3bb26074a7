package mods_test

import (
	"testing"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/mods"
)

func quarterSeq(notes ...cadenza.Note) []mods.Element {
	seq := make([]mods.Element, 0, len(notes))
	for _, n := range notes {
		seq = append(seq, mods.SingleNote(n, cadenza.Quarter))
	}
	return seq
}

func TestExpandSequenceOffsets(t *testing.T) {
	tempo := mustTempo(t, 4, 120)
	expansions, total, err := mods.ExpandSequence(tempo, 0, quarterSeq(60, 62, 64), 0.75, nil)
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	if len(expansions) != 3 {
		t.Fatalf("expanded %d elements, expected 3", len(expansions))
	}
	if !closeTo(total, 1.5) {
		t.Errorf("sequence total %g, expected 1.5", total)
	}
	for i, exp := range expansions {
		if len(exp.Notes) != 1 {
			t.Fatalf("element %d expanded to %d sub-notes, expected 1", i, len(exp.Notes))
		}
		if want := float64(i) * 0.5; !closeTo(exp.Notes[0].StartOffset, want) {
			t.Errorf("element %d offset %g, expected %g", i, exp.Notes[0].StartOffset, want)
		}
	}
}

func TestExpandSequenceChordSlot(t *testing.T) {
	// a chord's slot is the longest member duration
	tempo := mustTempo(t, 4, 120)
	seq := []mods.Element{
		{Notes: []mods.ElementNote{
			{Note: 60, Duration: cadenza.Half},
			{Note: 64, Duration: cadenza.Quarter},
		}},
		mods.SingleNote(67, cadenza.Quarter),
	}
	expansions, total, err := mods.ExpandSequence(tempo, 0, seq, 0.75, nil)
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	if !closeTo(expansions[0].Slot, 1.0) {
		t.Errorf("chord slot %g, expected 1.0", expansions[0].Slot)
	}
	if !closeTo(expansions[1].Notes[0].StartOffset, 1.0) {
		t.Errorf("following note offset %g, expected 1.0", expansions[1].Notes[0].StartOffset)
	}
	if !closeTo(total, 1.5) {
		t.Errorf("sequence total %g, expected 1.5", total)
	}
}

func TestCrescendoRamp(t *testing.T) {
	tempo := mustTempo(t, 4, 60)
	cresc := mustMod(t, cadenza.ModCrescendo, mods.Params{"endingDynamic": 2})
	start := cadenza.DynamicVelocity(-3) // pianissimo
	expansions, _, err := mods.ExpandSequence(tempo, 0, quarterSeq(60, 62, 64, 65, 67), start, []mods.Modification{cresc})
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	end := cadenza.DynamicVelocity(2) // fortissimo
	for i, exp := range expansions {
		want := start + (end-start)*float64(i)/4
		if !closeTo(exp.Notes[0].Velocity, want) {
			t.Errorf("element %d velocity %g, expected %g", i, exp.Notes[0].Velocity, want)
		}
	}
}

func TestDecrescendoRamp(t *testing.T) {
	tempo := mustTempo(t, 4, 60)
	decresc := mustMod(t, cadenza.ModDecrescendo, mods.Params{"endingDynamic": -3})
	start := cadenza.DynamicVelocity(2)
	expansions, _, err := mods.ExpandSequence(tempo, 0, quarterSeq(67, 65, 64), start, []mods.Modification{decresc})
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	end := cadenza.DynamicVelocity(-3)
	if !closeTo(expansions[0].Notes[0].Velocity, start) {
		t.Errorf("first velocity %g, expected %g", expansions[0].Notes[0].Velocity, start)
	}
	if !closeTo(expansions[2].Notes[0].Velocity, end) {
		t.Errorf("last velocity %g, expected %g", expansions[2].Notes[0].Velocity, end)
	}
}

func TestSlurFillsGaps(t *testing.T) {
	tempo := mustTempo(t, 4, 120)
	seq := []mods.Element{
		mods.SingleNote(60, cadenza.Quarter, mustMod(t, cadenza.ModStaccato, nil)),
		mods.SingleNote(62, cadenza.Quarter),
	}
	expansions, _, err := mods.ExpandSequence(tempo, 0, seq, 0.75, []mods.Modification{
		mustMod(t, cadenza.ModSlur, nil),
	})
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	// the staccato gap is closed: the note sounds through its whole slot
	if got := expansions[0].Notes[0].Duration.Seconds(tempo); !closeTo(got, 0.5) {
		t.Errorf("slurred staccato length %g, expected 0.5", got)
	}
}

func TestTieMergesSamePitch(t *testing.T) {
	tempo := mustTempo(t, 4, 120)
	expansions, total, err := mods.ExpandSequence(tempo, 0, quarterSeq(60, 60, 62), 0.75, []mods.Modification{
		mustMod(t, cadenza.ModTie, nil),
	})
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	if len(expansions) != 2 {
		t.Fatalf("tie left %d elements, expected 2", len(expansions))
	}
	if got := expansions[0].Notes[0].Duration.Seconds(tempo); !closeTo(got, 1.0) {
		t.Errorf("tied length %g, expected 1.0", got)
	}
	if !closeTo(total, 1.5) {
		t.Errorf("sequence total %g, expected 1.5", total)
	}
}

func TestSequenceOctaveShift(t *testing.T) {
	tempo := mustTempo(t, 4, 120)
	expansions, _, err := mods.ExpandSequence(tempo, 0, quarterSeq(60, 62), 0.75, []mods.Modification{
		mustMod(t, cadenza.ModOctaveShiftUp, nil),
	})
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	if expansions[0].Notes[0].Note != 72 || expansions[1].Notes[0].Note != 74 {
		t.Errorf("octave-shifted pitches %d %d, expected 72 74",
			expansions[0].Notes[0].Note, expansions[1].Notes[0].Note)
	}
}

func TestSequencePortamentoInfersNext(t *testing.T) {
	tempo := mustTempo(t, 4, 120)
	port := mustMod(t, cadenza.ModPortamento, mods.Params{"nextNoteValue": 63})
	expansions, _, err := mods.ExpandSequence(tempo, 0, quarterSeq(60, 63), 0.75, []mods.Modification{port})
	if err != nil {
		t.Fatalf("ExpandSequence: %v", err)
	}
	// first element climbs to the second; the last element has no successor
	// and plays plain
	if len(expansions[0].Notes) != 3 {
		t.Errorf("first element expanded to %d sub-notes, expected 3", len(expansions[0].Notes))
	}
	if len(expansions[1].Notes) != 1 {
		t.Errorf("last element expanded to %d sub-notes, expected 1", len(expansions[1].Notes))
	}
}

func TestSequenceRejectsSingleNoteOnly(t *testing.T) {
	tempo := mustTempo(t, 4, 120)
	if _, _, err := mods.ExpandSequence(tempo, 0, quarterSeq(60, 62), 0.75, []mods.Modification{
		mustMod(t, cadenza.ModStaccato, nil),
	}); err == nil {
		t.Errorf("sequence-applied staccato expected an error")
	}
}
