package cadenza_test

import (
	"math"
	"testing"

	"github.com/cadenza-audio/cadenza"
)

func TestDynamicVelocity(t *testing.T) {
	for _, test := range []struct {
		degree   float64
		velocity float64
	}{
		{-4, 1.0 / 18},
		{-3, 3.0 / 18},
		{-0.5, 8.0 / 18},
		{0.5, 10.0 / 18},
		{2, 13.0 / 18},
		{3, 15.0 / 18},
		{-10, 0},
		{10, 1},
	} {
		if got := cadenza.DynamicVelocity(test.degree); math.Abs(got-test.velocity) > 1e-9 {
			t.Errorf("DynamicVelocity(%g) = %g, expected %g", test.degree, got, test.velocity)
		}
	}
}

func TestDynamicDegree(t *testing.T) {
	for _, test := range []struct {
		typ    cadenza.ModificationType
		degree float64
	}{
		{cadenza.ModPianissississimo, -4},
		{cadenza.ModPiano, -1},
		{cadenza.ModMezzoPiano, -0.5},
		{cadenza.ModMezzoForte, 0.5},
		{cadenza.ModFortississimo, 3},
	} {
		degree, ok := cadenza.DynamicDegree(test.typ)
		if !ok {
			t.Fatalf("DynamicDegree(%d) not recognized as a dynamic", test.typ)
		}
		if degree != test.degree {
			t.Errorf("DynamicDegree(%d) = %g, expected %g", test.typ, degree, test.degree)
		}
	}
	if _, ok := cadenza.DynamicDegree(cadenza.ModStaccato); ok {
		t.Errorf("Staccato reported as a dynamic")
	}
}

func TestModificationTypeNames(t *testing.T) {
	for name, typ := range cadenza.ModificationTypes {
		parsed, err := cadenza.ParseModificationType(name)
		if err != nil {
			t.Fatalf("ParseModificationType(%q): %v", name, err)
		}
		if parsed != typ {
			t.Errorf("ParseModificationType(%q) = %d, expected %d", name, parsed, typ)
		}
	}
	if _, err := cadenza.ParseModificationType("Vibrato"); err == nil {
		t.Errorf("ParseModificationType expected an error for an unknown name")
	}
}
