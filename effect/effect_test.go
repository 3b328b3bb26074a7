package effect_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
	"github.com/cadenza-audio/cadenza/effect"
)

func testBlock(frames int) []float32 {
	buf := make([]float32, frames*audio.Channels)
	for i := range buf {
		buf[i] = float32(math.Sin(float64(i) * 0.1))
	}
	return buf
}

func TestDefaultsAreTransparent(t *testing.T) {
	for name, typ := range cadenza.EffectTypes {
		e, err := effect.New("e", typ)
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if err := e.Load(); err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		// re-applying the schema defaults must also stay transparent
		defaults := map[string]float64{}
		for _, p := range effect.Parameters(typ) {
			defaults[p.Name] = p.DefaultValue
		}
		if len(defaults) > 0 {
			if err := e.Update(defaults, 0, 0); err != nil {
				t.Fatalf("Update(%s, defaults): %v", name, err)
			}
		}
		want := testBlock(256)
		got := testBlock(256)
		e.Process(got, 0)
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("%s colored the signal at sample %d: %g != %g", name, i, got[i], want[i])
				break
			}
		}
	}
}

func TestUnknownEffectType(t *testing.T) {
	if _, err := effect.New("e", cadenza.EffectType(99)); !errors.Is(err, cadenza.ErrEffect) {
		t.Errorf("New(99): got %v, expected ErrEffect", err)
	}
}

func TestUpdateRejectsEmptyOptions(t *testing.T) {
	e, err := effect.New("v", cadenza.EffectVolume)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	uerr := e.Update(nil, 0, 0)
	if !errors.Is(uerr, cadenza.ErrValue) {
		t.Fatalf("Update(nil): got %v, expected ErrValue", uerr)
	}
	if !strings.Contains(uerr.Error(), "gain") {
		t.Errorf("empty-options error %q does not name the recognized keys", uerr)
	}
}

func TestUpdateValidation(t *testing.T) {
	e, err := effect.New("v", cadenza.EffectVolume)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Update(map[string]float64{"frequency": 100}, 0, 0); !errors.Is(err, cadenza.ErrValue) {
		t.Errorf("unknown parameter: got %v, expected ErrValue", err)
	}
	if err := e.Update(map[string]float64{"gain": -1}, 0, 0); !errors.Is(err, cadenza.ErrValue) {
		t.Errorf("out-of-range parameter: got %v, expected ErrValue", err)
	}
}

func TestVolumeGain(t *testing.T) {
	e, err := effect.New("v", cadenza.EffectVolume)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Update(map[string]float64{"gain": 0.5}, 0, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	buf := []float32{1, 1, -0.5, -0.5}
	e.Process(buf, 0)
	want := []float32{0.5, 0.5, -0.25, -0.25}
	for i := range buf {
		if math.Abs(float64(buf[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d = %g, expected %g", i, buf[i], want[i])
		}
	}
}

func TestPanningBalance(t *testing.T) {
	e, err := effect.New("p", cadenza.EffectPanning)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Update(map[string]float64{"pan": 1}, 0, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	buf := []float32{1, 1}
	e.Process(buf, 0)
	if buf[0] != 0 || buf[1] != 1 {
		t.Errorf("hard-right pan = (%g, %g), expected (0, 1)", buf[0], buf[1])
	}
}

func TestDistortionBoundsOutput(t *testing.T) {
	e, err := effect.New("d", cadenza.EffectDistortion)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Update(map[string]float64{"amount": 50}, 0, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	buf := []float32{0.9, -0.9, 0.1, -0.1}
	e.Process(buf, 0)
	for i, s := range buf {
		if math.Abs(float64(s)) > 1.02 {
			t.Errorf("sample %d = %g, wave shaper exceeded full scale", i, s)
		}
	}
	if buf[0] <= 0.9 {
		t.Errorf("positive sample not pushed toward the rail: %g", buf[0])
	}
}

func TestLowPassAttenuatesHighFrequencies(t *testing.T) {
	e, err := effect.New("f", cadenza.EffectLowPassFilter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Update(map[string]float64{"frequency": 500}, 0, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	frames := 4096
	buf := make([]float32, frames*audio.Channels)
	for i := 0; i < frames; i++ {
		s := float32(math.Sin(2 * math.Pi * 8000 * float64(i) / audio.SampleRate))
		buf[2*i], buf[2*i+1] = s, s
	}
	e.Process(buf, 0)
	peak := audio.Peak(buf[len(buf)/2:])
	if peak > 0.1 {
		t.Errorf("8 kHz peak %g after a 500 Hz low pass, expected < 0.1", peak)
	}
}

func TestEffectSchemaCoversEveryType(t *testing.T) {
	for name, typ := range cadenza.EffectTypes {
		if len(effect.Parameters(typ)) == 0 {
			t.Errorf("effect %s has no parameter schema", name)
		}
	}
}
