package cadenza

import "fmt"

// Tempo maps notated durations to seconds via the beat base (which notated
// duration counts as one beat; 4 means a quarter note), beats per minute
// and time signature. The measure length in seconds is cached and
// recomputed on every update.
type Tempo struct {
	BeatBase       int
	BPM            float64
	TsNum          int
	TsDen          int
	measureSeconds float64
}

// NewTempo validates the four primary fields and computes the measure
// cache. All fields must be positive.
func NewTempo(beatBase int, bpm float64, tsNum, tsDen int) (Tempo, error) {
	t := Tempo{BeatBase: beatBase, BPM: bpm, TsNum: tsNum, TsDen: tsDen}
	if err := t.validate(); err != nil {
		return Tempo{}, err
	}
	t.recompute()
	return t, nil
}

// DefaultTempo is 4/4 at 120 BPM with a quarter-note beat.
func DefaultTempo() Tempo {
	t, _ := NewTempo(4, 120, 4, 4)
	return t
}

func (t *Tempo) validate() error {
	if t.BeatBase <= 0 || t.BPM <= 0 || t.TsNum <= 0 || t.TsDen <= 0 {
		return fmt.Errorf("%w: tempo fields must all be positive (beatBase=%d bpm=%g ts=%d/%d)",
			ErrValue, t.BeatBase, t.BPM, t.TsNum, t.TsDen)
	}
	return nil
}

func (t *Tempo) recompute() {
	t.measureSeconds = 60 / t.BPM * float64(t.BeatBase) * float64(t.TsNum) / float64(t.TsDen)
}

// Update replaces the provided fields (zero means keep the current value)
// and recomputes the measure cache. Events already scheduled against the
// old tempo are not reshaped.
func (t *Tempo) Update(beatBase int, bpm float64, tsNum, tsDen int) error {
	next := *t
	if beatBase != 0 {
		next.BeatBase = beatBase
	}
	if bpm != 0 {
		next.BPM = bpm
	}
	if tsNum != 0 {
		next.TsNum = tsNum
	}
	if tsDen != 0 {
		next.TsDen = tsDen
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.recompute()
	*t = next
	return nil
}

// MeasureSeconds returns the cached length of one measure in seconds.
func (t Tempo) MeasureSeconds() float64 { return t.measureSeconds }

// NoteSeconds returns the length in seconds of a notated duration factor.
func (t Tempo) NoteSeconds(d Duration) float64 {
	return 60 / (float64(d) / float64(t.BeatBase) * t.BPM)
}

// BeatSeconds returns the length of one beat in seconds.
func (t Tempo) BeatSeconds() float64 { return 60 / t.BPM }
