package cadenza

import "fmt"

type (
	// Score is the yaml-serializable document the command line players
	// consume: a tempo, a key, and per-track note sequences with optional
	// instruments and effect chains. It is deliberately notation-level; the
	// engine expands it through the modification algebra at play time.
	Score struct {
		BPM           float64 `yaml:"bpm"`
		BeatBase      int     `yaml:"beatbase,omitempty"`
		TimeSignature [2]int  `yaml:"timesignature,omitempty,flow"`
		Key           string  `yaml:"key,omitempty"`
		Tracks        []ScoreTrack
	}

	// ScoreTrack names one track, the instrument it plays and the notes it
	// schedules from the start of the score.
	ScoreTrack struct {
		Name       string
		Instrument string        `yaml:",omitempty"`
		Effects    []ScoreEffect `yaml:",omitempty"`
		Notes      []ScoreNote
	}

	// ScoreEffect is one named effect in a track chain.
	ScoreEffect struct {
		Name   string
		Type   string
		Params map[string]float64 `yaml:",omitempty,flow"`
	}

	// ScoreNote is a single note or a chord with a notated duration and
	// optional modifications. Note and Chord are mutually exclusive.
	ScoreNote struct {
		Note     string     `yaml:",omitempty"`
		Chord    []string   `yaml:",omitempty,flow"`
		Duration string     `yaml:",omitempty"`
		Velocity float64    `yaml:",omitempty"`
		Mods     []ScoreMod `yaml:",omitempty"`
	}

	// ScoreMod names one modification and its parameters.
	ScoreMod struct {
		Type   string
		Params map[string]float64 `yaml:",omitempty,flow"`
	}
)

// Tempo resolves the score header into a Tempo, applying the defaults of a
// quarter-note beat, 120 BPM and 4/4 time.
func (s *Score) Tempo() (Tempo, error) {
	beatBase := s.BeatBase
	if beatBase == 0 {
		beatBase = 4
	}
	num, den := s.TimeSignature[0], s.TimeSignature[1]
	if num == 0 {
		num = 4
	}
	if den == 0 {
		den = 4
	}
	bpm := s.BPM
	if bpm == 0 {
		bpm = 120
	}
	return NewTempo(beatBase, bpm, num, den)
}

// KeySignature resolves the score's key name, defaulting to C major.
func (s *Score) KeySignature() (KeySignature, error) {
	if s.Key == "" {
		return 0, nil
	}
	return ParseKeySignature(s.Key)
}

// Validate checks that every track has a name and that every note,
// duration and modification name resolves against the catalogs.
func (s *Score) Validate() error {
	if _, err := s.Tempo(); err != nil {
		return err
	}
	if _, err := s.KeySignature(); err != nil {
		return err
	}
	for i, t := range s.Tracks {
		if t.Name == "" {
			return fmt.Errorf("%w: track %d has no name", ErrValue, i)
		}
		for j, n := range t.Notes {
			if n.Note != "" && len(n.Chord) > 0 {
				return fmt.Errorf("%w: track %q note %d sets both note and chord", ErrValue, t.Name, j)
			}
			names := n.Chord
			if n.Note != "" {
				names = []string{n.Note}
			}
			for _, name := range names {
				if _, err := ParseNote(name); err != nil {
					return err
				}
			}
			if n.Duration != "" {
				if _, err := ParseDuration(n.Duration); err != nil {
					return err
				}
			}
			for _, m := range n.Mods {
				if _, ok := ModificationTypes[m.Type]; !ok {
					return fmt.Errorf("%w: track %q note %d names unknown modification %q", ErrValue, t.Name, j, m.Type)
				}
			}
		}
		for _, e := range t.Effects {
			if _, ok := EffectTypes[e.Type]; !ok {
				return fmt.Errorf("%w: track %q names unknown effect type %q", ErrValue, t.Name, e.Type)
			}
		}
	}
	return nil
}
