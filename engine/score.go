package engine

import (
	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/instrument"
	"github.com/cadenza-audio/cadenza/mods"
)

// PlayScore loads a score into the engine: tempo, key, one track per
// score track with its effect chain, and every note scheduled from time
// at. Instruments are resolved by name from the given set; score tracks
// naming no instrument get a sine fallback. Returns the score length in
// seconds.
func PlayScore(e *Engine, score *cadenza.Score, instruments map[string]*instrument.Instrument, at float64) (float64, error) {
	if err := score.Validate(); err != nil {
		return 0, err
	}
	tempo, err := score.Tempo()
	if err != nil {
		return 0, err
	}
	if err := e.UpdateTempo(tempo.BeatBase, tempo.BPM, tempo.TsNum, tempo.TsDen); err != nil {
		return 0, err
	}
	key, err := score.KeySignature()
	if err != nil {
		return 0, err
	}
	if err := e.UpdateKeySignature(int(key)); err != nil {
		return 0, err
	}
	longest := 0.0
	for _, st := range score.Tracks {
		track := e.CreateTrack(st.Name)
		if ins, ok := instruments[st.Instrument]; ok {
			track.SetInstrument(ins)
		} else {
			track.SetInstrument(instrument.New(st.Name))
		}
		for _, se := range st.Effects {
			typ := cadenza.EffectTypes[se.Type]
			if err := track.ApplyEffect(se.Name, typ); err != nil {
				return 0, err
			}
			if len(se.Params) > 0 {
				if _, err := track.UpdateEffect(se.Name, se.Params, at, 0); err != nil {
					return 0, err
				}
			}
		}
		seq, err := scoreSequence(st.Notes)
		if err != nil {
			return 0, err
		}
		total, err := track.PlaySequence(seq, at)
		if err != nil {
			return 0, err
		}
		if total > longest {
			longest = total
		}
	}
	return longest, nil
}

// scoreSequence converts notated score entries into sequence elements.
func scoreSequence(notes []cadenza.ScoreNote) ([]mods.Element, error) {
	seq := make([]mods.Element, 0, len(notes))
	for _, sn := range notes {
		duration := cadenza.Duration(4)
		if sn.Duration != "" {
			d, err := cadenza.ParseDuration(sn.Duration)
			if err != nil {
				return nil, err
			}
			duration = d
		}
		noteMods := make([]mods.Modification, 0, len(sn.Mods))
		for _, sm := range sn.Mods {
			m, err := mods.New(cadenza.ModificationTypes[sm.Type], mods.Params(sm.Params))
			if err != nil {
				return nil, err
			}
			noteMods = append(noteMods, m)
		}
		names := sn.Chord
		if sn.Note != "" {
			names = []string{sn.Note}
		}
		var elem mods.Element
		for _, name := range names {
			pitch, err := cadenza.ParseNote(name)
			if err != nil {
				return nil, err
			}
			elem.Notes = append(elem.Notes, mods.ElementNote{
				Note:     pitch,
				Duration: duration,
				Velocity: sn.Velocity,
				Mods:     noteMods,
			})
		}
		seq = append(seq, elem)
	}
	return seq, nil
}
