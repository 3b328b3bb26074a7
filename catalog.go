package cadenza

import "fmt"

// ModificationType enumerates the notated articulations, ornaments and
// dynamics the modification engine expands.
type ModificationType int

const (
	ModAccent ModificationType = iota
	ModSforzando
	ModMarcato
	ModStaccato
	ModStaccatissimo
	ModTenuto
	ModNatural
	ModOctaveShiftUp
	ModOctaveShiftDown
	ModVelocity
	ModPianissississimo
	ModPianississimo
	ModPianissimo
	ModPiano
	ModMezzoPiano
	ModMezzoForte
	ModForte
	ModFortissimo
	ModFortississimo
	ModTrillUpper
	ModTrillLower
	ModMordentUpper
	ModMordentLower
	ModTurnUpper
	ModTurnLower
	ModGraceAcciaccatura
	ModGraceAppoggiatura
	ModTuplet
	ModTriplet
	ModQuintuplet
	ModSextuplet
	ModSeptuplet
	ModSlur
	ModTie
	ModFermata
	ModCrescendo
	ModDecrescendo
	ModPortamento
	ModGlissando
)

// ModificationTypes maps modification names to their codes, for the public
// catalog surface.
var ModificationTypes = map[string]ModificationType{
	"Accent":            ModAccent,
	"Sforzando":         ModSforzando,
	"Marcato":           ModMarcato,
	"Staccato":          ModStaccato,
	"Staccatissimo":     ModStaccatissimo,
	"Tenuto":            ModTenuto,
	"Natural":           ModNatural,
	"OctaveShiftUp":     ModOctaveShiftUp,
	"OctaveShiftDown":   ModOctaveShiftDown,
	"Velocity":          ModVelocity,
	"Pianissississimo":  ModPianissississimo,
	"Pianississimo":     ModPianississimo,
	"Pianissimo":        ModPianissimo,
	"Piano":             ModPiano,
	"MezzoPiano":        ModMezzoPiano,
	"MezzoForte":        ModMezzoForte,
	"Forte":             ModForte,
	"Fortissimo":        ModFortissimo,
	"Fortississimo":     ModFortississimo,
	"TrillUpper":        ModTrillUpper,
	"TrillLower":        ModTrillLower,
	"MordentUpper":      ModMordentUpper,
	"MordentLower":      ModMordentLower,
	"TurnUpper":         ModTurnUpper,
	"TurnLower":         ModTurnLower,
	"GraceAcciaccatura": ModGraceAcciaccatura,
	"GraceAppoggiatura": ModGraceAppoggiatura,
	"Tuplet":            ModTuplet,
	"Triplet":           ModTriplet,
	"Quintuplet":        ModQuintuplet,
	"Sextuplet":         ModSextuplet,
	"Septuplet":         ModSeptuplet,
	"Slur":              ModSlur,
	"Tie":               ModTie,
	"Fermata":           ModFermata,
	"Crescendo":         ModCrescendo,
	"Decrescendo":       ModDecrescendo,
	"Portamento":        ModPortamento,
	"Glissando":         ModGlissando,
}

// EffectType enumerates the effect kinds a track or the master bus can
// host. The engine treats every effect as an opaque node behind the
// wrapper contract; the type only selects which node is constructed.
type EffectType int

const (
	EffectVolume EffectType = iota
	EffectPanning
	EffectLowPassFilter
	EffectHighPassFilter
	EffectBandPassFilter
	EffectBandRejectFilter
	EffectDelay
	EffectEcho
	EffectReverb
	EffectChorus
	EffectTremolo
	EffectVibrato
	EffectPhaser
	EffectFlanger
	EffectDistortion
	EffectCompressor
	EffectEqualization
)

// EffectTypes maps effect names to their codes.
var EffectTypes = map[string]EffectType{
	"Volume":           EffectVolume,
	"Panning":          EffectPanning,
	"LowPassFilter":    EffectLowPassFilter,
	"HighPassFilter":   EffectHighPassFilter,
	"BandPassFilter":   EffectBandPassFilter,
	"BandRejectFilter": EffectBandRejectFilter,
	"Delay":            EffectDelay,
	"Echo":             EffectEcho,
	"Reverb":           EffectReverb,
	"Chorus":           EffectChorus,
	"Tremolo":          EffectTremolo,
	"Vibrato":          EffectVibrato,
	"Phaser":           EffectPhaser,
	"Flanger":          EffectFlanger,
	"Distortion":       EffectDistortion,
	"Compressor":       EffectCompressor,
	"Equalization":     EffectEqualization,
}

// AnalysisType selects what AnalyzeAudio samples from the current mix.
type AnalysisType int

const (
	AnalysisTimeSeries AnalysisType = iota
	AnalysisPowerSpectrum
	AnalysisTotalPower
)

var AnalysisTypes = map[string]AnalysisType{
	"TimeSeries":    AnalysisTimeSeries,
	"PowerSpectrum": AnalysisPowerSpectrum,
	"TotalPower":    AnalysisTotalPower,
}

// EncodingType selects the output codec for encoded clips.
type EncodingType int

const (
	EncodingWAV EncodingType = iota
	EncodingWebmOpus
)

var EncodingTypes = map[string]EncodingType{
	"WAV":      EncodingWAV,
	"WebmOpus": EncodingWebmOpus,
}

// DynamicDegree returns the circle position of a global dynamic on the
// loudness scale, in steps from -4 (pianissississimo) to +4; mezzo piano
// and mezzo forte sit at the half steps around the center.
func DynamicDegree(m ModificationType) (float64, bool) {
	switch m {
	case ModPianissississimo:
		return -4, true
	case ModPianississimo:
		return -3, true
	case ModPianissimo:
		return -2, true
	case ModPiano:
		return -1, true
	case ModMezzoPiano:
		return -0.5, true
	case ModMezzoForte:
		return 0.5, true
	case ModForte:
		return 1, true
	case ModFortissimo:
		return 2, true
	case ModFortississimo:
		return 3, true
	}
	return 0, false
}

// DynamicVelocity converts a dynamic degree to a velocity via the fixed
// 19-entry loudness table, indexed by 9 + 2*degree.
func DynamicVelocity(degree float64) Velocity {
	index := 9 + 2*degree
	if index < 0 {
		index = 0
	}
	if index > 18 {
		index = 18
	}
	return index / 18
}

// ParseModificationType resolves a modification name like "Staccato".
func ParseModificationType(name string) (ModificationType, error) {
	if m, ok := ModificationTypes[name]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: unknown modification type %q", ErrValue, name)
}

// ParseEffectType resolves an effect name like "LowPassFilter".
func ParseEffectType(name string) (EffectType, error) {
	if e, ok := EffectTypes[name]; ok {
		return e, nil
	}
	return 0, fmt.Errorf("%w: unknown effect type %q", ErrValue, name)
}

// ParseAnalysisType resolves an analysis name like "PowerSpectrum".
func ParseAnalysisType(name string) (AnalysisType, error) {
	if a, ok := AnalysisTypes[name]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("%w: unknown analysis type %q", ErrValue, name)
}

// ParseEncodingType resolves an encoding name like "WAV".
func ParseEncodingType(name string) (EncodingType, error) {
	if e, ok := EncodingTypes[name]; ok {
		return e, nil
	}
	return 0, fmt.Errorf("%w: unknown encoding type %q", ErrValue, name)
}
