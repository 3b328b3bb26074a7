package effect

import "github.com/cadenza-audio/cadenza"

// Parameter documents one automatable effect parameter. The schema is
// authoritative: Update validates against it and UIs enumerate it.
type Parameter struct {
	Name         string
	Type         string // "number"
	Min, Max     float64
	DefaultValue float64
}

// schemas lists the parameters per effect type. Every default is chosen
// so that a freshly constructed effect is transparent.
var schemas = map[cadenza.EffectType][]Parameter{
	cadenza.EffectVolume: {
		{Name: "gain", Type: "number", Min: 0, Max: 4, DefaultValue: 1},
	},
	cadenza.EffectPanning: {
		{Name: "pan", Type: "number", Min: -1, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectLowPassFilter: {
		{Name: "frequency", Type: "number", Min: 10, Max: 22050, DefaultValue: 22050},
		{Name: "q", Type: "number", Min: 0.1, Max: 20, DefaultValue: 0.707},
	},
	cadenza.EffectHighPassFilter: {
		{Name: "frequency", Type: "number", Min: 10, Max: 22050, DefaultValue: 10},
		{Name: "q", Type: "number", Min: 0.1, Max: 20, DefaultValue: 0.707},
	},
	cadenza.EffectBandPassFilter: {
		{Name: "frequency", Type: "number", Min: 10, Max: 22050, DefaultValue: 1000},
		{Name: "q", Type: "number", Min: 0.1, Max: 20, DefaultValue: 0.707},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectBandRejectFilter: {
		{Name: "frequency", Type: "number", Min: 10, Max: 22050, DefaultValue: 1000},
		{Name: "q", Type: "number", Min: 0.1, Max: 20, DefaultValue: 0.707},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectDelay: {
		{Name: "delayTime", Type: "number", Min: 0, Max: 5, DefaultValue: 0},
		{Name: "feedback", Type: "number", Min: 0, Max: 0.95, DefaultValue: 0},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectEcho: {
		{Name: "delayTime", Type: "number", Min: 0, Max: 5, DefaultValue: 0},
		{Name: "feedback", Type: "number", Min: 0, Max: 0.95, DefaultValue: 0},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectReverb: {
		{Name: "decay", Type: "number", Min: 0.1, Max: 10, DefaultValue: 2},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectChorus: {
		{Name: "rate", Type: "number", Min: 0.01, Max: 10, DefaultValue: 1.5},
		{Name: "depth", Type: "number", Min: 0, Max: 0.02, DefaultValue: 0},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectVibrato: {
		{Name: "rate", Type: "number", Min: 0.01, Max: 20, DefaultValue: 5},
		{Name: "depth", Type: "number", Min: 0, Max: 0.01, DefaultValue: 0},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 1},
	},
	cadenza.EffectFlanger: {
		{Name: "rate", Type: "number", Min: 0.01, Max: 10, DefaultValue: 0.25},
		{Name: "depth", Type: "number", Min: 0, Max: 0.005, DefaultValue: 0},
		{Name: "mix", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectTremolo: {
		{Name: "rate", Type: "number", Min: 0.01, Max: 20, DefaultValue: 5},
		{Name: "depth", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectPhaser: {
		{Name: "rate", Type: "number", Min: 0.01, Max: 10, DefaultValue: 0.5},
		{Name: "depth", Type: "number", Min: 0, Max: 1, DefaultValue: 0},
	},
	cadenza.EffectDistortion: {
		{Name: "amount", Type: "number", Min: 0, Max: 100, DefaultValue: 0},
	},
	cadenza.EffectCompressor: {
		{Name: "threshold", Type: "number", Min: -60, Max: 0, DefaultValue: 0},
		{Name: "ratio", Type: "number", Min: 1, Max: 20, DefaultValue: 1},
	},
	cadenza.EffectEqualization: {
		{Name: "lowGain", Type: "number", Min: 0, Max: 4, DefaultValue: 1},
		{Name: "midGain", Type: "number", Min: 0, Max: 4, DefaultValue: 1},
		{Name: "highGain", Type: "number", Min: 0, Max: 4, DefaultValue: 1},
	},
}

// Parameters returns the authoritative parameter schema of an effect
// type.
func Parameters(typ cadenza.EffectType) []Parameter {
	return schemas[typ]
}
