// Package effect implements the effect wrapper contract: every effect is
// an opaque in-place processor on interleaved stereo blocks, exposing a
// parameter schema, one-time load, and scheduled parameter updates. The
// engine wires effects into ordered chains and never looks past this
// surface; an effect's input and output endpoints are the same node.
package effect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
)

// Effect is one node in a track or master chain.
type Effect interface {
	Name() string
	Type() cadenza.EffectType

	// Load runs one-time setup after construction.
	Load() error

	// Update validates the options against the schema and schedules the
	// parameter automation at the given time with exponential time
	// constant tau (0 = step change). An empty options set is a value
	// error naming the recognized keys.
	Update(opts map[string]float64, at, tau float64) error

	// Process transforms an interleaved stereo block in place. from is
	// the engine frame of the block's first sample, timing the parameter
	// automation.
	Process(buf []float32, from int64)
}

// New constructs a named effect of the given type with its parameters at
// their defaults.
func New(name string, typ cadenza.EffectType) (Effect, error) {
	switch typ {
	case cadenza.EffectVolume:
		return &volume{newBase(name, typ)}, nil
	case cadenza.EffectPanning:
		return &panning{newBase(name, typ)}, nil
	case cadenza.EffectLowPassFilter, cadenza.EffectHighPassFilter,
		cadenza.EffectBandPassFilter, cadenza.EffectBandRejectFilter:
		return newFilter(name, typ), nil
	case cadenza.EffectDelay, cadenza.EffectEcho:
		return newDelay(name, typ), nil
	case cadenza.EffectReverb:
		return newReverb(name), nil
	case cadenza.EffectChorus, cadenza.EffectVibrato, cadenza.EffectFlanger:
		return newModDelay(name, typ), nil
	case cadenza.EffectTremolo:
		return &tremolo{newBase(name, typ)}, nil
	case cadenza.EffectDistortion:
		return &distortion{newBase(name, typ)}, nil
	case cadenza.EffectCompressor:
		return &compressor{base: newBase(name, typ)}, nil
	case cadenza.EffectPhaser, cadenza.EffectEqualization:
		// schema-only placeholders: they accept updates but pass audio
		// through untouched
		return &passthrough{newBase(name, typ)}, nil
	}
	return nil, fmt.Errorf("%w: unknown effect type %d", cadenza.ErrEffect, typ)
}

// base carries the name, type and automated parameter table shared by
// every effect. Construction installs the schema defaults.
type base struct {
	name     string
	typ      cadenza.EffectType
	params   map[string]*audio.Param
	defaults map[string]float64
}

func newBase(name string, typ cadenza.EffectType) base {
	b := base{
		name:     name,
		typ:      typ,
		params:   map[string]*audio.Param{},
		defaults: map[string]float64{},
	}
	for _, p := range Parameters(typ) {
		b.params[p.Name] = audio.NewParam(p.DefaultValue)
		b.defaults[p.Name] = p.DefaultValue
	}
	return b
}

func (b *base) Name() string              { return b.name }
func (b *base) Type() cadenza.EffectType  { return b.typ }
func (b *base) Load() error               { return nil }

func (b *base) Update(opts map[string]float64, at, tau float64) error {
	if len(opts) == 0 {
		keys := make([]string, 0, len(b.params))
		for k := range b.params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("%w: no parameters given; recognized: %s",
			cadenza.ErrValue, strings.Join(keys, ", "))
	}
	schema := Parameters(b.typ)
	for name, value := range opts {
		param, ok := b.params[name]
		if !ok {
			return fmt.Errorf("%w: effect %q has no parameter %q", cadenza.ErrValue, b.name, name)
		}
		for _, p := range schema {
			if p.Name == name && (value < p.Min || value > p.Max) {
				return fmt.Errorf("%w: parameter %q value %g outside [%g, %g]",
					cadenza.ErrValue, name, value, p.Min, p.Max)
			}
		}
		if tau > 0 {
			param.SetTargetAt(value, at, tau)
		} else {
			param.SetValueAt(value, at)
		}
	}
	return nil
}

// value evaluates a parameter at the given engine time.
func (b *base) value(name string, t float64) float64 {
	return b.params[name].Value(t)
}

// transparentAt reports whether every parameter sits at its default, in
// which case the effect must not color the signal at all.
func (b *base) transparentAt(t float64) bool {
	for name, def := range b.defaults {
		if b.params[name].Value(t) != def {
			return false
		}
	}
	return true
}

// passthrough accepts scheduled updates but never touches the audio.
type passthrough struct{ base }

func (p *passthrough) Process(buf []float32, from int64) {}
