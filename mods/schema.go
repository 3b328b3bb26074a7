package mods

import (
	"fmt"

	"github.com/cadenza-audio/cadenza"
)

type (
	// Parameter documents one parameter a modification takes, for UIs and
	// for validation of incoming parameter sets.
	Parameter struct {
		Name         string
		Type         string // "number" or "string"
		Min, Max     float64
		DefaultValue float64
	}

	// ParameterList splits a parameter set by usage context.
	ParameterList struct {
		SingleNote []string
		Sequence   []string
	}

	// Schema is the authoritative parameter schema of one modification
	// type: which parameters are required and which optional, per context.
	Schema struct {
		Required ParameterList
		Optional ParameterList
	}
)

// parameterDefs documents every parameter name used across the catalog.
var parameterDefs = map[string]Parameter{
	"velocity":       {Name: "velocity", Type: "number", Min: 0, Max: 1, DefaultValue: 0.75},
	"offset":         {Name: "offset", Type: "number", Min: -24, Max: 24},
	"degree":         {Name: "degree", Type: "number", Min: 2, Max: 16, DefaultValue: 3},
	"gracePitch":     {Name: "gracePitch", Type: "number", Min: float64(cadenza.NoteMin), Max: float64(cadenza.NoteMax)},
	"nextNoteValue":  {Name: "nextNoteValue", Type: "number", Min: float64(cadenza.NoteMin), Max: float64(cadenza.NoteMax)},
	"endingDynamic":  {Name: "endingDynamic", Type: "number", Min: -4, Max: 4},
	"extension":      {Name: "extension", Type: "number", Min: 1, Max: 4, DefaultValue: 2},
}

// ParameterDef looks up the definition of a schema parameter name.
func ParameterDef(name string) (Parameter, bool) {
	p, ok := parameterDefs[name]
	return p, ok
}

// schemas lists the parameter schema per modification type. Types not
// listed take no parameters.
var schemas = map[cadenza.ModificationType]Schema{
	cadenza.ModVelocity: {
		Required: ParameterList{SingleNote: []string{"velocity"}, Sequence: []string{"velocity"}},
	},
	cadenza.ModTrillUpper:   {Optional: ParameterList{SingleNote: []string{"offset"}, Sequence: []string{"offset"}}},
	cadenza.ModTrillLower:   {Optional: ParameterList{SingleNote: []string{"offset"}, Sequence: []string{"offset"}}},
	cadenza.ModMordentUpper: {Optional: ParameterList{SingleNote: []string{"offset"}, Sequence: []string{"offset"}}},
	cadenza.ModMordentLower: {Optional: ParameterList{SingleNote: []string{"offset"}, Sequence: []string{"offset"}}},
	cadenza.ModGraceAcciaccatura: {
		Required: ParameterList{SingleNote: []string{"gracePitch"}, Sequence: []string{"gracePitch"}},
	},
	cadenza.ModGraceAppoggiatura: {
		Required: ParameterList{SingleNote: []string{"gracePitch"}, Sequence: []string{"gracePitch"}},
	},
	cadenza.ModTuplet: {
		Required: ParameterList{SingleNote: []string{"degree"}, Sequence: []string{"degree"}},
	},
	cadenza.ModPortamento: {
		Required: ParameterList{SingleNote: []string{"nextNoteValue"}},
	},
	cadenza.ModGlissando: {
		Required: ParameterList{SingleNote: []string{"nextNoteValue"}},
	},
	cadenza.ModCrescendo: {
		Required: ParameterList{Sequence: []string{"endingDynamic"}},
	},
	cadenza.ModDecrescendo: {
		Required: ParameterList{Sequence: []string{"endingDynamic"}},
	},
	cadenza.ModFermata: {Optional: ParameterList{SingleNote: []string{"extension"}, Sequence: []string{"extension"}}},
}

// GetParameters returns the schema of a modification type.
func GetParameters(typ cadenza.ModificationType) Schema {
	return schemas[typ]
}

// CanModifySequence reports whether the modification may be applied to a
// whole sequence rather than a single note.
func CanModifySequence(typ cadenza.ModificationType) bool {
	switch typ {
	case cadenza.ModSlur, cadenza.ModTie, cadenza.ModCrescendo, cadenza.ModDecrescendo,
		cadenza.ModOctaveShiftUp, cadenza.ModOctaveShiftDown,
		cadenza.ModPortamento, cadenza.ModGlissando, cadenza.ModFermata,
		cadenza.ModTuplet, cadenza.ModTriplet, cadenza.ModQuintuplet,
		cadenza.ModSextuplet, cadenza.ModSeptuplet:
		return true
	}
	return false
}

// sequenceOnly marks modifications that have no single-note meaning.
func sequenceOnly(typ cadenza.ModificationType) bool {
	switch typ {
	case cadenza.ModSlur, cadenza.ModTie, cadenza.ModCrescendo, cadenza.ModDecrescendo:
		return true
	}
	return false
}

// InferParameters pulls the parameters a sequence-applied ornament needs
// from its position in the sequence: portamento and glissando read the next
// element's first pitch; everything else passes the carry through.
func InferParameters(typ cadenza.ModificationType, seq []Element, index int, carry Params) Params {
	switch typ {
	case cadenza.ModPortamento, cadenza.ModGlissando:
		inferred := Params{}
		for k, v := range carry {
			inferred[k] = v
		}
		if index+1 < len(seq) && len(seq[index+1].Notes) > 0 {
			inferred["nextNoteValue"] = float64(seq[index+1].Notes[0].Note)
		}
		return inferred
	}
	return carry
}

// incompatibility buckets: two modifications sharing a bucket cannot be
// composed on the same note.
var buckets = map[cadenza.ModificationType]string{
	cadenza.ModAccent:    "accent",
	cadenza.ModSforzando: "accent",
	cadenza.ModMarcato:   "accent",

	cadenza.ModStaccato:      "articulation",
	cadenza.ModStaccatissimo: "articulation",
	cadenza.ModTenuto:        "articulation",

	cadenza.ModVelocity:         "dynamic",
	cadenza.ModPianissississimo: "dynamic",
	cadenza.ModPianississimo:    "dynamic",
	cadenza.ModPianissimo:       "dynamic",
	cadenza.ModPiano:            "dynamic",
	cadenza.ModMezzoPiano:       "dynamic",
	cadenza.ModMezzoForte:       "dynamic",
	cadenza.ModForte:            "dynamic",
	cadenza.ModFortissimo:       "dynamic",
	cadenza.ModFortississimo:    "dynamic",

	cadenza.ModCrescendo:   "dynamicRamp",
	cadenza.ModDecrescendo: "dynamicRamp",

	cadenza.ModOctaveShiftUp:   "octave",
	cadenza.ModOctaveShiftDown: "octave",

	cadenza.ModTuplet:     "tuplet",
	cadenza.ModTriplet:    "tuplet",
	cadenza.ModQuintuplet: "tuplet",
	cadenza.ModSextuplet:  "tuplet",
	cadenza.ModSeptuplet:  "tuplet",

	cadenza.ModSlur: "connection",
	cadenza.ModTie:  "connection",

	cadenza.ModTrillUpper:        "ornament",
	cadenza.ModTrillLower:        "ornament",
	cadenza.ModMordentUpper:      "ornament",
	cadenza.ModMordentLower:      "ornament",
	cadenza.ModTurnUpper:         "ornament",
	cadenza.ModTurnLower:         "ornament",
	cadenza.ModGraceAcciaccatura: "ornament",
	cadenza.ModGraceAppoggiatura: "ornament",
	cadenza.ModPortamento:        "ornament",
	cadenza.ModGlissando:         "ornament",
}

// Incompatibilities returns the other modification types sharing a bucket
// with the given type.
func Incompatibilities(typ cadenza.ModificationType) []cadenza.ModificationType {
	bucket, ok := buckets[typ]
	if !ok {
		return nil
	}
	var out []cadenza.ModificationType
	for other, b := range buckets {
		if b == bucket && other != typ {
			out = append(out, other)
		}
	}
	return out
}

// CheckCompatible rejects combinations where two modifications intersect
// the same incompatibility bucket.
func CheckCompatible(mods []Modification) error {
	seen := map[string]cadenza.ModificationType{}
	for _, m := range mods {
		bucket, ok := buckets[m.Type()]
		if !ok {
			continue
		}
		if prev, dup := seen[bucket]; dup {
			return fmt.Errorf("%w: modifications %d and %d are incompatible (both in %s group)",
				cadenza.ErrValue, prev, m.Type(), bucket)
		}
		seen[bucket] = m.Type()
	}
	return nil
}

// validateParams checks required parameters are present and every supplied
// parameter is known and within range.
func validateParams(typ cadenza.ModificationType, params Params, sequence bool) error {
	schema := schemas[typ]
	required := schema.Required.SingleNote
	optional := schema.Optional.SingleNote
	if sequence {
		required = schema.Required.Sequence
		optional = schema.Optional.Sequence
	}
	for _, name := range required {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("%w: modification %d requires parameter %q", cadenza.ErrValue, typ, name)
		}
	}
	known := map[string]bool{}
	for _, name := range required {
		known[name] = true
	}
	for _, name := range optional {
		known[name] = true
	}
	// sequence-capable modifications accept their sequence parameters in
	// either context, since Compose receives already-inferred values
	for _, name := range schema.Required.Sequence {
		known[name] = true
	}
	for _, name := range schema.Optional.Sequence {
		known[name] = true
	}
	for name, value := range params {
		if !known[name] {
			return fmt.Errorf("%w: modification %d does not take parameter %q", cadenza.ErrValue, typ, name)
		}
		def := parameterDefs[name]
		if def.Min != 0 || def.Max != 0 {
			if value < def.Min || value > def.Max {
				return fmt.Errorf("%w: parameter %q value %g outside [%g, %g]",
					cadenza.ErrValue, name, value, def.Min, def.Max)
			}
		}
	}
	return nil
}
