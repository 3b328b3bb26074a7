package engine

import (
	"context"
	"fmt"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/effect"
	"github.com/cadenza-audio/cadenza/instrument"
	"github.com/cadenza-audio/cadenza/version"
)

// Version reports the build version, falling back to the VCS hash.
func Version() string {
	if version.VersionOrHash != "" {
		return version.VersionOrHash
	}
	return "dev"
}

// The catalog accessors expose the domain vocabulary by name, for UIs
// and serialized scores. The returned maps are the live catalogs and
// must not be mutated.

func AvailableNotes() map[string]cadenza.Note              { return cadenza.Notes }
func AvailableNoteDurations() map[string]cadenza.Duration  { return cadenza.Durations }
func AvailableKeySignatures() map[string]cadenza.KeySignature {
	return cadenza.KeySignatures
}
func AvailableNoteModifications() map[string]cadenza.ModificationType {
	return cadenza.ModificationTypes
}
func AvailableEffects() map[string]cadenza.EffectType       { return cadenza.EffectTypes }
func AvailableAnalysisTypes() map[string]cadenza.AnalysisType {
	return cadenza.AnalysisTypes
}
func AvailableEncoders() map[string]cadenza.EncodingType { return cadenza.EncodingTypes }

// AvailableAudioInputDevices lists capture devices. The shipped backend
// is output-only, so the list is empty.
func AvailableAudioInputDevices() []string { return nil }

// AvailableEffectParameters returns the schema of an effect type.
func AvailableEffectParameters(typ cadenza.EffectType) []effect.Parameter {
	return effect.Parameters(typ)
}

// AvailableInstruments lists the instrument names a library serves.
func AvailableInstruments(ctx context.Context, libraryBaseURL string) ([]string, error) {
	library, err := instrument.FetchLibrary(ctx, libraryBaseURL)
	if err != nil {
		return nil, err
	}
	return instrument.Names(library), nil
}

// LoadInstrument fetches and decodes one instrument from a library by
// its manifest name.
func LoadInstrument(ctx context.Context, libraryBaseURL, name string) (*instrument.Instrument, error) {
	library, err := instrument.FetchLibrary(ctx, libraryBaseURL)
	if err != nil {
		return nil, err
	}
	url, ok := library[name]
	if !ok {
		return nil, fmt.Errorf("%w: library has no instrument named %q", cadenza.ErrInstrument, name)
	}
	container, err := instrument.FetchContainer(ctx, url)
	if err != nil {
		return nil, err
	}
	return instrument.FromContainer(container, nil)
}
