package instrument

import (
	"fmt"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
	"github.com/cadenza-audio/cadenza/codec"
)

// noteSlot is one pitch's playback recipe: a shared sample buffer with a
// cent detune, or nil for the oscillator fallback.
type noteSlot struct {
	buffer             *cadenza.Buffer
	detuneCents        float64
	loop               bool
	loopStart, loopEnd float64
}

// Instrument resolves any pitch in its valid range to a fresh voice
// source. It is read-only after construction and may back several tracks
// at once.
type Instrument struct {
	name     string
	min, max cadenza.Note
	slots    [int(cadenza.NoteMax) + 1]*noteSlot
}

// New creates a pure-oscillator instrument covering the whole pitch
// range, used when no sample container is supplied.
func New(name string) *Instrument {
	return &Instrument{name: name, min: cadenza.NoteMin, max: cadenza.NoteMax}
}

// FromContainer decodes a parsed container into a playable instrument.
// A nil decoder selects the built-in gzipped-PCM path; Webm/Opus
// containers need a container-aware decoder collaborator.
func FromContainer(c *Container, decoder cadenza.Decoder) (*Instrument, error) {
	if decoder == nil {
		if c.Metadata.Format != FormatPCM {
			return nil, fmt.Errorf("%w: no decoder registered for payload format %d",
				cadenza.ErrInstrument, c.Metadata.Format)
		}
		decoder = codec.PCMDecoder{SampleRate: c.Metadata.SampleRate}
	}
	ins := &Instrument{
		name: c.Metadata.Name,
		min:  c.Metadata.MinValidNote,
		max:  c.Metadata.MaxValidNote,
	}
	sampled := map[cadenza.Note]*cadenza.Buffer{}
	for _, e := range c.Entries {
		if !e.Midi.Valid() || e.Midi == cadenza.REST {
			return nil, fmt.Errorf("%w: note entry pitch %d outside the playable range",
				cadenza.ErrInstrument, e.Midi)
		}
		buffer, err := decoder.Decode(e.Data)
		if err != nil {
			return nil, fmt.Errorf("decoding sample for %v: %w", e.Midi, err)
		}
		sampled[e.Midi] = buffer
	}
	if len(sampled) == 0 {
		return ins, nil
	}
	for pitch := cadenza.NoteMin; pitch <= cadenza.NoteMax; pitch++ {
		neighbor := nearestSampled(sampled, pitch)
		buffer := sampled[neighbor]
		slot := &noteSlot{
			buffer:      buffer,
			detuneCents: 100 * float64(pitch-neighbor),
		}
		if !c.Metadata.SustainedNotesDecay {
			slot.loop = true
			slot.loopEnd = buffer.Duration()
			slot.loopStart = slot.loopEnd - 1
			if slot.loopStart < 0 {
				slot.loopStart = 0
			}
		}
		ins.slots[pitch] = slot
	}
	return ins, nil
}

// nearestSampled finds the closest pitch with its own sample, preferring
// the lower neighbor on ties.
func nearestSampled(sampled map[cadenza.Note]*cadenza.Buffer, pitch cadenza.Note) cadenza.Note {
	best := cadenza.Note(-1)
	bestDist := int(cadenza.NoteMax) + 1
	for candidate := range sampled {
		dist := int(pitch - candidate)
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist || (dist == bestDist && candidate < best) {
			best, bestDist = candidate, dist
		}
	}
	return best
}

// Name returns the instrument's display name.
func (ins *Instrument) Name() string { return ins.name }

// Range returns the instrument's valid pitch range.
func (ins *Instrument) Range() (min, max cadenza.Note) { return ins.min, ins.max }

// GetNote creates a fresh single-shot voice source for a pitch at the
// given engine rate. The rate parameter keeps the factory usable against
// both the realtime graph and offline render contexts.
func (ins *Instrument) GetNote(pitch cadenza.Note, sampleRate int) (audio.Source, error) {
	if pitch < ins.min || pitch > ins.max {
		return nil, fmt.Errorf("%w: pitch %v outside instrument %q range [%v, %v]",
			cadenza.ErrInstrument, pitch, ins.name, ins.min, ins.max)
	}
	slot := ins.slots[pitch]
	if slot == nil {
		return audio.NewOscillator(pitch.Frequency(), sampleRate), nil
	}
	src := audio.NewBufferSource(slot.buffer, slot.detuneCents, sampleRate)
	if slot.loop {
		src.SetLoop(slot.loopStart, slot.loopEnd)
	}
	return src, nil
}

// Detune returns the cent offset the given pitch plays at, for
// inspection and tests.
func (ins *Instrument) Detune(pitch cadenza.Note) float64 {
	if slot := ins.slots[pitch]; slot != nil {
		return slot.detuneCents
	}
	return 0
}
