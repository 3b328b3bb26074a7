package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
	"github.com/cadenza-audio/cadenza/codec"
	"github.com/cadenza-audio/cadenza/instrument"
	"github.com/cadenza-audio/cadenza/midi"
	"github.com/cadenza-audio/cadenza/mods"
)

const defaultVelocity = 0.75

// Track is one named lane of the mix: an optional instrument, an ordered
// effect chain, sync voices scheduled against the clock and async voices
// stopped on demand. Tracks are created and owned by an Engine; methods
// lock the engine mutex, so they are safe from any goroutine including
// MIDI dispatch.
type Track struct {
	engine     *Engine
	name       string
	instrument *instrument.Instrument
	chain      chain

	voices     []*audio.Voice
	async      []*asyncVoice
	nextHandle int

	device midi.Device
	unbind func()

	analyzer  *audio.Analyzer
	recorders []*AudioClip
}

// asyncVoice ties a handle and a pitch to a running voice so MIDI
// note-offs can find it. First-match lookup is a linear scan; the set is
// the count of simultaneously held keys.
type asyncVoice struct {
	handle int
	pitch  cadenza.Note
	voice  *audio.Voice
}

// Name returns the track name.
func (t *Track) Name() string { return t.name }

// SetInstrument installs the instrument new notes play with. Voices
// already scheduled keep the sources they were created from.
func (t *Track) SetInstrument(ins *instrument.Instrument) {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	t.instrument = ins
}

// ClearInstrument detaches the instrument; subsequent notes are silent.
func (t *Track) ClearInstrument() {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	t.instrument = nil
}

// Instrument returns the installed instrument, nil when none.
func (t *Track) Instrument() *instrument.Instrument {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	return t.instrument
}

// PlayNote expands the note through its modifications and schedules the
// resulting sub-notes at the given clock time. It returns the seconds
// the note's slot occupies; a track without an instrument schedules
// nothing and returns 0. Sub-notes whose start has already passed emit
// no audio but are not an error.
func (t *Track) PlayNote(pitch cadenza.Note, velocity cadenza.Velocity, at float64, d cadenza.Duration, modifications ...mods.Modification) (float64, error) {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.instrument == nil {
		return 0, nil
	}
	details, err := mods.Compose(e.tempo, e.key, cadenza.PlainNote(pitch, velocity, d), modifications)
	if err != nil {
		return 0, err
	}
	return t.scheduleDetails(details, at)
}

// PlaySequence expands a note sequence, applying the sequence-context
// modifications (slurs, ties, dynamic ramps, inferred ornaments) across
// it, and schedules every sub-note relative to the given start time.
// Returns the sequence's total slot length in seconds.
func (t *Track) PlaySequence(seq []mods.Element, at float64, seqMods ...mods.Modification) (float64, error) {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.instrument == nil {
		return 0, nil
	}
	expansions, total, err := mods.ExpandSequence(e.tempo, e.key, seq, defaultVelocity, seqMods)
	if err != nil {
		return 0, err
	}
	var flat []cadenza.NoteDetails
	for _, x := range expansions {
		flat = append(flat, x.Notes...)
	}
	if _, err := t.scheduleDetails(flat, at); err != nil {
		return 0, err
	}
	return total, nil
}

// scheduleDetails commits a batch of expanded sub-notes. Sources are
// acquired before any voice is created, so a range violation leaves the
// track untouched. Caller holds the engine mutex.
func (t *Track) scheduleDetails(details []cadenza.NoteDetails, at float64) (float64, error) {
	e := t.engine
	type pending struct {
		src            audio.Source
		start, sounded float64
		velocity       cadenza.Velocity
	}
	var commit []pending
	total := 0.0
	for _, d := range details {
		if end := d.StartOffset + d.SlotSeconds(e.tempo); end > total {
			total = end
		}
		if d.Note == cadenza.REST {
			continue
		}
		start := at + d.StartOffset
		sounded := d.Duration.Seconds(e.tempo)
		if sounded <= 0 || start < e.now() {
			continue
		}
		src, err := t.instrument.GetNote(d.Note, audio.SampleRate)
		if err != nil {
			return 0, err
		}
		commit = append(commit, pending{src, start, sounded, d.Velocity})
	}
	for _, p := range commit {
		gain := audio.NewParam(0)
		gain.SetValueAt(float64(p.velocity), p.start)
		gain.SetTargetAt(0, p.start+p.sounded-releaseTau, releaseTau)
		v := audio.NewVoice(p.src, gain,
			audio.SecondsFrames(p.start), audio.SecondsFrames(p.start+p.sounded))
		t.voices = append(t.voices, v)
	}
	return total, nil
}

// StartNote begins an unscheduled voice at the current time and returns
// its handle, -1 when the track has no instrument. The voice plays until
// StopNote or until its source exhausts.
func (t *Track) StartNote(pitch cadenza.Note, velocity cadenza.Velocity) (int, error) {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.instrument == nil {
		return -1, nil
	}
	src, err := t.instrument.GetNote(pitch, audio.SampleRate)
	if err != nil {
		return -1, err
	}
	now := e.now()
	gain := audio.NewParam(0)
	gain.SetValueAt(float64(velocity), now)
	v := audio.NewVoice(src, gain, e.frame, -1)
	t.voices = append(t.voices, v)
	h := t.nextHandle
	t.nextHandle++
	t.async = append(t.async, &asyncVoice{handle: h, pitch: pitch, voice: v})
	return h, nil
}

// StopNote releases an async voice: a 30 ms gain ramp now, the source
// stop 200 ms later. The handle is retired immediately; unknown handles
// report false.
func (t *Track) StopNote(handle int) bool {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, a := range t.async {
		if a.handle == handle {
			t.releaseLocked(a)
			t.async = append(t.async[:i], t.async[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Track) releaseLocked(a *asyncVoice) {
	now := t.engine.now()
	a.voice.Gain().SetTargetAt(0, now, releaseTau)
	a.voice.StopAt(audio.SecondsFrames(now + tailGrace))
}

// stopNoteByPitch releases the first async voice holding the pitch.
func (t *Track) stopNoteByPitch(pitch cadenza.Note) bool {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, a := range t.async {
		if a.pitch == pitch {
			t.releaseLocked(a)
			t.async = append(t.async[:i], t.async[i+1:]...)
			return true
		}
	}
	return false
}

// BindMIDIDevice routes the device's note stream into the track: note-on
// starts an async voice, note-off releases the first voice holding that
// pitch. Rebinding replaces the previous subscription.
func (t *Track) BindMIDIDevice(d midi.Device) {
	t.engine.mu.Lock()
	if t.unbind != nil {
		t.unbind()
	}
	t.device = d
	t.engine.mu.Unlock()
	unbind := d.Subscribe(func(ev midi.Event) {
		m := ev.Message
		switch {
		case m.IsNoteOn():
			if _, err := t.StartNote(m.Pitch(), m.Velocity()); err != nil {
				t.engine.log.Warn("MIDI note rejected",
					zap.String("track", t.name), zap.Stringer("message", m), zap.Error(err))
			}
		case m.IsNoteOff():
			t.stopNoteByPitch(m.Pitch())
		}
	})
	t.engine.mu.Lock()
	t.unbind = unbind
	t.engine.mu.Unlock()
}

// UnbindMIDIDevice detaches the bound device, if any.
func (t *Track) UnbindMIDIDevice() {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	if t.unbind != nil {
		t.unbind()
		t.unbind = nil
	}
	t.device = nil
}

// PlayBuffer schedules a decoded clip at the given time. When a duration
// is supplied the clip is truncated with the same 30 ms tail ramp notes
// get; the return value is the seconds actually played.
func (t *Track) PlayBuffer(buffer *cadenza.Buffer, at, duration float64) (float64, error) {
	if err := buffer.Validate(); err != nil {
		return 0, err
	}
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	played := buffer.Duration()
	if duration > 0 && duration < played {
		played = duration
	}
	if played <= 0 || at < e.now() {
		return played, nil
	}
	gain := audio.NewParam(0)
	gain.SetValueAt(1, at)
	if duration > 0 {
		gain.SetTargetAt(0, at+played-releaseTau, releaseTau)
	}
	v := audio.NewVoice(audio.NewBufferSliceSource(buffer), gain,
		audio.SecondsFrames(at), audio.SecondsFrames(at+played))
	t.voices = append(t.voices, v)
	return played, nil
}

// PlayClip decodes encoded audio bytes and schedules the result.
func (t *Track) PlayClip(data []byte, at, duration float64) (float64, error) {
	buffer, err := codec.WAVDecoder{}.Decode(data)
	if err != nil {
		return 0, err
	}
	return t.PlayBuffer(buffer, at, duration)
}

// PlayFile fetches a clip over HTTP and schedules it. The fetch happens
// on the caller's goroutine; only the scheduling takes the engine lock.
func (t *Track) PlayFile(ctx context.Context, url string, at, duration float64) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching %s: status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	return t.PlayClip(data, at, duration)
}

// PlayMidiClip replays a recorded clip through the current instrument:
// each matched note-on/note-off pair becomes one scheduled note. Returns
// the clip length played, clamped to the given duration when non-zero.
func (t *Track) PlayMidiClip(clip *MidiClip, at, duration float64) (float64, error) {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.instrument == nil {
		return 0, nil
	}
	total := clip.Duration()
	if duration > 0 && duration < total {
		total = duration
	}
	details := clip.noteDetails(duration)
	if _, err := t.scheduleDetails(details, at); err != nil {
		return 0, err
	}
	return total, nil
}

// RecordMidiClip captures the bound device's events whose arrival time
// falls in [at, at+duration), or indefinitely when duration is 0, until
// the clip is finalized. Recording without a bound device is an error.
func (t *Track) RecordMidiClip(at, duration float64) (*MidiClip, error) {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.device == nil {
		return nil, fmt.Errorf("%w: track %q has no MIDI device bound", cadenza.ErrMIDI, t.name)
	}
	clip := newMidiClip(t, at, duration)
	clip.unsub = t.device.Subscribe(clip.handle)
	return clip, nil
}

// RecordAudioClip taps the track's post-chain output over the given
// window. With duration 0 the clip runs until finalized.
func (t *Track) RecordAudioClip(at, duration float64) *AudioClip {
	e := t.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	clip := newAudioClip(at, duration)
	t.recorders = append(t.recorders, clip)
	return clip
}

// ConnectAudioInput binds a capture device to the track. The shipped
// output backend enumerates no capture devices, so every name fails
// with a device error.
func (t *Track) ConnectAudioInput(name string) error {
	return fmt.Errorf("%w: no audio input named %q", cadenza.ErrDevice, name)
}

// DisconnectAudioInput detaches the capture device, if any.
func (t *Track) DisconnectAudioInput() {}

// ApplyEffect appends an effect to the track chain, or moves an existing
// one of the same name to the end keeping its parameters.
func (t *Track) ApplyEffect(name string, typ cadenza.EffectType) error {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	return t.chain.apply(name, typ)
}

// UpdateEffect schedules a parameter update on the named effect; false
// means no effect of that name exists on this track.
func (t *Track) UpdateEffect(name string, opts map[string]float64, at, tau float64) (bool, error) {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	return t.chain.update(name, opts, at, tau)
}

// RemoveEffect drops the named effect from the track chain.
func (t *Track) RemoveEffect(name string) bool {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	return t.chain.remove(name)
}

// Effects lists the track chain order.
func (t *Track) Effects() []string {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	return t.chain.names()
}

// Voices reports the number of live voices, for inspection and tests.
func (t *Track) Voices() int {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()
	return len(t.voices)
}

// teardown stops every voice and detaches effects and the MIDI device.
// Caller holds the engine mutex.
func (t *Track) teardown() {
	now := t.engine.now()
	stopFrame := audio.SecondsFrames(now)
	for _, v := range t.voices {
		v.StopAt(stopFrame)
	}
	t.voices = nil
	t.async = nil
	t.chain.effects = nil
	if t.unbind != nil {
		t.unbind()
		t.unbind = nil
	}
	t.device = nil
}

// process renders the track's block into scratch, runs the chain, feeds
// the analyzer and recorders, and adds the result into the mix. Caller
// holds the engine mutex.
func (t *Track) process(dst, scratch []float32, from int64) {
	audio.Zero(scratch)
	kept := t.voices[:0]
	for _, v := range t.voices {
		v.Mix(scratch, from)
		if !v.Done() {
			kept = append(kept, v)
		}
	}
	t.voices = kept
	keptAsync := t.async[:0]
	for _, a := range t.async {
		if !a.voice.Done() {
			keptAsync = append(keptAsync, a)
		}
	}
	t.async = keptAsync
	t.chain.process(scratch, from)
	t.analyzer.Write(scratch)
	t.recorders = captureAll(t.recorders, scratch, from)
	audio.Add(dst, scratch)
}
