package engine

import (
	"fmt"
	"sync"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
	"github.com/cadenza-audio/cadenza/codec"
	"github.com/cadenza-audio/cadenza/midi"
)

// Recording is the handle every recorder returns: finalize it, wait for
// completion, then pull the encoded bytes.
type Recording interface {
	Finalize() error
	NotifyWhenComplete(func())
	GetEncodedData(typ cadenza.EncodingType) ([]byte, error)
}

// AudioClip captures rendered output over a clock window. With a
// duration it completes on its own when the window passes; otherwise it
// records until finalized.
type AudioClip struct {
	mu        sync.Mutex
	start     float64
	duration  float64 // 0 = until finalized
	data      []float32
	finalized bool
	callbacks []func()
}

func newAudioClip(start, duration float64) *AudioClip {
	return &AudioClip{start: start, duration: duration}
}

// capture appends the window's share of a rendered block. It reports
// false once the clip is complete so the render loop drops the tap.
func (c *AudioClip) capture(block []float32, from int64) bool {
	c.mu.Lock()
	frames := len(block) / audio.Channels
	for i := 0; i < frames; i++ {
		t := audio.FrameSeconds(from + int64(i))
		if t < c.start {
			continue
		}
		if c.finalized || (c.duration > 0 && t >= c.start+c.duration) {
			c.completeLocked()
			c.mu.Unlock()
			return false
		}
		c.data = append(c.data, block[audio.Channels*i], block[audio.Channels*i+1])
	}
	done := c.finalized
	c.mu.Unlock()
	return !done
}

func (c *AudioClip) completeLocked() {
	if c.finalized {
		return
	}
	c.finalized = true
	if c.duration == 0 {
		c.duration = float64(len(c.data)/audio.Channels) / audio.SampleRate
	}
	for _, cb := range c.callbacks {
		cb()
	}
	c.callbacks = nil
}

// Finalize ends the recording at whatever has been captured so far.
// Finalizing twice is an error.
func (c *AudioClip) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return fmt.Errorf("%w: clip already finalized", cadenza.ErrRecording)
	}
	c.duration = 0
	c.completeLocked()
	return nil
}

// NotifyWhenComplete registers a completion callback; an already
// complete clip fires it immediately.
func (c *AudioClip) NotifyWhenComplete(cb func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		cb()
		return
	}
	c.callbacks = append(c.callbacks, cb)
}

// Duration returns the captured length in seconds.
func (c *AudioClip) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(len(c.data)/audio.Channels) / audio.SampleRate
}

// GetEncodedData encodes the captured audio; the clip must be finalized
// first.
func (c *AudioClip) GetEncodedData(typ cadenza.EncodingType) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finalized {
		return nil, fmt.Errorf("%w: clip not finalized", cadenza.ErrRecording)
	}
	enc, err := codec.Encoder(typ)
	if err != nil {
		return nil, err
	}
	return enc.Encode(&cadenza.Buffer{
		Data:       c.data,
		Channels:   audio.Channels,
		SampleRate: audio.SampleRate,
	})
}

// captureAll feeds a block to every tap and drops the completed ones.
func captureAll(recorders []*AudioClip, block []float32, from int64) []*AudioClip {
	kept := recorders[:0]
	for _, r := range recorders {
		if r.capture(block, from) {
			kept = append(kept, r)
		}
	}
	return kept
}

// MidiClip is a log of device events keyed relative to the recording
// start. Once finalized it is immutable and can be replayed through
// PlayMidiClip or rendered offline to encoded audio.
type MidiClip struct {
	mu        sync.Mutex
	track     *Track
	start     float64
	duration  float64 // 0 = until finalized
	events    []midi.Event
	finalized bool
	callbacks []func()
	unsub     func()
}

func newMidiClip(t *Track, start, duration float64) *MidiClip {
	return &MidiClip{track: t, start: start, duration: duration}
}

// handle is the device subscriber: it retains events inside the window,
// rekeyed to the clip start.
func (c *MidiClip) handle(ev midi.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return
	}
	rel := ev.Time - c.start
	if rel < 0 || (c.duration > 0 && rel >= c.duration) {
		return
	}
	c.events = append(c.events, midi.Event{Time: rel, Message: ev.Message})
}

// Finalize unsubscribes from the device, fixes the clip duration (the
// requested window, or the elapsed time when none was given) and fires
// the completion callbacks. Finalizing twice is an error.
func (c *MidiClip) Finalize() error {
	elapsed := c.track.engine.Now() - c.start
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return fmt.Errorf("%w: clip already finalized", cadenza.ErrRecording)
	}
	c.finalized = true
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	if c.duration == 0 {
		if elapsed < 0 {
			elapsed = 0
		}
		c.duration = elapsed
	}
	for _, cb := range c.callbacks {
		cb()
	}
	c.callbacks = nil
	return nil
}

// NotifyWhenComplete registers a completion callback; an already
// finalized clip fires it immediately.
func (c *MidiClip) NotifyWhenComplete(cb func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		cb()
		return
	}
	c.callbacks = append(c.callbacks, cb)
}

// Duration returns the clip length in seconds, 0 before finalization of
// an open-ended recording.
func (c *MidiClip) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Events returns a copy of the recorded log.
func (c *MidiClip) Events() []midi.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]midi.Event(nil), c.events...)
}

// noteDetails pairs the log's note-ons with their note-offs, clamping
// note ends to maxDuration when non-zero. Unmatched note-ons are held to
// the clip end.
func (c *MidiClip) noteDetails(maxDuration float64) []cadenza.NoteDetails {
	c.mu.Lock()
	defer c.mu.Unlock()
	type held struct {
		onTime   float64
		velocity cadenza.Velocity
	}
	pending := map[cadenza.Note]held{}
	var details []cadenza.NoteDetails
	emit := func(pitch cadenza.Note, h held, offTime float64) {
		if maxDuration > 0 && offTime > maxDuration {
			offTime = maxDuration
		}
		if offTime <= h.onTime {
			return
		}
		details = append(details, cadenza.NoteDetails{
			Note:        pitch,
			Velocity:    h.velocity,
			Duration:    cadenza.SecondsSpan(offTime - h.onTime),
			StartOffset: h.onTime,
		})
	}
	for _, ev := range c.events {
		m := ev.Message
		switch {
		case m.IsNoteOn():
			if _, dup := pending[m.Pitch()]; !dup {
				pending[m.Pitch()] = held{onTime: ev.Time, velocity: m.Velocity()}
			}
		case m.IsNoteOff():
			if h, ok := pending[m.Pitch()]; ok {
				delete(pending, m.Pitch())
				emit(m.Pitch(), h, ev.Time)
			}
		}
	}
	for pitch, h := range pending {
		emit(pitch, h, c.duration)
	}
	return details
}

// GetEncodedData renders the clip offline through the track's instrument
// and encodes the result. The clip must be finalized first.
func (c *MidiClip) GetEncodedData(typ cadenza.EncodingType) ([]byte, error) {
	c.mu.Lock()
	finalized, duration := c.finalized, c.duration
	c.mu.Unlock()
	if !finalized {
		return nil, fmt.Errorf("%w: clip not finalized", cadenza.ErrRecording)
	}
	ins := c.track.Instrument()
	if ins == nil {
		return nil, fmt.Errorf("%w: track %q has no instrument to render with",
			cadenza.ErrInstrument, c.track.Name())
	}
	tempo := c.track.engine.Tempo()
	rack := &voiceRack{}
	for _, d := range c.noteDetails(duration) {
		src, err := ins.GetNote(d.Note, audio.SampleRate)
		if err != nil {
			return nil, err
		}
		stop := d.StartOffset + d.Duration.Seconds(tempo)
		gain := audio.NewParam(0)
		gain.SetValueAt(float64(d.Velocity), d.StartOffset)
		gain.SetTargetAt(0, stop-releaseTau, releaseTau)
		rack.voices = append(rack.voices, audio.NewVoice(src, gain,
			audio.SecondsFrames(d.StartOffset), audio.SecondsFrames(stop)))
	}
	rendered := audio.Render(rack, int(audio.SecondsFrames(duration)))
	enc, err := codec.Encoder(typ)
	if err != nil {
		return nil, err
	}
	return enc.Encode(rendered)
}

// voiceRack renders a fixed set of scheduled voices headlessly, the
// offline counterpart of a track's render loop.
type voiceRack struct {
	voices []*audio.Voice
	frame  int64
}

func (r *voiceRack) Process(dst []float32) {
	for _, v := range r.voices {
		v.Mix(dst, r.frame)
	}
	r.frame += int64(len(dst) / audio.Channels)
}
