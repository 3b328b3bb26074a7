// Package engine implements the scheduling kernel and the track engine:
// a pull-model stereo renderer with a frame-accurate clock, per-track
// voices and effect chains, a master bus with compressor and gain ramps,
// and MIDI/audio clip recording. The platform adapter (or a test) pulls
// blocks through Process; everything else is scheduled against the frame
// clock, so rendering is deterministic.
package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
	"github.com/cadenza-audio/cadenza/midi"
)

const (
	// master gain ramp on start/stop
	lifecycleRamp = 0.010
	// delay between the stop ramp and the clock freeze, and between an
	// async voice's release ramp and its source stop
	tailGrace = 0.200
	// per-voice release time constant
	releaseTau = 0.030
)

// Engine is the scheduling kernel. It renders the mix of all tracks
// through the master chain, compressor and master gain, advancing the
// global clock one block at a time. The zero state is Suspended with no
// tracks.
//
// All methods are safe for concurrent use; a single mutex serializes
// control calls against the render loop, which is what makes chain
// mutations and automation scheduling atomic per block.
type Engine struct {
	mu        sync.Mutex
	log       *zap.Logger
	frame     int64
	running   bool
	suspendAt float64 // clock time to freeze at after stop(), <0 none

	tempo cadenza.Tempo
	key   cadenza.KeySignature

	masterGain *audio.Param
	masterComp *audio.Compressor
	master     chain
	analyzer   *audio.Analyzer
	recorders  []*AudioClip

	tracks []*Track

	devices map[string]midi.Device
	unsubs  map[string]func()

	scratch []float32
}

// New creates a suspended engine at the default tempo. A nil logger
// disables logging.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		log:        log,
		suspendAt:  -1,
		tempo:      cadenza.DefaultTempo(),
		masterGain: audio.NewParam(0),
		masterComp: audio.NewCompressor(audio.SampleRate),
		analyzer:   audio.NewAnalyzer(),
		devices:    map[string]midi.Device{},
		unsubs:     map[string]func(){},
	}
}

// Now returns the engine clock in seconds. The clock counts rendered
// frames, so it freezes while suspended.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return audio.FrameSeconds(e.frame)
}

func (e *Engine) now() float64 { return audio.FrameSeconds(e.frame) }

// Running reports the lifecycle state.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start transitions to Running, ramping the master gain to unity over
// 10 ms. Starting a running engine is a no-op; starting within the stop
// grace window cancels the pending suspension, so still-pending
// scheduled events survive a stop/start pair.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running && e.suspendAt < 0 {
		return
	}
	e.suspendAt = -1
	e.running = true
	t := e.now()
	e.masterGain.SetValueAt(e.masterGain.Value(t), t)
	e.masterGain.LinearRampTo(1, t+lifecycleRamp)
	e.log.Info("engine started", zap.Float64("time", t))
}

// Stop ramps the master gain to silence over 10 ms and suspends the
// clock 200 ms later, leaving scheduled events and automations queued.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	t := e.now()
	e.masterGain.SetValueAt(e.masterGain.Value(t), t)
	e.masterGain.LinearRampTo(0, t+lifecycleRamp)
	e.suspendAt = t + tailGrace
	e.log.Info("engine stopping", zap.Float64("time", t))
}

// UpdateTempo replaces the provided tempo fields (zero keeps the current
// value) and recomputes the derived measure length. In-flight scheduled
// events keep the timing they were expanded with.
func (e *Engine) UpdateTempo(beatBase int, bpm float64, tsNum, tsDen int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempo.Update(beatBase, bpm, tsNum, tsDen)
}

// Tempo returns the current tempo.
func (e *Engine) Tempo() cadenza.Tempo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempo
}

// UpdateKeySignature sets the global key by its count of fifths.
func (e *Engine) UpdateKeySignature(fifths int) error {
	if fifths < -7 || fifths > 7 {
		return fmt.Errorf("%w: key signature %d outside [-7, 7] fifths", cadenza.ErrValue, fifths)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.key = cadenza.KeySignature(fifths)
	return nil
}

// CreateTrack creates a named track, replacing any existing track of the
// same name after stopping its voices.
func (e *Engine) CreateTrack(name string) *Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.trackIndex(name); i >= 0 {
		e.tracks[i].teardown()
		e.tracks = append(e.tracks[:i], e.tracks[i+1:]...)
	}
	t := &Track{engine: e, name: name, analyzer: audio.NewAnalyzer()}
	e.tracks = append(e.tracks, t)
	e.log.Info("track created", zap.String("track", name))
	return t
}

// Track looks up a track by name.
func (e *Engine) Track(name string) (*Track, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.trackIndex(name); i >= 0 {
		return e.tracks[i], true
	}
	return nil, false
}

func (e *Engine) trackIndex(name string) int {
	for i, t := range e.tracks {
		if t.name == name {
			return i
		}
	}
	return -1
}

// RemoveTrack stops the track's voices, detaches its effects and drops
// it. Unknown names report false.
func (e *Engine) RemoveTrack(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.trackIndex(name)
	if i < 0 {
		return false
	}
	e.tracks[i].teardown()
	e.tracks = append(e.tracks[:i], e.tracks[i+1:]...)
	return true
}

// RemoveAllTracks removes every track.
func (e *Engine) RemoveAllTracks() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tracks {
		t.teardown()
	}
	e.tracks = nil
}

// ApplyMasterEffect appends an effect to the master chain, or moves an
// existing one of the same name to the end keeping its parameters.
func (e *Engine) ApplyMasterEffect(name string, typ cadenza.EffectType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master.apply(name, typ)
}

// UpdateMasterEffect schedules a parameter update on the named master
// effect; false means no effect of that name exists.
func (e *Engine) UpdateMasterEffect(name string, opts map[string]float64, at, tau float64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master.update(name, opts, at, tau)
}

// RemoveMasterEffect drops the named effect from the master chain.
func (e *Engine) RemoveMasterEffect(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master.remove(name)
}

// MasterEffects lists the master chain order.
func (e *Engine) MasterEffects() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master.names()
}

// AddMIDIDevice registers a device for track binding and callbacks.
func (e *Engine) AddMIDIDevice(d midi.Device) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.devices[d.Name()] = d
}

// MIDIDevices lists the registered device names.
func (e *Engine) MIDIDevices() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.devices))
	for name := range e.devices {
		names = append(names, name)
	}
	return names
}

// RegisterMIDICallback subscribes a raw event callback on a registered
// device, replacing any previous callback for that device.
func (e *Engine) RegisterMIDICallback(device string, cb func(midi.Event)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.devices[device]
	if !ok {
		return fmt.Errorf("%w: no MIDI device named %q", cadenza.ErrMIDI, device)
	}
	if unsub := e.unsubs[device]; unsub != nil {
		unsub()
	}
	e.unsubs[device] = d.Subscribe(cb)
	return nil
}

// DeregisterMIDICallback removes a previously registered callback.
func (e *Engine) DeregisterMIDICallback(device string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if unsub := e.unsubs[device]; unsub != nil {
		unsub()
		delete(e.unsubs, device)
	}
}

// RecordOutput taps the master bus from the current time until the
// returned clip is finalized.
func (e *Engine) RecordOutput() *AudioClip {
	e.mu.Lock()
	defer e.mu.Unlock()
	clip := newAudioClip(e.now(), 0)
	e.recorders = append(e.recorders, clip)
	return clip
}

// AnalyzeAudio samples the named track's output, or the master bus when
// track is empty. TimeSeries and PowerSpectrum return bytes, TotalPower
// returns a number.
func (e *Engine) AnalyzeAudio(typ cadenza.AnalysisType, track string) ([]byte, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.analyzer
	if track != "" {
		i := e.trackIndex(track)
		if i < 0 {
			return nil, 0, fmt.Errorf("%w: no track named %q", cadenza.ErrTrack, track)
		}
		a = e.tracks[i].analyzer
	}
	switch typ {
	case cadenza.AnalysisTimeSeries:
		return a.TimeSeries(), 0, nil
	case cadenza.AnalysisPowerSpectrum:
		return a.PowerSpectrum(), 0, nil
	case cadenza.AnalysisTotalPower:
		return nil, a.TotalPower(), nil
	}
	return nil, 0, fmt.Errorf("%w: unknown analysis type %d", cadenza.ErrValue, typ)
}

// Process renders one block of interleaved stereo into dst, advancing
// the clock by the block length. A suspended engine emits silence and
// leaves the clock untouched.
func (e *Engine) Process(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	audio.Zero(dst)
	if !e.running {
		return
	}
	from := e.frame
	frames := len(dst) / audio.Channels
	if cap(e.scratch) < len(dst) {
		e.scratch = make([]float32, len(dst))
	}
	scratch := e.scratch[:len(dst)]
	for _, t := range e.tracks {
		t.process(dst, scratch, from)
	}
	e.master.process(dst, from)
	e.masterComp.Process(dst)
	for i := 0; i < frames; i++ {
		g := float32(e.masterGain.Value(audio.FrameSeconds(from + int64(i))))
		dst[audio.Channels*i] *= g
		dst[audio.Channels*i+1] *= g
	}
	audio.Clamp(dst)
	e.analyzer.Write(dst)
	e.recorders = captureAll(e.recorders, dst, from)
	e.frame += int64(frames)
	if e.suspendAt >= 0 && e.now() >= e.suspendAt {
		e.running = false
		e.suspendAt = -1
		e.log.Info("engine suspended", zap.Float64("time", e.now()))
	}
}
