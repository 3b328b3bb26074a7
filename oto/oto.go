// Package oto plays the engine's output in real time through the
// ebitengine/oto/v3 backend. The player pulls: every read converts one
// block of the engine's float32 stereo stream to the wire format, so
// engine time advances exactly as fast as the device consumes audio.
package oto

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	oto "github.com/ebitengine/oto/v3"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
)

// DefaultDevice is the only output oto exposes; the backend always
// follows the system default.
const DefaultDevice = "default"

// Devices lists the available output device names.
func Devices() []string { return []string{DefaultDevice} }

// SelectDevice validates an output device choice.
func SelectDevice(name string) error {
	if name != DefaultDevice {
		return fmt.Errorf("%w: no audio output named %q", cadenza.ErrDevice, name)
	}
	return nil
}

// streamReader adapts a pull-model sample source to the byte stream the
// oto player consumes.
type streamReader struct {
	mu     sync.Mutex
	source audio.SampleSource
	buf    []float32
}

func (r *streamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frames := len(p) / (4 * audio.Channels)
	if frames == 0 {
		return 0, nil
	}
	need := frames * audio.Channels
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return need * 4, nil
}

// Player streams a source to the default output device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewPlayer opens the audio backend at the engine rate and prepares a
// player over the source. The call blocks until the backend is ready.
func NewPlayer(source audio.SampleSource) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.Channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening audio output: %v", cadenza.ErrDevice, err)
	}
	<-ready
	return &Player{ctx: ctx, player: ctx.NewPlayer(&streamReader{source: source})}, nil
}

// Play starts pulling from the source.
func (p *Player) Play() { p.player.Play() }

// Pause stops pulling without dropping the device.
func (p *Player) Pause() { p.player.Pause() }

// Playing reports whether the device is consuming audio.
func (p *Player) Playing() bool { return p.player.IsPlaying() }

// Close releases the player.
func (p *Player) Close() error {
	p.player.Pause()
	return p.player.Close()
}
