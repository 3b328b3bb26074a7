package engine_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
	"github.com/cadenza-audio/cadenza/codec"
	"github.com/cadenza-audio/cadenza/engine"
	"github.com/cadenza-audio/cadenza/midi"
	"github.com/cadenza-audio/cadenza/mods"
)

func mustMod(t *testing.T, typ cadenza.ModificationType, params mods.Params) mods.Modification {
	t.Helper()
	m, err := mods.New(typ, params)
	if err != nil {
		t.Fatalf("New(%d): %v", typ, err)
	}
	return m
}

func TestMidiBindingPlaysAsyncVoices(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	dev := midi.NewVirtualDevice("virtual", e.Now)
	e.AddMIDIDevice(dev)
	track.BindMIDIDevice(dev)
	e.Start()

	dev.Send(midi.NewNoteOn(0, 60, 0.9))
	if track.Voices() != 1 {
		t.Fatalf("note-on started %d voices, expected 1", track.Voices())
	}
	out := render(e, 0.1)
	if rms(out, 0.02, 0.1) == 0 {
		t.Fatalf("async voice produced no audio")
	}
	dev.Send(midi.NewNoteOff(0, 60))
	render(e, 0.3) // release ramp plus the 200 ms grace
	if track.Voices() != 0 {
		t.Errorf("async voice still live after note-off and grace")
	}

	// note-on with zero velocity counts as note-off and starts nothing
	dev.Send(midi.NewNoteOn(0, 64, 0))
	if track.Voices() != 0 {
		t.Errorf("zero-velocity note-on started a voice")
	}

	track.UnbindMIDIDevice()
	dev.Send(midi.NewNoteOn(0, 60, 0.9))
	if track.Voices() != 0 {
		t.Errorf("unbound track still receiving MIDI")
	}
}

func TestStopNoteFirstMatchByPitch(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	dev := midi.NewVirtualDevice("virtual", e.Now)
	track.BindMIDIDevice(dev)
	e.Start()

	dev.Send(midi.NewNoteOn(0, 60, 0.9))
	dev.Send(midi.NewNoteOn(0, 60, 0.9))
	if track.Voices() != 2 {
		t.Fatalf("expected two held voices, have %d", track.Voices())
	}
	dev.Send(midi.NewNoteOff(0, 60))
	render(e, 0.3)
	if track.Voices() != 1 {
		t.Errorf("note-off released %d voices, expected exactly the first", 2-track.Voices())
	}
}

func TestStopNoteHandle(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	e.Start()
	h, err := track.StartNote(60, 0.8)
	if err != nil {
		t.Fatalf("StartNote: %v", err)
	}
	if !track.StopNote(h) {
		t.Errorf("StopNote missed a live handle")
	}
	if track.StopNote(h) {
		t.Errorf("retired handle stopped twice")
	}
	none := e.CreateTrack("empty")
	if h, err := none.StartNote(60, 0.8); err != nil || h != -1 {
		t.Errorf("StartNote without instrument = (%d, %v), expected (-1, nil)", h, err)
	}
}

func TestMidiClipRoundTrip(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	dev := midi.NewVirtualDevice("virtual", e.Now)
	track.BindMIDIDevice(dev)
	e.Start()

	clip, err := track.RecordMidiClip(0, 2)
	if err != nil {
		t.Fatalf("RecordMidiClip: %v", err)
	}
	completed := false
	clip.NotifyWhenComplete(func() { completed = true })

	dev.SendAt(midi.NewNoteOn(0, 60, 0.9), 0.5)
	dev.SendAt(midi.NewNoteOff(0, 60), 1.5)
	dev.SendAt(midi.NewNoteOn(0, 64, 0.9), 2.5) // outside the window
	if err := clip.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !completed {
		t.Errorf("completion callback not fired")
	}
	if err := clip.Finalize(); !errors.Is(err, cadenza.ErrRecording) {
		t.Errorf("second Finalize: got %v, expected ErrRecording", err)
	}
	if clip.Duration() != 2 {
		t.Errorf("clip duration %g, expected the recording window 2", clip.Duration())
	}
	if n := len(clip.Events()); n != 2 {
		t.Fatalf("clip retained %d events, expected 2", n)
	}

	// replay at 2.0: one note at 2.5 for 1 s
	played, err := track.PlayMidiClip(clip, 2.0, 0)
	if err != nil {
		t.Fatalf("PlayMidiClip: %v", err)
	}
	if played != 2 {
		t.Errorf("PlayMidiClip returned %g, expected the clip duration 2", played)
	}
	if track.Voices() != 1 {
		t.Fatalf("replay scheduled %d voices, expected 1", track.Voices())
	}
	out := render(e, 4)
	if rms(out, 2.0, 2.45) > 1e-6 {
		t.Errorf("audio before the replayed note's start")
	}
	if rms(out, 2.6, 3.4) == 0 {
		t.Errorf("replayed note produced no audio")
	}
	if tail := rms(out, 3.7, 4.0); tail > rms(out, 2.6, 3.4)/100 {
		t.Errorf("audio long after the replayed note's end: %g", tail)
	}
}

func TestRecordMidiClipRequiresDevice(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	if _, err := track.RecordMidiClip(0, 1); !errors.Is(err, cadenza.ErrMIDI) {
		t.Errorf("recording without a device: got %v, expected ErrMIDI", err)
	}
}

func TestMidiClipOfflineRender(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	dev := midi.NewVirtualDevice("virtual", e.Now)
	track.BindMIDIDevice(dev)
	clip, err := track.RecordMidiClip(0, 1)
	if err != nil {
		t.Fatalf("RecordMidiClip: %v", err)
	}
	if _, err := clip.GetEncodedData(cadenza.EncodingWAV); !errors.Is(err, cadenza.ErrRecording) {
		t.Fatalf("encode before finalize: got %v, expected ErrRecording", err)
	}
	dev.SendAt(midi.NewNoteOn(0, 69, 1), 0.1)
	dev.SendAt(midi.NewNoteOff(0, 69), 0.6)
	if err := clip.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	data, err := clip.GetEncodedData(cadenza.EncodingWAV)
	if err != nil {
		t.Fatalf("GetEncodedData: %v", err)
	}
	rendered, err := codec.WAVDecoder{}.Decode(data)
	if err != nil {
		t.Fatalf("decoding the rendered clip: %v", err)
	}
	if got := rendered.Duration(); math.Abs(got-1) > 0.01 {
		t.Errorf("rendered clip is %g s, expected 1", got)
	}
	mid := int(0.3 * audio.SampleRate * audio.Channels)
	silent := true
	for _, s := range rendered.Data[mid : mid+2000] {
		if s != 0 {
			silent = false
			break
		}
	}
	if silent {
		t.Errorf("offline render is silent while the note is held")
	}
}

func TestRecordOutputEncodesWAV(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	e.Start()
	clip := e.RecordOutput()
	if _, err := track.StartNote(69, 1); err != nil {
		t.Fatalf("StartNote: %v", err)
	}
	render(e, 0.5)
	if err := clip.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if got := clip.Duration(); math.Abs(got-0.5) > 0.02 {
		t.Errorf("captured %g s, expected 0.5", got)
	}
	data, err := clip.GetEncodedData(cadenza.EncodingWAV)
	if err != nil {
		t.Fatalf("GetEncodedData: %v", err)
	}
	buf, err := codec.WAVDecoder{}.Decode(data)
	if err != nil {
		t.Fatalf("decoding the capture: %v", err)
	}
	if buf.Channels != 2 || buf.SampleRate != audio.SampleRate {
		t.Errorf("capture is %d ch @ %d Hz, expected stereo at the engine rate", buf.Channels, buf.SampleRate)
	}
}

func TestAudioClipWindowAutoCompletes(t *testing.T) {
	e := engine.New(nil)
	track := sineTrack(t, e, "T")
	e.Start()
	clip := track.RecordAudioClip(0.1, 0.2)
	completed := false
	clip.NotifyWhenComplete(func() { completed = true })
	render(e, 0.5)
	if !completed {
		t.Fatalf("windowed clip did not complete on its own")
	}
	if got := clip.Duration(); math.Abs(got-0.2) > 0.02 {
		t.Errorf("captured %g s, expected the 0.2 s window", got)
	}
	if err := clip.Finalize(); !errors.Is(err, cadenza.ErrRecording) {
		t.Errorf("finalize after auto-completion: got %v, expected ErrRecording", err)
	}
}

func TestPlayBufferTruncates(t *testing.T) {
	e := engine.New(nil)
	track := e.CreateTrack("T")
	buf := constantBuffer(0.5, 1.0)
	got, err := track.PlayBuffer(buf, 0, 0.4)
	if err != nil {
		t.Fatalf("PlayBuffer: %v", err)
	}
	if got != 0.4 {
		t.Errorf("truncated play = %g s, expected 0.4", got)
	}
	got, err = track.PlayBuffer(buf, 0, 0)
	if err != nil {
		t.Fatalf("PlayBuffer: %v", err)
	}
	if got != 1.0 {
		t.Errorf("untruncated play = %g s, expected the clip length 1", got)
	}
}

func TestPlayClipDecodesWAV(t *testing.T) {
	e := engine.New(nil)
	track := e.CreateTrack("T")
	data, err := codec.WAVEncoder{}.Encode(constantBuffer(0.5, 0.5))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := track.PlayClip(data, 0, 0)
	if err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("PlayClip returned %g, expected 0.5", got)
	}
	if _, err := track.PlayClip([]byte("not audio"), 0, 0); err == nil {
		t.Errorf("garbage clip decoded without error")
	}
}

func TestPlaySequenceSchedulesExpansion(t *testing.T) {
	e := engine.New(nil)
	if err := e.UpdateTempo(4, 60, 4, 4); err != nil {
		t.Fatalf("UpdateTempo: %v", err)
	}
	track := sineTrack(t, e, "T")
	seq := []mods.Element{
		mods.SingleNote(60, cadenza.Quarter),
		mods.SingleNote(62, cadenza.Quarter),
		mods.SingleNote(64, cadenza.Quarter),
	}
	total, err := track.PlaySequence(seq, 0)
	if err != nil {
		t.Fatalf("PlaySequence: %v", err)
	}
	if total != 3 {
		t.Errorf("three quarters at 60 BPM = %g s, expected 3", total)
	}
	if track.Voices() != 3 {
		t.Errorf("sequence scheduled %d voices, expected 3", track.Voices())
	}
}

func TestRegisterMIDICallback(t *testing.T) {
	e := engine.New(nil)
	dev := midi.NewVirtualDevice("pad", e.Now)
	e.AddMIDIDevice(dev)
	var seen []midi.Event
	if err := e.RegisterMIDICallback("pad", func(ev midi.Event) { seen = append(seen, ev) }); err != nil {
		t.Fatalf("RegisterMIDICallback: %v", err)
	}
	dev.Send(midi.NewNoteOn(0, 60, 1))
	if len(seen) != 1 {
		t.Fatalf("callback saw %d events, expected 1", len(seen))
	}
	e.DeregisterMIDICallback("pad")
	dev.Send(midi.NewNoteOn(0, 62, 1))
	if len(seen) != 1 {
		t.Errorf("deregistered callback still receiving events")
	}
	if err := e.RegisterMIDICallback("ghost", func(midi.Event) {}); !errors.Is(err, cadenza.ErrMIDI) {
		t.Errorf("unknown device: got %v, expected ErrMIDI", err)
	}
}

func TestPlayScore(t *testing.T) {
	e := engine.New(nil)
	score := &cadenza.Score{
		BPM: 120,
		Key: "GMajor",
		Tracks: []cadenza.ScoreTrack{{
			Name: "lead",
			Effects: []cadenza.ScoreEffect{
				{Name: "vol", Type: "Volume", Params: map[string]float64{"gain": 0.8}},
			},
			Notes: []cadenza.ScoreNote{
				{Note: "C4", Duration: "Quarter"},
				{Chord: []string{"E4", "G4"}, Duration: "Half"},
			},
		}},
	}
	total, err := engine.PlayScore(e, score, nil, 0)
	if err != nil {
		t.Fatalf("PlayScore: %v", err)
	}
	if math.Abs(total-1.5) > 1e-9 {
		t.Errorf("score length %g s, expected 1.5 (quarter + half at 120 BPM)", total)
	}
	track, ok := e.Track("lead")
	if !ok {
		t.Fatalf("PlayScore did not create the track")
	}
	if got := track.Effects(); len(got) != 1 || got[0] != "vol" {
		t.Errorf("track chain %v, expected [vol]", got)
	}
	if track.Voices() != 3 {
		t.Errorf("score scheduled %d voices, expected 3", track.Voices())
	}

	bad := &cadenza.Score{BPM: 120, Tracks: []cadenza.ScoreTrack{{Name: "x", Notes: []cadenza.ScoreNote{{Note: "H9"}}}}}
	if _, err := engine.PlayScore(e, bad, nil, 0); err == nil {
		t.Errorf("invalid score played without error")
	}
}

func TestFacadeCatalogs(t *testing.T) {
	if engine.Version() == "" {
		t.Errorf("empty version")
	}
	if engine.AvailableNotes()["C4"] != 60 {
		t.Errorf("note catalog misses C4=60")
	}
	if engine.AvailableNoteDurations()["Quarter"] != cadenza.Quarter {
		t.Errorf("duration catalog misses Quarter")
	}
	if len(engine.AvailableEffectParameters(cadenza.EffectReverb)) == 0 {
		t.Errorf("reverb schema empty")
	}
	if len(engine.AvailableKeySignatures()) == 0 || len(engine.AvailableNoteModifications()) == 0 ||
		len(engine.AvailableEffects()) == 0 || len(engine.AvailableAnalysisTypes()) != 3 ||
		len(engine.AvailableEncoders()) != 2 {
		t.Errorf("catalog accessors incomplete")
	}
}
