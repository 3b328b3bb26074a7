package audio_test

import (
	"math"
	"testing"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
)

func rampBuffer(frames, rate int) *cadenza.Buffer {
	buf := cadenza.NewBuffer(1, frames, rate)
	for i := 0; i < frames; i++ {
		buf.Data[i] = float32(i)
	}
	return buf
}

func TestBufferSourcePlaysThrough(t *testing.T) {
	buf := rampBuffer(4, audio.SampleRate)
	src := audio.NewBufferSource(buf, 0, audio.SampleRate)
	for i := 0; i < 4; i++ {
		s, ok := src.Next()
		if !ok {
			t.Fatalf("source exhausted at frame %d", i)
		}
		if s != float32(i) {
			t.Errorf("frame %d = %g, expected %d", i, s, i)
		}
	}
	if _, ok := src.Next(); ok {
		t.Errorf("source did not exhaust after the buffer end")
	}
}

func TestBufferSourceDetune(t *testing.T) {
	// +1200 cents doubles the playback rate: every other source frame
	buf := rampBuffer(8, audio.SampleRate)
	src := audio.NewBufferSource(buf, 1200, audio.SampleRate)
	for i := 0; i < 4; i++ {
		s, ok := src.Next()
		if !ok {
			t.Fatalf("source exhausted at frame %d", i)
		}
		if math.Abs(float64(s)-float64(2*i)) > 1e-3 {
			t.Errorf("frame %d = %g, expected %d", i, s, 2*i)
		}
	}
}

func TestBufferSourceLoop(t *testing.T) {
	buf := rampBuffer(4, audio.SampleRate)
	src := audio.NewBufferSource(buf, 0, audio.SampleRate)
	src.SetLoop(0, buf.Duration())
	want := []float32{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}
	for i, w := range want {
		s, ok := src.Next()
		if !ok {
			t.Fatalf("looping source exhausted at frame %d", i)
		}
		if s != w {
			t.Errorf("frame %d = %g, expected %g", i, s, w)
		}
	}
}

func TestOscillatorFrequency(t *testing.T) {
	// count rising zero crossings over one second of samples
	src := audio.NewOscillator(440, audio.SampleRate)
	crossings := 0
	prev, _ := src.Next()
	for i := 1; i < audio.SampleRate; i++ {
		s, _ := src.Next()
		if prev < 0 && s >= 0 {
			crossings++
		}
		prev = s
	}
	if crossings < 439 || crossings > 441 {
		t.Errorf("oscillator crossed zero %d times, expected ~440", crossings)
	}
}

func TestVoiceScheduling(t *testing.T) {
	buf := cadenza.NewBuffer(1, 8, audio.SampleRate)
	for i := range buf.Data {
		buf.Data[i] = 1
	}
	voice := audio.NewVoice(audio.NewBufferSource(buf, 0, audio.SampleRate), audio.NewParam(0.5), 2, 6)
	dst := make([]float32, 8*audio.Channels)
	voice.Mix(dst, 0)
	for i := 0; i < 8; i++ {
		want := float32(0)
		if i >= 2 && i < 6 {
			want = 0.5
		}
		if dst[2*i] != want || dst[2*i+1] != want {
			t.Errorf("frame %d = (%g, %g), expected %g", i, dst[2*i], dst[2*i+1], want)
		}
	}
	if !voice.Done() {
		t.Errorf("voice not done after its stop frame")
	}
}

func TestVoiceExhaustsWithSource(t *testing.T) {
	buf := cadenza.NewBuffer(1, 3, audio.SampleRate)
	voice := audio.NewVoice(audio.NewBufferSource(buf, 0, audio.SampleRate), audio.NewParam(1), 0, -1)
	dst := make([]float32, 8*audio.Channels)
	voice.Mix(dst, 0)
	if !voice.Done() {
		t.Errorf("voice not done after source end")
	}
}
