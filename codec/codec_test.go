package codec_test

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/codec"
)

func TestWAVRoundTrip(t *testing.T) {
	src := cadenza.NewBuffer(2, 64, 48000)
	for i := range src.Data {
		src.Data[i] = float32(math.Sin(float64(i) * 0.3))
	}
	data, err := codec.WAVEncoder{}.Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE signature")
	}
	if len(data) != 44+2*len(src.Data) {
		t.Errorf("encoded length %d, expected %d (44-byte header + 16-bit samples)", len(data), 44+2*len(src.Data))
	}
	if rate := binary.LittleEndian.Uint32(data[24:]); rate != 48000 {
		t.Errorf("header sample rate %d, expected 48000", rate)
	}
	got, err := codec.WAVDecoder{}.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Channels != 2 || got.SampleRate != 48000 || got.Frames() != 64 {
		t.Fatalf("decoded shape %d ch %d Hz %d frames", got.Channels, got.SampleRate, got.Frames())
	}
	for i := range src.Data {
		if math.Abs(float64(got.Data[i]-src.Data[i])) > 1.0/math.MaxInt16*2 {
			t.Errorf("sample %d = %g, expected %g within 16-bit tolerance", i, got.Data[i], src.Data[i])
		}
	}
}

func TestWAVDecodeRejectsGarbage(t *testing.T) {
	if _, err := (codec.WAVDecoder{}).Decode([]byte("not a wav file at all")); err == nil {
		t.Errorf("Decode accepted garbage")
	}
}

func TestPCMRoundTrip(t *testing.T) {
	src := cadenza.NewBuffer(1, 100, 44100)
	for i := range src.Data {
		src.Data[i] = float32(i) / 100
	}
	data, err := codec.EncodePCM(src)
	if err != nil {
		t.Fatalf("EncodePCM: %v", err)
	}
	got, err := codec.PCMDecoder{SampleRate: 44100}.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, src) {
		t.Errorf("payload round trip mismatch")
	}
}

func TestPCMRejectsStereo(t *testing.T) {
	if _, err := codec.EncodePCM(cadenza.NewBuffer(2, 10, 44100)); err == nil {
		t.Errorf("EncodePCM accepted a stereo buffer")
	}
}

func TestEncoderRegistry(t *testing.T) {
	if _, err := codec.Encoder(cadenza.EncodingWAV); err != nil {
		t.Errorf("Encoder(WAV): %v", err)
	}
	if _, err := codec.Encoder(cadenza.EncodingWebmOpus); err == nil {
		t.Errorf("Encoder(WebmOpus) expected an error")
	}
}
