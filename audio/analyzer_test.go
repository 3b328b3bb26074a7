package audio_test

import (
	"math"
	"testing"

	"github.com/cadenza-audio/cadenza/audio"
)

func writeSine(a *audio.Analyzer, frequency float64, frames int) {
	block := make([]float32, frames*audio.Channels)
	for i := 0; i < frames; i++ {
		s := float32(0.5 * math.Sin(2*math.Pi*frequency*float64(i)/audio.SampleRate))
		block[2*i] = s
		block[2*i+1] = s
	}
	a.Write(block)
}

func TestTimeSeriesSilence(t *testing.T) {
	a := audio.NewAnalyzer()
	series := a.TimeSeries()
	for i, b := range series {
		if b != 128 {
			t.Fatalf("silent time series byte %d = %d, expected 128", i, b)
		}
	}
}

func TestPowerSpectrumPeakBin(t *testing.T) {
	a := audio.NewAnalyzer()
	// a sine exactly on bin 64 of a 2048-sample window
	bin := 64
	writeSine(a, float64(bin)*audio.SampleRate/2048, 2048)
	spectrum := a.PowerSpectrum()
	peak := 0
	for i, b := range spectrum {
		if b > spectrum[peak] {
			peak = i
		}
	}
	// bins start at 1 (DC excluded), so bin k lands at index k-1
	if peak != bin-1 {
		t.Errorf("spectrum peak at index %d, expected %d", peak, bin-1)
	}
}

func TestTotalPowerBounds(t *testing.T) {
	a := audio.NewAnalyzer()
	silent := a.TotalPower()
	if silent < 0 || silent > 1 {
		t.Errorf("silent total power %g outside [0, 1]", silent)
	}
	writeSine(a, 440, 2048)
	loud := a.TotalPower()
	if loud < 0 || loud > 1 {
		t.Errorf("total power %g outside [0, 1]", loud)
	}
	if loud <= silent {
		t.Errorf("total power did not rise with signal: %g <= %g", loud, silent)
	}
}

func TestCompressorTransparentBelowThreshold(t *testing.T) {
	c := audio.NewCompressor(audio.SampleRate)
	buf := make([]float32, 256)
	for i := range buf {
		buf[i] = 0.01
	}
	c.Process(buf)
	for i, s := range buf {
		if math.Abs(float64(s)-0.01) > 1e-6 {
			t.Fatalf("sample %d = %g, expected to pass unchanged", i, s)
		}
	}
}

func TestCompressorReducesLoudPeaks(t *testing.T) {
	c := audio.NewCompressor(audio.SampleRate)
	buf := make([]float32, 4096)
	for i := range buf {
		buf[i] = 0.9
	}
	c.Process(buf)
	if last := buf[len(buf)-1]; last >= 0.9 {
		t.Errorf("loud signal not compressed: tail sample %g", last)
	}
}
