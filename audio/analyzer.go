package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/viterin/vek/vek32"
)

const analyzerWindow = 2048 // power of two

// Spectrum byte mapping range in decibels.
const (
	specMinDB = -100.0
	specMaxDB = -30.0
)

// Analyzer taps the most recent window of a mix for the analysis bridge.
// Writing is done by the render loop; sampling is non-blocking for the
// caller and never mutates the mix.
type Analyzer struct {
	mu      sync.Mutex
	ring    []float32 // mono samples
	pos     int
	window  []float32 // Hanning weights
	norm    float32
	bitPerm []int
}

// NewAnalyzer creates an analyzer with a 2048-sample window.
func NewAnalyzer() *Analyzer {
	n := analyzerWindow
	a := &Analyzer{
		ring:    make([]float32, n),
		window:  make([]float32, n),
		bitPerm: make([]int, n),
	}
	for i := 0; i < n; i++ {
		w := float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1))))
		a.window[i] = w
		a.norm += w
		a.bitPerm[i] = i
	}
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a.bitPerm[i], a.bitPerm[j] = a.bitPerm[j], a.bitPerm[i]
		}
	}
	return a
}

// Write feeds an interleaved stereo block into the ring, averaging the
// channels.
func (a *Analyzer) Write(block []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i+1 < len(block); i += Channels {
		a.ring[a.pos] = (block[i] + block[i+1]) / 2
		a.pos = (a.pos + 1) % len(a.ring)
	}
}

// snapshot copies the window out in time order, oldest first.
func (a *Analyzer) snapshot() []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float32, len(a.ring))
	n := copy(out, a.ring[a.pos:])
	copy(out[n:], a.ring[:a.pos])
	return out
}

// TimeSeries returns the current waveform in byte domain: 128 is the
// midpoint, full scale maps to [0, 255].
func (a *Analyzer) TimeSeries() []byte {
	snap := a.snapshot()
	out := make([]byte, len(snap))
	for i, s := range snap {
		v := 128 + int(s*127)
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// PowerSpectrum returns the byte-domain magnitude spectrum, one byte per
// frequency bin, [specMinDB, specMaxDB] mapped onto [0, 255].
func (a *Analyzer) PowerSpectrum() []byte {
	power := a.power()
	out := make([]byte, len(power))
	for i, p := range power {
		db := specMinDB
		if p > 0 {
			db = 10 * math.Log10(float64(p))
		}
		v := int(255 * (db - specMinDB) / (specMaxDB - specMinDB))
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// TotalPower returns the sum of the spectrum bins normalized to [0, 1].
func (a *Analyzer) TotalPower() float64 {
	spectrum := a.PowerSpectrum()
	sum := 0
	for _, b := range spectrum {
		sum += int(b)
	}
	return float64(sum) / float64(255*len(spectrum))
}

// power computes the windowed power spectrum, bins 1..N/2 (DC excluded).
func (a *Analyzer) power() []float32 {
	n := len(a.ring)
	tmp1 := a.snapshot()
	tmp2 := make([]float32, n)
	vek32.Mul_Inplace(tmp1, a.window)
	vek32.Gather_Into(tmp2, tmp1, a.bitPerm)
	c := make([]complex128, n)
	for i := range c {
		c[i] = complex(float64(tmp2[i]), 0)
	}
	// iterative radix-2 FFT over the bit-reversed input
	for length := 2; length <= n; length <<= 1 {
		ang := 2 * math.Pi / float64(length)
		wlen := complex(math.Cos(ang), math.Sin(ang))
		for i := 0; i < n; i += length {
			w := complex(1, 0)
			for j := 0; j < length/2; j++ {
				u := c[i+j]
				v := c[i+j+length/2] * w
				c[i+j] = u + v
				c[i+j+length/2] = u - v
				w *= wlen
			}
		}
	}
	m := n / 2
	mag := tmp1[:m]
	power := tmp2[:m]
	for i := 0; i < m; i++ {
		mag[i] = float32(cmplx.Abs(c[1+i]))
	}
	vek32.Mul_Into(power, mag, mag)
	vek32.DivNumber_Inplace(power, a.norm*a.norm)
	// real-valued input: double everything except Nyquist
	vek32.MulNumber_Inplace(power[:m-1], 2)
	return power
}
