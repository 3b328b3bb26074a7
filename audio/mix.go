package audio

import "github.com/viterin/vek/vek32"

// Zero clears a block in place.
func Zero(dst []float32) {
	vek32.Zeros_Into(dst, len(dst))
}

// Add mixes src into dst.
func Add(dst, src []float32) {
	vek32.Add_Inplace(dst, src)
}

// Scale multiplies a block by a constant gain.
func Scale(dst []float32, gain float32) {
	vek32.MulNumber_Inplace(dst, gain)
}

// Peak returns the largest absolute sample value in the block.
func Peak(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	peak := vek32.Max(buf)
	if min := vek32.Min(buf); -min > peak {
		peak = -min
	}
	return peak
}

// Clamp limits every sample to [-1, 1] in place.
func Clamp(buf []float32) {
	vek32.MinimumNumber_Inplace(buf, 1)
	vek32.MaximumNumber_Inplace(buf, -1)
}
