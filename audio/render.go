package audio

import "github.com/cadenza-audio/cadenza"

const renderBlock = 1024 // frames per pull

// Render pulls the given number of frames from a source into a stereo
// buffer, used for offline clip rendering and file export.
func Render(src SampleSource, frames int) *cadenza.Buffer {
	out := cadenza.NewBuffer(Channels, frames, SampleRate)
	block := make([]float32, renderBlock*Channels)
	for at := 0; at < frames; {
		n := frames - at
		if n > renderBlock {
			n = renderBlock
		}
		chunk := block[:n*Channels]
		Zero(chunk)
		src.Process(chunk)
		copy(out.Data[at*Channels:], chunk)
		at += n
	}
	return out
}
