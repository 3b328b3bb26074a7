package codec

import (
	"fmt"

	"github.com/cadenza-audio/cadenza"
)

// Encoder returns the encoder collaborator for an encoding type. The
// Webm/Opus path needs a container-aware encoder this module does not
// ship; requesting it reports the gap rather than silently writing WAV.
func Encoder(typ cadenza.EncodingType) (cadenza.Encoder, error) {
	switch typ {
	case cadenza.EncodingWAV:
		return WAVEncoder{}, nil
	case cadenza.EncodingWebmOpus:
		return nil, fmt.Errorf("%w: no webm/opus encoder is registered", cadenza.ErrValue)
	}
	return nil, fmt.Errorf("%w: unknown encoding type %d", cadenza.ErrValue, typ)
}
