/*
NAME
  decoder.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package decode converts complete MP2 or AC-3 PES payloads into
// interleaved 32-bit float PCM, downmixing to stereo where needed.
package decode

import "github.com/ausocean/avremux/internal/demux"

// Decoder is the common operation set for a single audio codec. A
// concrete decoder is selected once at construction by the detected
// codec; there is no runtime type hierarchy, per the "tagged variant"
// design note.
type Decoder interface {
	// Decode converts one complete PES payload into interleaved f32
	// PCM samples in [-1.0, 1.0]. A codec error on a single frame is
	// reported via err but MUST NOT abort the stream; callers skip
	// the frame and continue.
	Decode(payload []byte) (pcm []float32, err error)

	// SampleRate returns the most recently observed sample rate. The
	// first observed value drives downstream timestamping.
	SampleRate() int

	// Channels returns the source's native channel count, before the
	// stereo downmix that Decode applies.
	Channels() int

	// Reset discards internal decoder state; required on continuity
	// break or PID change.
	Reset()

	Name() string
}

// New constructs the decoder for the given codec. Only MP2 and AC-3
// are decodable; CodecUnknown is rejected with an error.
func New(codec demux.Codec) (Decoder, error) {
	switch codec {
	case demux.CodecMP2:
		return newMP2Decoder()
	case demux.CodecAC3:
		return newAC3Decoder()
	default:
		return nil, errUnsupportedCodec(codec)
	}
}

type errUnsupportedCodec demux.Codec

func (e errUnsupportedCodec) Error() string {
	return "decode: unsupported codec: " + demux.Codec(e).String()
}
