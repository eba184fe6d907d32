/*
NAME
  ring.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package encode buffers decoded PCM, encodes it to AAC-LC in
// 1024-sample-per-channel frames, and frames each access unit with a
// 7-byte ADTS header.
package encode

// pcmRing accumulates interleaved f32 PCM and yields fixed-size
// frames suitable for the AAC encoder. Write does not check its input:
// the length stays a multiple of channels only while callers append
// whole interleaved frames.
type pcmRing struct {
	channels int
	samples  []float32
}

func newPCMRing(channels int) *pcmRing {
	return &pcmRing{channels: channels}
}

// Write appends interleaved PCM samples to the ring.
func (r *pcmRing) Write(pcm []float32) {
	r.samples = append(r.samples, pcm...)
}

// frameSize is the number of interleaved samples in one AAC access
// unit's worth of PCM: 1024 per channel.
func (r *pcmRing) frameSize() int { return r.channels * 1024 }

// Drain removes and returns one frame's worth of samples if enough
// are buffered.
func (r *pcmRing) Drain() (frame []float32, ok bool) {
	fs := r.frameSize()
	if len(r.samples) < fs {
		return nil, false
	}
	frame = append([]float32(nil), r.samples[:fs]...)
	r.samples = append(r.samples[:0], r.samples[fs:]...)
	return frame, true
}

// DrainPadded removes all remaining samples, zero-padded to a full
// frame, for end-of-stream flush. It returns ok=false if nothing is
// buffered.
func (r *pcmRing) DrainPadded() (frame []float32, ok bool) {
	if len(r.samples) == 0 {
		return nil, false
	}
	fs := r.frameSize()
	frame = make([]float32, fs)
	copy(frame, r.samples)
	r.samples = r.samples[:0]
	return frame, true
}
