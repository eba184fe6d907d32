/*
NAME
  aac.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package encode

import (
	"github.com/asticode/go-astiav"
	"github.com/pkg/errors"
)

// Config controls AAC-LC encoding.
type Config struct {
	SampleRate int
	Channels   int
	Bitrate    int
	Profile    Profile
}

// Validate enforces sample_rate in [8000,96000], channels in [1,8],
// bitrate in [32000,512000], and a sample rate with an ADTS table
// entry.
func (c Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 96000 {
		return errors.Errorf("encode: sample rate %d out of range [8000,96000]", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 8 {
		return errors.Errorf("encode: channels %d out of range [1,8]", c.Channels)
	}
	if c.Bitrate < 32000 || c.Bitrate > 512000 {
		return errors.Errorf("encode: bitrate %d out of range [32000,512000]", c.Bitrate)
	}
	if _, err := sampleRateIndex(c.SampleRate); err != nil {
		return err
	}
	return nil
}

// Option configures an Encoder at construction time, following the
// functional-options shape used throughout this codebase.
type Option func(*Encoder) error

// WithBitrate overrides Config.Bitrate.
func WithBitrate(bps int) Option {
	return func(e *Encoder) error {
		e.cfg.Bitrate = bps
		return nil
	}
}

// WithProfile overrides Config.Profile.
func WithProfile(p Profile) Option {
	return func(e *Encoder) error {
		e.cfg.Profile = p
		return nil
	}
}

// Encoder buffers interleaved f32 PCM and emits ADTS-framed AAC-LC
// access units, one per 1024 samples-per-channel.
type Encoder struct {
	cfg Config
	ring *pcmRing

	codecCtx *astiav.CodecContext
	frame    *astiav.Frame
	pkt      *astiav.Packet

	framesEmitted int
}

// NewEncoder constructs an Encoder for cfg, applying opts afterward.
// Construction fails with an error wrapping ErrBadSampleRate or a
// range violation if the resulting configuration is invalid.
func NewEncoder(cfg Config, opts ...Option) (*Encoder, error) {
	e := &Encoder{cfg: cfg}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	codec := astiav.FindEncoder(astiav.CodecIDAac)
	if codec == nil {
		return nil, errors.New("encode: aac encoder unavailable in libavcodec build")
	}
	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return nil, errors.New("encode: failed to allocate aac codec context")
	}
	ctx.SetSampleRate(e.cfg.SampleRate)
	ctx.SetBitRate(int64(e.cfg.Bitrate))
	ctx.SetChannelLayout(astiav.ChannelLayoutForChannels(e.cfg.Channels))
	ctx.SetSampleFormat(astiav.SampleFormatFltp)

	if err := ctx.Open(codec, nil); err != nil {
		ctx.Free()
		return nil, errors.Wrap(err, "encode: open aac codec")
	}

	e.ring = newPCMRing(e.cfg.Channels)
	e.codecCtx = ctx
	e.frame = astiav.AllocFrame()
	e.pkt = astiav.AllocPacket()

	return e, nil
}

// Write appends decoded PCM to the internal ring. Call Encode
// afterward to drain complete frames.
func (e *Encoder) Write(pcm []float32) {
	e.ring.Write(pcm)
}

// Encode drains and encodes as many complete 1024-sample frames as
// are buffered, returning the ADTS-framed access units the encoder
// emits in response. Because of encoder delay, a given call may
// return zero, one, or (rarely) more than one access unit per input
// frame; the final residual packets only surface from Flush.
func (e *Encoder) Encode() ([][]byte, error) {
	var out [][]byte
	for {
		frame, ok := e.ring.Drain()
		if !ok {
			return out, nil
		}
		adts, err := e.sendFrame(frame)
		if err != nil {
			return out, err
		}
		out = append(out, adts...)
	}
}

// Flush zero-pads and encodes any residual partial frame, then drains
// the encoder's internal delay buffer by sending a nil frame and
// pulling packets until the encoder reports EOF. libavcodec's AAC
// encoder buffers at least one frame before it starts emitting
// packets, so the final access unit(s) of a stream only surface here.
func (e *Encoder) Flush() ([][]byte, error) {
	var out [][]byte
	if frame, ok := e.ring.DrainPadded(); ok {
		adts, err := e.sendFrame(frame)
		if err != nil {
			return out, err
		}
		out = append(out, adts...)
	}

	if err := e.codecCtx.SendFrame(nil); err != nil {
		return out, errors.Wrap(err, "encode: send flush frame")
	}
	drained, err := e.drainPackets()
	if err != nil {
		return out, err
	}
	out = append(out, drained...)
	return out, nil
}

// sendFrame pushes one 1024-sample frame into the encoder and returns
// every ADTS-framed access unit the encoder emits in response. A
// single SendFrame can legitimately yield zero packets (encoder
// delay) so callers must not assume a 1:1 input:output ratio.
func (e *Encoder) sendFrame(pcm []float32) ([][]byte, error) {
	e.frame.SetNbSamples(1024)
	e.frame.SetChannelLayout(astiav.ChannelLayoutForChannels(e.cfg.Channels))
	e.frame.SetSampleFormat(astiav.SampleFormatFltp)
	e.frame.SetSampleRate(e.cfg.SampleRate)

	if err := e.frame.AllocBuffer(0); err != nil {
		return nil, errors.Wrap(err, "encode: alloc frame buffer")
	}
	writePlanarFloat(e.frame, pcm, e.cfg.Channels)

	err := e.codecCtx.SendFrame(e.frame)
	e.frame.Unref()
	if err != nil && !errors.Is(err, astiav.ErrEagain) {
		return nil, errors.Wrap(err, "encode: send frame")
	}

	return e.drainPackets()
}

// drainPackets pulls every packet currently available from the
// encoder, stopping at EAGAIN (nothing more until the next SendFrame)
// or EOF (flush complete).
func (e *Encoder) drainPackets() ([][]byte, error) {
	var out [][]byte
	for {
		err := e.codecCtx.ReceivePacket(e.pkt)
		if err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return out, nil
			}
			return out, errors.Wrap(err, "encode: receive packet")
		}

		adts, err := BuildADTSFrame(e.cfg.Profile, e.cfg.SampleRate, e.cfg.Channels, e.pkt.Data())
		e.pkt.Unref()
		if err != nil {
			return out, err
		}
		e.framesEmitted++
		out = append(out, adts)
	}
}

// FramesEmitted returns the number of ADTS-framed AAC access units
// produced so far.
func (e *Encoder) FramesEmitted() int { return e.framesEmitted }
