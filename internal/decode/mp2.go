/*
NAME
  mp2.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decode

import (
	"github.com/asticode/go-astiav"
	"github.com/pkg/errors"
)

// mp2Decoder decodes MPEG-1 Layer II audio via libavcodec, downmixing
// to stereo per the same convention as ac3Decoder when the source
// carries more or fewer than two channels (mono source is duplicated
// to both channels).
type mp2Decoder struct {
	codecCtx *astiav.CodecContext
	frame    *astiav.Frame
	pkt      *astiav.Packet

	sampleRate int
	channels   int
}

func newMP2Decoder() (*mp2Decoder, error) {
	codec := astiav.FindDecoder(astiav.CodecIDMp2)
	if codec == nil {
		return nil, errors.New("decode: mp2 decoder unavailable in libavcodec build")
	}
	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return nil, errors.New("decode: failed to allocate mp2 codec context")
	}
	if err := ctx.Open(codec, nil); err != nil {
		ctx.Free()
		return nil, errors.Wrap(err, "decode: open mp2 codec")
	}
	return &mp2Decoder{
		codecCtx: ctx,
		frame:    astiav.AllocFrame(),
		pkt:      astiav.AllocPacket(),
	}, nil
}

func (d *mp2Decoder) Name() string { return "mp2" }

func (d *mp2Decoder) SampleRate() int { return d.sampleRate }

func (d *mp2Decoder) Channels() int { return d.channels }

func (d *mp2Decoder) Reset() {
	d.codecCtx.FlushBuffers()
}

func (d *mp2Decoder) Decode(payload []byte) ([]float32, error) {
	if err := d.pkt.FromData(payload); err != nil {
		return nil, errors.Wrap(err, "decode: mp2 packet setup")
	}
	defer d.pkt.Unref()

	if err := d.codecCtx.SendPacket(d.pkt); err != nil {
		return nil, errors.Wrap(err, "decode: mp2 send packet")
	}

	var out []float32
	for {
		err := d.codecCtx.ReceiveFrame(d.frame)
		if err != nil {
			break
		}

		d.sampleRate = d.frame.SampleRate()
		d.channels = d.frame.ChannelLayout().Channels()

		samples, convErr := convertFrameToPCM(d.frame)
		d.frame.Unref()
		if convErr != nil {
			return out, convErr
		}

		if d.channels != 2 {
			samples = downmixToStereo(samples, d.channels)
		}
		out = append(out, samples...)
	}
	return out, nil
}
