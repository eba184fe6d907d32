/*
NAME
  ac3.go

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

// ac3Decoder decodes Dolby Digital (AC-3) audio via libavcodec,
// downmixing to stereo per the ITU/ATSC convention when the source
// carries more than two channels.
type ac3Decoder struct {
	codecCtx *astiav.CodecContext
	frame    *astiav.Frame
	pkt      *astiav.Packet

	sampleRate int
	channels   int
}

func newAC3Decoder() (*ac3Decoder, error) {
	codec := astiav.FindDecoder(astiav.CodecIDAc3)
	if codec == nil {
		return nil, errors.New("decode: ac3 decoder unavailable in libavcodec build")
	}
	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return nil, errors.New("decode: failed to allocate ac3 codec context")
	}
	if err := ctx.Open(codec, nil); err != nil {
		ctx.Free()
		return nil, errors.Wrap(err, "decode: open ac3 codec")
	}
	return &ac3Decoder{
		codecCtx: ctx,
		frame:    astiav.AllocFrame(),
		pkt:      astiav.AllocPacket(),
	}, nil
}

func (d *ac3Decoder) Name() string { return "ac3" }

func (d *ac3Decoder) SampleRate() int { return d.sampleRate }

func (d *ac3Decoder) Channels() int { return d.channels }

func (d *ac3Decoder) Reset() {
	d.codecCtx.FlushBuffers()
}

func (d *ac3Decoder) Decode(payload []byte) ([]float32, error) {
	if err := d.pkt.FromData(payload); err != nil {
		return nil, errors.Wrap(err, "decode: ac3 packet setup")
	}
	defer d.pkt.Unref()

	if err := d.codecCtx.SendPacket(d.pkt); err != nil {
		return nil, errors.Wrap(err, "decode: ac3 send packet")
	}

	var out []float32
	for {
		err := d.codecCtx.ReceiveFrame(d.frame)
		if err != nil {
			break
		}

		d.sampleRate = d.frame.SampleRate()
		layout := d.frame.ChannelLayout()
		d.channels = layout.Channels()

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
