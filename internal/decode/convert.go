/*
NAME
  convert.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decode

import (
	"encoding/binary"
	"math"

	"github.com/asticode/go-astiav"
	"github.com/pkg/errors"
)

// convertFrameToPCM normalizes a decoded libav frame to interleaved
// f32 PCM, dispatching on the frame's native sample format. Planar
// formats are interleaved; packed formats are copied through.
func convertFrameToPCM(frame *astiav.Frame) ([]float32, error) {
	channels := frame.ChannelLayout().Channels()
	nbSamples := frame.NbSamples()
	if channels == 0 || nbSamples == 0 {
		return nil, nil
	}

	switch frame.SampleFormat() {
	case astiav.SampleFormatFlt:
		out := make([]float32, 0, channels*nbSamples)
		raw := frame.Data().Bytes(0)
		for i := 0; i+3 < len(raw); i += 4 {
			bits := binary.LittleEndian.Uint32(raw[i : i+4])
			out = append(out, math.Float32frombits(bits))
		}
		return out, nil

	case astiav.SampleFormatFltp:
		planes := make([][]float32, channels)
		for ch := 0; ch < channels; ch++ {
			raw := frame.Data().Bytes(ch)
			plane := make([]float32, 0, nbSamples)
			for i := 0; i+3 < len(raw); i += 4 {
				bits := binary.LittleEndian.Uint32(raw[i : i+4])
				plane = append(plane, math.Float32frombits(bits))
			}
			planes[ch] = plane
		}
		return interleavePlanar(planes), nil

	case astiav.SampleFormatS16:
		out := make([]float32, 0, channels*nbSamples)
		raw := frame.Data().Bytes(0)
		for i := 0; i+1 < len(raw); i += 2 {
			v := int16(binary.LittleEndian.Uint16(raw[i : i+2]))
			out = append(out, normalizeS16(v))
		}
		return out, nil

	case astiav.SampleFormatS16p:
		planes := make([][]float32, channels)
		for ch := 0; ch < channels; ch++ {
			raw := frame.Data().Bytes(ch)
			plane := make([]float32, 0, nbSamples)
			for i := 0; i+1 < len(raw); i += 2 {
				v := int16(binary.LittleEndian.Uint16(raw[i : i+2]))
				plane = append(plane, normalizeS16(v))
			}
			planes[ch] = plane
		}
		return interleavePlanar(planes), nil

	case astiav.SampleFormatS32:
		out := make([]float32, 0, channels*nbSamples)
		raw := frame.Data().Bytes(0)
		for i := 0; i+3 < len(raw); i += 4 {
			v := int32(binary.LittleEndian.Uint32(raw[i : i+4]))
			out = append(out, normalizeS32(v))
		}
		return out, nil

	case astiav.SampleFormatS32p:
		planes := make([][]float32, channels)
		for ch := 0; ch < channels; ch++ {
			raw := frame.Data().Bytes(ch)
			plane := make([]float32, 0, nbSamples)
			for i := 0; i+3 < len(raw); i += 4 {
				v := int32(binary.LittleEndian.Uint32(raw[i : i+4]))
				plane = append(plane, normalizeS32(v))
			}
			planes[ch] = plane
		}
		return interleavePlanar(planes), nil

	case astiav.SampleFormatU8:
		out := make([]float32, 0, channels*nbSamples)
		raw := frame.Data().Bytes(0)
		for _, b := range raw {
			out = append(out, normalizeU8(b))
		}
		return out, nil

	default:
		return nil, errors.Errorf("decode: unsupported sample format %v", frame.SampleFormat())
	}
}
