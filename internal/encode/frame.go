/*
NAME
  frame.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package encode

import (
	"encoding/binary"
	"math"

	"github.com/asticode/go-astiav"
)

// writePlanarFloat de-interleaves pcm (channels-interleaved f32) into
// the per-channel planes of frame, which must already be allocated
// with SampleFormatFltp and the matching channel/sample counts.
func writePlanarFloat(frame *astiav.Frame, pcm []float32, channels int) {
	nbSamples := len(pcm) / channels
	for ch := 0; ch < channels; ch++ {
		plane := frame.Data().Bytes(ch)
		for i := 0; i < nbSamples; i++ {
			bits := math.Float32bits(pcm[i*channels+ch])
			binary.LittleEndian.PutUint32(plane[i*4:i*4+4], bits)
		}
	}
}
