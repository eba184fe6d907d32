/*
NAME
  normalize.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decode

// Normalization constants mirror decoder.rs's convert_to_pcm exactly:
// the goal is bit-for-bit comparable output regardless of the
// decoded sample's native integer width.
const (
	scaleS16 = 1.0 / 32768.0
	scaleS32 = 1.0 / 2147483648.0
)

func normalizeS16(v int16) float32 {
	return float32(v) * scaleS16
}

func normalizeS32(v int32) float32 {
	return float32(v) * scaleS32
}

func normalizeU8(v uint8) float32 {
	return (float32(v) - 128.0) / 128.0
}

// interleavePlanar interleaves per-channel planar float32 slices into
// a single interleaved buffer, required for both MP2 and AC-3 when
// the underlying libav frame delivers planar sample formats.
func interleavePlanar(planes [][]float32) []float32 {
	if len(planes) == 0 {
		return nil
	}
	n := len(planes[0])
	out := make([]float32, 0, n*len(planes))
	for i := 0; i < n; i++ {
		for _, p := range planes {
			out = append(out, p[i])
		}
	}
	return out
}
