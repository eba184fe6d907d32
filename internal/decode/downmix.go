/*
NAME
  downmix.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decode

// ITU/ATSC downmix coefficients for center and surround channels.
const (
	centerCoeff   = 0.707
	surroundCoeff = 0.5
)

// downmixToStereo reduces an interleaved multichannel buffer to
// interleaved stereo. The input channel order follows the common
// AC-3 layout: front-left, front-right, front-center, LFE,
// back-left, back-right (5.1); unrecognised layouts above stereo are
// downmixed using only the channels present, per position.
func downmixToStereo(in []float32, channels int) []float32 {
	if channels <= 0 {
		return nil
	}
	if channels == 1 {
		out := make([]float32, 0, len(in)*2)
		for _, s := range in {
			out = append(out, s, s)
		}
		return out
	}
	if channels == 2 {
		return in
	}

	frames := len(in) / channels
	out := make([]float32, 0, frames*2)
	for f := 0; f < frames; f++ {
		base := f * channels
		fl := in[base]
		fr := in[base+1]
		var fc, bl, br float32
		if channels > 2 {
			fc = in[base+2]
		}
		if channels >= 6 {
			// Skip LFE at index 3; back-left/back-right follow.
			bl = in[base+4]
			br = in[base+5]
		}

		l := fl + centerCoeff*fc + surroundCoeff*bl
		r := fr + centerCoeff*fc + surroundCoeff*br
		out = append(out, clamp(l), clamp(r))
	}
	return out
}

func clamp(v float32) float32 {
	switch {
	case v > 1.0:
		return 1.0
	case v < -1.0:
		return -1.0
	default:
		return v
	}
}
