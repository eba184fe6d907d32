/*
NAME
  decode_test.go

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
	"math/cmplx"
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

func TestDownmixMonoDuplicated(t *testing.T) {
	in := []float32{0.5, -0.25, 0.1}
	out := downmixToStereo(in, 1)
	want := []float32{0.5, 0.5, -0.25, -0.25, 0.1, 0.1}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestDownmixStereoPassthrough(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3, 0.4}
	out := downmixToStereo(in, 2)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("stereo must pass through unchanged at %d", i)
		}
	}
}

func TestDownmix51NoClippingInRange(t *testing.T) {
	// One frame, worst case: all channels at full scale.
	frame := []float32{1, 1, 1, 1, 1, 1}
	out := downmixToStereo(frame, 6)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	for _, v := range out {
		if v > 1.0 || v < -1.0 {
			t.Fatalf("downmix exceeded [-1,1]: %v", v)
		}
	}
}

func TestNormalizationFormulas(t *testing.T) {
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"s16 max", float64ToF32(normalizeS16(32767)), 32767.0 / 32768.0},
		{"s32 mid", float64ToF32(normalizeS32(1 << 30)), float64(int64(1)<<30) / 2147483648.0},
		{"u8 zero-center", float64ToF32(normalizeU8(128)), 0},
	}
	for _, c := range cases {
		if diff := math.Abs(float64(c.got) - c.want); diff > 1e-6 {
			t.Errorf("%s: got %v, want %v (diff %v)", c.name, c.got, c.want, diff)
		}
	}
}

// float64ToF32 is a tiny helper so the table above can state expected
// values as ordinary float64 literals.
func float64ToF32(v float32) float64 { return float64(v) }

// TestSilenceRoundTripRMSBelowEpsilon builds a real libav frame of
// planar float silence, runs it through convertFrameToPCM (the same
// path a decoded MP2/AC-3 frame takes), and checks the interleaved
// result carries neither RMS energy nor stray spectral energy at any
// bin.
func TestSilenceRoundTripRMSBelowEpsilon(t *testing.T) {
	const channels = 2
	const nbSamples = 1024

	frame := astiav.AllocFrame()
	defer frame.Free()
	frame.SetNbSamples(nbSamples)
	frame.SetChannelLayout(astiav.ChannelLayoutForChannels(channels))
	frame.SetSampleFormat(astiav.SampleFormatFltp)
	frame.SetSampleRate(48000)
	if err := frame.AllocBuffer(0); err != nil {
		t.Fatalf("alloc frame buffer: %v", err)
	}
	for ch := 0; ch < channels; ch++ {
		plane := frame.Data().Bytes(ch)
		for i := 0; i < nbSamples; i++ {
			binary.LittleEndian.PutUint32(plane[i*4:i*4+4], math.Float32bits(0))
		}
	}

	pcm, err := convertFrameToPCM(frame)
	if err != nil {
		t.Fatalf("convertFrameToPCM: %v", err)
	}
	if len(pcm) != channels*nbSamples {
		t.Fatalf("len(pcm) = %d, want %d", len(pcm), channels*nbSamples)
	}

	silence := make([]float64, len(pcm))
	for i, v := range pcm {
		silence[i] = float64(v)
	}

	rms := math.Sqrt(floats.Dot(silence, silence) / float64(len(silence)))
	if rms > 1e-9 {
		t.Fatalf("rms of decoded silence = %v, want ~0", rms)
	}

	spectrum := fft.FFTReal(silence)
	for i, bin := range spectrum {
		if cmplx.Abs(bin) > 1e-9 {
			t.Fatalf("unexpected spectral energy at bin %d: %v", i, bin)
		}
	}
}
