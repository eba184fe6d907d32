/*
NAME
  adts_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package encode

import "testing"

func TestWriteADTSHeaderSyncAndFixedBits(t *testing.T) {
	buf := make([]byte, ADTSHeaderLen)
	if err := WriteADTSHeader(buf, ProfileAACLC, 48000, 2, 100); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0xFF {
		t.Fatalf("byte0 = 0x%02x, want 0xFF", buf[0])
	}
	if buf[1] != 0xF1 {
		t.Fatalf("byte1 = 0x%02x, want 0xF1", buf[1])
	}
	// profile field: ProfileAACLC (1) - 1 = 0, occupying bits 7-6 of byte2.
	if buf[2]&0xC0 != 0x00 {
		t.Fatalf("profile bits = 0x%02x, want 0x00", buf[2]&0xC0)
	}
}

func TestWriteADTSHeaderSilenceScenario(t *testing.T) {
	// 1024 stereo samples at 48kHz, 192kbps.
	frameLen := ADTSHeaderLen + 3 // arbitrary small payload for the header check
	buf := make([]byte, ADTSHeaderLen)
	if err := WriteADTSHeader(buf, ProfileAACLC, 48000, 2, frameLen); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0xFF || buf[1] != 0xF1 {
		t.Fatalf("sync mismatch: %02x %02x", buf[0], buf[1])
	}
	if buf[2] != 0x0C {
		t.Fatalf("byte2 = 0x%02x, want 0x0C", buf[2])
	}
}

func TestWriteADTSHeaderBadSampleRate(t *testing.T) {
	buf := make([]byte, ADTSHeaderLen)
	err := WriteADTSHeader(buf, ProfileAACLC, 12345, 2, 100)
	if err != ErrBadSampleRate {
		t.Fatalf("got %v, want ErrBadSampleRate", err)
	}
}

func TestConfigValidateRanges(t *testing.T) {
	cases := []struct {
		cfg Config
		ok  bool
	}{
		{Config{SampleRate: 48000, Channels: 2, Bitrate: 192000}, true},
		{Config{SampleRate: 4000, Channels: 2, Bitrate: 192000}, false},
		{Config{SampleRate: 48000, Channels: 9, Bitrate: 192000}, false},
		{Config{SampleRate: 48000, Channels: 2, Bitrate: 16000}, false},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if (err == nil) != c.ok {
			t.Errorf("Validate(%+v) err=%v, want ok=%v", c.cfg, err, c.ok)
		}
	}
}

func TestPCMRingFrameAlignment(t *testing.T) {
	r := newPCMRing(2)
	r.Write(make([]float32, 2047))
	if _, ok := r.Drain(); ok {
		t.Fatal("must not drain a partial frame")
	}
	r.Write(make([]float32, 1))
	frame, ok := r.Drain()
	if !ok {
		t.Fatal("expected a full frame")
	}
	if len(frame) != 2*1024 {
		t.Fatalf("frame len = %d, want %d", len(frame), 2*1024)
	}
}

func TestPCMRingDrainPaddedZeroFills(t *testing.T) {
	r := newPCMRing(2)
	r.Write([]float32{1, 1, 1, 1})
	frame, ok := r.DrainPadded()
	if !ok {
		t.Fatal("expected a padded frame")
	}
	if len(frame) != 2*1024 {
		t.Fatalf("frame len = %d, want %d", len(frame), 2*1024)
	}
	for i := 4; i < len(frame); i++ {
		if frame[i] != 0 {
			t.Fatalf("frame[%d] = %v, want zero padding", i, frame[i])
		}
	}
}
