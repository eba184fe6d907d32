/*
NAME
  remux_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package remux

import "testing"

func TestPTSIncrement48kHz(t *testing.T) {
	if got := ptsIncrement(48000); got != 1920 {
		t.Fatalf("ptsIncrement(48000) = %d, want 1920", got)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestConfigRejectsBadSampleRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rerr.Kind != KindBadConfig {
		t.Fatalf("kind = %v, want KindBadConfig", rerr.Kind)
	}
}

func TestStatsSnapshotDerivedFields(t *testing.T) {
	c := &Coordinator{cfg: DefaultConfig()}
	c.statFramesEncoded = 10
	c.statBytesOut = 24000
	c.statPacketsProcessed = 100
	c.statErrors = 5

	s := c.snapshot()
	if s.PacketLossRatio != 0.05 {
		t.Fatalf("packet loss ratio = %v, want 0.05", s.PacketLossRatio)
	}
	if s.AudioBitrateBps <= 0 {
		t.Fatal("expected a positive derived bitrate")
	}
}
