/*
NAME
  mux_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mux

import (
	"testing"

	"github.com/ausocean/avremux/internal/ts"
)

func TestPSIEmittedOnFirstCall(t *testing.T) {
	m := New(DefaultConfig())
	out := m.MuxAudioFrame(0, []byte{0xAA, 0xBB})
	if len(out) < 3 {
		t.Fatalf("expected PAT+PMT+at least one audio packet, got %d packets", len(out))
	}
	pat, err := ts.Parse(out[0])
	if err != nil {
		t.Fatal(err)
	}
	if pat.PID != ts.PatPID || !pat.PUSI {
		t.Fatalf("first packet must be PAT with PUSI set, got pid=%d pusi=%v", pat.PID, pat.PUSI)
	}
	pmt, err := ts.Parse(out[1])
	if err != nil {
		t.Fatal(err)
	}
	if pmt.PID != DefaultConfig().PMTPID {
		t.Fatalf("second packet must be PMT, pid=%d", pmt.PID)
	}
}

func TestPSIIdempotentAcrossTwoIntervals(t *testing.T) {
	cfgA := DefaultConfig()
	cfgA.PSIIntervalPackets = 1

	mA := New(cfgA)
	out1 := mA.MuxAudioFrame(0, []byte{0x00})
	out2 := mA.MuxAudioFrame(1920, []byte{0x00})

	// PAT bytes must be identical modulo continuity counter (byte 3,
	// low nibble).
	pat1 := out1[0]
	pat2 := out2[0]
	if len(pat1) != len(pat2) {
		t.Fatal("pat length mismatch across PSI emissions")
	}
	for i := range pat1 {
		if i == 3 {
			continue // continuity counter advances by design.
		}
		if pat1[i] != pat2[i] {
			t.Fatalf("pat byte %d differs: %02x vs %02x", i, pat1[i], pat2[i])
		}
	}
}

func TestContinuityCounterAdvancesPerPID(t *testing.T) {
	m := New(DefaultConfig())
	var lastAudioCC uint8
	seen := false

	for i := 0; i < 3; i++ {
		out := m.MuxAudioFrame(uint64(i)*1920, make([]byte, 300))
		for _, raw := range out {
			p, err := ts.Parse(raw)
			if err != nil {
				t.Fatal(err)
			}
			if p.PID != DefaultConfig().AudioPID {
				continue
			}
			if seen {
				want := (lastAudioCC + 1) & 0x0F
				if p.CC != want {
					t.Fatalf("audio cc = %d, want %d", p.CC, want)
				}
			}
			lastAudioCC = p.CC
			seen = true
		}
	}
}

func TestPTSProgressionAcrossThreeFrames(t *testing.T) {
	// Builds three audio PES packets at the 48 kHz PTS increment and
	// reads the PTS field back out of the first audio TS packet of each
	// frame: it must survive TS fragmentation as 0, 1920, 3840.
	m := New(DefaultConfig())
	const increment = 1920
	for i := 0; i < 3; i++ {
		out := m.MuxAudioFrame(uint64(i*increment), []byte{0x01, 0x02})
		if len(out) == 0 {
			t.Fatalf("frame %d produced no output", i)
		}
		found := false
		for _, raw := range out {
			p, err := ts.Parse(raw)
			if err != nil {
				t.Fatal(err)
			}
			if p.PID != DefaultConfig().AudioPID || !p.PUSI {
				continue
			}
			b := p.Payload[9:14] // PTS follows the 9-byte fixed PES header.
			pts := uint64(b[0]>>1&0x07)<<30 | uint64(b[1])<<22 | uint64(b[2]>>1)<<15 | uint64(b[3])<<7 | uint64(b[4]>>1)
			if want := uint64(i * increment); pts != want {
				t.Fatalf("frame %d pts = %d, want %d", i, pts, want)
			}
			found = true
		}
		if !found {
			t.Fatalf("frame %d produced no audio packet with PUSI set", i)
		}
	}
}
