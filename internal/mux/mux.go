/*
NAME
  mux.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mux wraps AAC access units in PES packets, fragments them
// into 188-byte TS packets, and periodically emits PAT/PMT.
package mux

import (
	"github.com/ausocean/avremux/internal/ts"
)

// Config describes the output TS layout.
type Config struct {
	AudioPID            uint16
	VideoPID            uint16
	PMTPID              uint16
	ProgramNumber       uint16
	PSIIntervalPackets  int
	AudioStreamType     byte
}

// DefaultConfig returns the documented default output layout.
func DefaultConfig() Config {
	return Config{
		AudioPID:           0x0101,
		VideoPID:           0x0100,
		PMTPID:             0x1000,
		ProgramNumber:      1,
		PSIIntervalPackets: 40,
		AudioStreamType:    ts.StreamTypeAAC,
	}
}

// Muxer owns per-PID continuity counters and PSI emission cadence.
// Not safe for concurrent use.
type Muxer struct {
	cfg Config

	cc           map[uint16]uint8
	packetsMuxed int
}

// New constructs a Muxer for cfg.
func New(cfg Config) *Muxer {
	return &Muxer{
		cfg: cfg,
		cc:  make(map[uint16]uint8),
	}
}

func (m *Muxer) nextCC(pid uint16) uint8 {
	cc := m.cc[pid]
	m.cc[pid] = (cc + 1) & 0x0F
	return cc
}

// MuxAudioFrame wraps one ADTS-framed AAC access unit in a PES packet
// with PTS==DTS and fragments it into 188-byte TS packets on
// cfg.AudioPID. PSI (PAT+PMT) is prepended whenever the configured
// interval elapses, including on the very first call.
func (m *Muxer) MuxAudioFrame(pts uint64, adts []byte) [][]byte {
	var out [][]byte

	if m.packetsMuxed%m.cfg.PSIIntervalPackets == 0 {
		out = append(out, m.buildPSIPackets()...)
	}

	pes := ts.BuildAudioPES(0xC0, pts, adts)
	out = append(out, m.fragment(m.cfg.AudioPID, pes)...)

	m.packetsMuxed++
	return out
}

// PassthroughVideo rewrites only the continuity counter of a video
// PID packet, preserving monotonic per-PID accounting without
// otherwise altering the packet.
func (m *Muxer) PassthroughVideo(pkt []byte) []byte {
	out := append([]byte(nil), pkt...)
	cc := m.nextCC(m.cfg.VideoPID)
	out[3] = (out[3] &^ 0x0F) | cc
	return out
}

func (m *Muxer) buildPSIPackets() [][]byte {
	pmtCfg := ts.PMTConfig{
		ProgramNumber: m.cfg.ProgramNumber,
		PMTPID:        m.cfg.PMTPID,
		PCRPID:        m.cfg.VideoPID,
		VideoPID:      m.cfg.VideoPID,
		AudioPID:      m.cfg.AudioPID,
	}

	pat := ts.BuildPAT(pmtCfg)
	pmt := ts.BuildPMT(pmtCfg, m.cfg.AudioStreamType)

	return [][]byte{
		m.fragmentPSI(ts.PatPID, pat),
		m.fragmentPSI(m.cfg.PMTPID, pmt),
	}
}

// fragmentPSI wraps a single PSI section (already including its
// trailing CRC) into exactly one TS packet, carrying PUSI=1 and a
// pointer_field of 0x00.
func (m *Muxer) fragmentPSI(pid uint16, section []byte) []byte {
	buf := make([]byte, ts.Size)
	buf[0] = ts.SyncByte
	buf[1] = 0x40 | byte(pid>>8) // PUSI=1
	buf[2] = byte(pid)
	cc := m.nextCC(pid)
	buf[3] = 0x10 | cc // payload only

	n := copy(buf[5:], section) // buf[4] is the pointer_field (0x00)
	for i := 5 + n; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return buf
}

// fragment splits pes into consecutive 188-byte TS packets on pid.
// The first packet has PUSI=1; the final packet's tail is padded with
// 0xFF.
func (m *Muxer) fragment(pid uint16, pes []byte) [][]byte {
	var packets [][]byte
	first := true

	for len(pes) > 0 {
		buf := make([]byte, ts.Size)
		buf[0] = ts.SyncByte
		buf[1] = byte(pid >> 8)
		if first {
			buf[1] |= 0x40
		}
		buf[2] = byte(pid)
		cc := m.nextCC(pid)
		buf[3] = 0x10 | cc

		n := copy(buf[4:], pes)
		pes = pes[n:]
		for i := 4 + n; i < len(buf); i++ {
			buf[i] = 0xFF
		}

		packets = append(packets, buf)
		first = false
	}

	return packets
}
