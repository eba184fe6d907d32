/*
NAME
  demux.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package demux discovers the audio elementary stream of an MPEG-2
// Transport Stream from its PAT/PMT (or, failing that, a heuristic
// fallback scan) and reassembles its PES packets from TS payloads.
package demux

import (
	"github.com/ausocean/avremux/internal/ts"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Codec identifies the detected audio codec carried on the
// discovered audio PID.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecMP2
	CodecAC3
)

func (c Codec) String() string {
	switch c {
	case CodecMP2:
		return "mp2"
	case CodecAC3:
		return "ac3"
	default:
		return "unknown"
	}
}

// phase tracks the demultiplexer's monotonic discovery state machine.
type phase int

const (
	phaseSearchingPAT phase = iota
	phaseSearchingPMT
	phaseStreaming
)

// Descriptor tags used to disambiguate AC-3 carried as PES private
// data (stream_type 0x06) from other private payloads.
const (
	descAC3       = 0x6A
	descEnhancedAC3 = 0x7A
	descAC3ATSC   = 0x81
)

// Config controls discovery behaviour not fixed by the wire format.
type Config struct {
	// FallbackAudioPIDs is scanned once FallbackThreshold packets have
	// elapsed with no PMT-discovered audio PID.
	FallbackAudioPIDs []uint16
	FallbackThreshold int
}

// DefaultConfig returns the default fallback scan parameters.
func DefaultConfig() Config {
	return Config{
		FallbackAudioPIDs: []uint16{68, 128, 256, 257, 258},
		FallbackThreshold: 1000,
	}
}

// PES is a fully reassembled audio access unit: the PES header has
// already been stripped, so Data is the raw elementary stream payload
// ready to hand directly to a Decoder.
type PES struct {
	StreamID byte
	Data     []byte
}

// Demuxer discovers the audio PID of a single program and reassembles
// its PES packets. It is not safe for concurrent use: callers must
// run a single-threaded, non-reentrant pipeline per handle.
type Demuxer struct {
	cfg Config
	log logging.Logger

	phase  phase
	pmtPID uint16

	audioPID   uint16
	audioCodec Codec

	packetsSeen int
	fallbackSet map[uint16]bool

	buf *pesBuffer

	Errors int
}

// New constructs a Demuxer. log must not be nil.
func New(cfg Config, log logging.Logger) *Demuxer {
	fb := make(map[uint16]bool, len(cfg.FallbackAudioPIDs))
	for _, p := range cfg.FallbackAudioPIDs {
		fb[p] = true
	}
	return &Demuxer{
		cfg:         cfg,
		log:         log,
		phase:       phaseSearchingPAT,
		fallbackSet: fb,
	}
}

// AudioPID returns the discovered audio PID, or 0 if not yet known.
func (d *Demuxer) AudioPID() uint16 { return d.audioPID }

// AudioCodec returns the discovered audio codec.
func (d *Demuxer) AudioCodec() Codec { return d.audioCodec }

// Process feeds one parsed TS packet through discovery and
// reassembly. It returns a completed PES payload when one becomes
// available; ok is false otherwise. Process never returns an error
// for per-packet issues (bad PSI, continuity breaks): these are
// recoverable stream/packet conditions, logged and counted instead.
func (d *Demuxer) Process(p ts.Packet) (out PES, ok bool) {
	d.packetsSeen++

	if p.Scrambled() {
		return PES{}, false
	}

	switch {
	case p.PID == ts.PatPID && p.PUSI:
		d.parsePAT(p.Payload)
		return PES{}, false

	case d.phase == phaseSearchingPMT && p.PID == d.pmtPID && p.PUSI:
		d.parsePMT(p.Payload)
		return PES{}, false

	case d.phase != phaseStreaming && d.packetsSeen >= d.cfg.FallbackThreshold && d.fallbackSet[p.PID]:
		if d.tryFallbackAdopt(p) {
			return PES{}, false
		}
	}

	if d.phase == phaseStreaming && p.PID == d.audioPID {
		return d.reassemble(p)
	}

	return PES{}, false
}

// Reset discards any in-progress PES reassembly state, for use when the
// audio PID changes. A continuity break drops the buffer directly
// inside Process.
func (d *Demuxer) Reset() {
	d.buf = nil
}

func (d *Demuxer) parsePAT(payload []byte) {
	if len(payload) < 2 {
		d.Errors++
		return
	}
	pointer := int(payload[0])
	body := payload[1+pointer:]
	if len(body) < 8 || body[0] != ts.PatTableID {
		d.Errors++
		return
	}

	sectionLen := int(body[1]&0x0F)<<8 | int(body[2])
	end := 3 + sectionLen - 4 // exclude CRC
	if end > len(body) {
		end = len(body)
	}

	for i := 8; i+3 < end; i += 4 {
		program := uint16(body[i])<<8 | uint16(body[i+1])
		pid := uint16(body[i+2]&0x1F)<<8 | uint16(body[i+3])
		if program != 0 {
			d.pmtPID = pid
			if d.phase == phaseSearchingPAT {
				d.phase = phaseSearchingPMT
			}
			d.log.Debug("pat discovered pmt pid", "pmt_pid", pid, "program", program)
			return
		}
	}
}

func (d *Demuxer) parsePMT(payload []byte) {
	if len(payload) < 2 {
		d.Errors++
		return
	}
	pointer := int(payload[0])
	body := payload[1+pointer:]
	if len(body) < 12 || body[0] != ts.PmtTableID {
		d.Errors++
		return
	}

	sectionLen := int(body[1]&0x0F)<<8 | int(body[2])
	end := 3 + sectionLen - 4
	if end > len(body) {
		end = len(body)
	}

	programInfoLen := int(body[10]&0x0F)<<8 | int(body[11])
	i := 12 + programInfoLen

	for i+4 < end {
		streamType := body[i]
		esPID := uint16(body[i+1]&0x1F)<<8 | uint16(body[i+2])
		esInfoLen := int(body[i+3]&0x0F)<<8 | int(body[i+4])
		descStart := i + 5
		descEnd := descStart + esInfoLen
		if descEnd > len(body) {
			descEnd = len(body)
		}

		codec, isAudio := codecFromStreamType(streamType, body[descStart:descEnd])
		if isAudio {
			d.audioPID = esPID
			d.audioCodec = codec
			d.phase = phaseStreaming
			d.log.Info("pmt discovered audio stream", "pid", esPID, "codec", codec.String())
			return
		}

		i = descEnd
	}
}

func codecFromStreamType(streamType byte, descriptors []byte) (Codec, bool) {
	switch streamType {
	case ts.StreamTypeMP2Audio1, ts.StreamTypeMP2Audio2:
		return CodecMP2, true
	case ts.StreamTypeAC3PES:
		return CodecAC3, true
	case ts.StreamTypeAC3Private:
		for i := 0; i+1 < len(descriptors); i += 2 + int(descriptors[i+1]) {
			tag := descriptors[i]
			if tag == descAC3 || tag == descEnhancedAC3 || tag == descAC3ATSC {
				return CodecAC3, true
			}
		}
		return CodecUnknown, false
	default:
		return CodecUnknown, false
	}
}

func (d *Demuxer) tryFallbackAdopt(p ts.Packet) bool {
	if !p.PUSI || len(p.Payload) < 4 {
		return false
	}
	streamID, _, err := ts.ValidatePESStart(p.Payload)
	if err != nil {
		return false
	}
	d.audioPID = p.PID
	d.audioCodec = CodecUnknown
	d.phase = phaseStreaming
	d.log.Warning("adopted audio pid via fallback scan", "pid", p.PID, "stream_id", streamID)
	return true
}

func (d *Demuxer) reassemble(p ts.Packet) (PES, bool) {
	if d.buf != nil {
		if d.buf.started && p.CC != d.buf.expectedCC {
			d.log.Warning("continuity break on audio pid, resetting pes buffer",
				"pid", p.PID, "got_cc", p.CC, "want_cc", d.buf.expectedCC)
			d.buf = nil
			d.Errors++
			return PES{}, false
		}
	}

	if p.PUSI {
		streamID, declared, err := ts.ValidatePESStart(p.Payload)
		if err != nil {
			d.log.Warning("bad pes start, dropping", "error", err.Error())
			d.buf = nil
			d.Errors++
			return PES{}, false
		}
		d.buf = newPESBuffer(streamID, declared)
	}

	if d.buf == nil {
		// Mid-stream packet arrived before any PUSI=1; nothing to
		// append to.
		return PES{}, false
	}

	d.buf.expectedCC = (p.CC + 1) & 0x0F
	d.buf.started = true

	complete, err := d.buf.append(p.Payload)
	if err != nil {
		d.log.Warning("pes buffer overflow, resetting", "error", err.Error())
		d.buf = nil
		d.Errors++
		return PES{}, false
	}
	if !complete {
		return PES{}, false
	}

	// The last TS packet of a PES is stuffed out to 188 bytes; keep only
	// the declared PES length.
	data := d.buf.data
	if len(data) > d.buf.declared {
		data = data[:d.buf.declared]
	}

	elementary, err := stripPESHeader(d.buf.streamID, data)
	if err != nil {
		d.log.Warning("malformed pes header, dropping", "error", err.Error())
		d.buf = nil
		d.Errors++
		return PES{}, false
	}

	out := PES{StreamID: d.buf.streamID, Data: elementary}
	d.buf = nil
	return out, true
}

// stripPESHeader removes the fixed and optional PES header from data,
// returning only the elementary stream payload, then applies
// stripAC3MiniHeader to that payload.
func stripPESHeader(streamID byte, data []byte) ([]byte, error) {
	headerLen, err := ts.PESHeaderLen(data)
	if err != nil {
		return nil, err
	}
	return stripAC3MiniHeader(streamID, data[headerLen:]), nil
}

// stripAC3MiniHeader removes the 2-byte mini-header AC-3 carries at
// the start of its elementary stream payload when wrapped as
// private_stream_1 (stream_id 0xBD). This is the only place the strip
// happens, applied uniformly and never for MPEG audio stream ids
// (0xC0-0xDF).
func stripAC3MiniHeader(streamID byte, elementary []byte) []byte {
	if streamID == ts.PrivateStreamID1 && len(elementary) >= 2 {
		return elementary[2:]
	}
	return elementary
}

var errOversizePES = errors.New("demux: pes buffer exceeded 1 MiB cap")
