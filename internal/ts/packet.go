/*
NAME
  packet.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ts provides zero-allocation parsing of MPEG-2 Transport
// Stream packets, and construction of PES headers and PSI sections.
package ts

import (
	"github.com/Comcast/gots/v2/packet"
	"github.com/pkg/errors"
)

// Size is the fixed length of a single MPEG-2 TS packet.
const Size = 188

// SyncByte is the required value of the first byte of every TS packet.
const SyncByte = 0x47

// PAT/PMT well-known PIDs.
const (
	PatPID = 0x0000
)

// Errors returned by Parse.
var (
	ErrBadSize = errors.New("ts: packet is not 188 bytes")
	ErrBadSync = errors.New("ts: sync byte is not 0x47")
)

// Packet is an ephemeral, read-only view over a single 188-byte TS
// packet. It holds no state beyond the header fields extracted at
// parse time and a slice into the caller's buffer; it must not be
// retained past the lifetime of that buffer.
type Packet struct {
	TransportError bool
	PUSI           bool
	Priority       bool
	PID            uint16
	Scrambling     uint8
	HasAdaptation  bool
	HasPayload     bool
	CC             uint8 // continuity counter, 4-bit, 0-15
	Payload        []byte
	raw            packet.Packet
}

// Parse validates and parses a single 188-byte TS packet. b is not
// retained beyond Payload, which aliases b.
func Parse(b []byte) (Packet, error) {
	if len(b) != Size {
		return Packet{}, ErrBadSize
	}
	if b[0] != SyncByte {
		return Packet{}, ErrBadSync
	}

	pkt := packet.Packet(b)

	pid, err := packet.Pid(pkt)
	if err != nil {
		return Packet{}, errors.Wrap(err, "ts: read pid")
	}
	pusi, err := packet.PayloadUnitStartIndicator(pkt)
	if err != nil {
		return Packet{}, errors.Wrap(err, "ts: read pusi")
	}
	cc, err := packet.ContinuityCounter(pkt)
	if err != nil {
		return Packet{}, errors.Wrap(err, "ts: read continuity counter")
	}
	hasPayload, err := packet.ContainsPayload(pkt)
	if err != nil {
		return Packet{}, errors.Wrap(err, "ts: read payload flag")
	}
	hasAdapt, err := packet.ContainsAdaptationField(pkt)
	if err != nil {
		return Packet{}, errors.Wrap(err, "ts: read adaptation flag")
	}

	p := Packet{
		TransportError: b[1]&0x80 != 0,
		PUSI:           pusi,
		Priority:       b[1]&0x20 != 0,
		PID:            uint16(pid),
		Scrambling:     (b[3] >> 6) & 0x03,
		HasAdaptation:  hasAdapt,
		HasPayload:     hasPayload,
		CC:             uint8(cc) & 0x0f,
		raw:            pkt,
	}

	if hasPayload {
		payload, err := packet.Payload(pkt)
		if err != nil {
			return Packet{}, errors.Wrap(err, "ts: read payload")
		}
		p.Payload = payload
	}

	return p, nil
}

// Scrambled reports whether this packet's payload is scrambled and
// must be silently skipped per the demultiplexing contract.
func (p Packet) Scrambled() bool { return p.Scrambling != 0 }
