/*
NAME
  demux_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package demux

import (
	"testing"

	"github.com/ausocean/avremux/internal/ts"
	"github.com/ausocean/utils/logging"
)

type nopLogger struct{}

func (nopLogger) SetLevel(int8)                          {}
func (nopLogger) Debug(msg string, args ...interface{})   {}
func (nopLogger) Info(msg string, args ...interface{})    {}
func (nopLogger) Warning(msg string, args ...interface{}) {}
func (nopLogger) Error(msg string, args ...interface{})   {}
func (nopLogger) Fatal(msg string, args ...interface{})   {}

var _ logging.Logger = nopLogger{}

func makeTSPacket(t *testing.T, pid uint16, pusi bool, cc uint8, payload []byte) ts.Packet {
	t.Helper()
	b := make([]byte, ts.Size)
	b[0] = 0x47
	b[1] = byte(pid >> 8)
	if pusi {
		b[1] |= 0x40
	}
	b[2] = byte(pid)
	b[3] = 0x10 | (cc & 0x0F) // payload only, no adaptation field
	n := copy(b[4:], payload)
	for i := 4 + n; i < len(b); i++ {
		b[i] = 0xFF
	}
	p, err := ts.Parse(b)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

// patPayload builds a single PAT packet mapping program 1 to PMT PID
// 0x0100.
func patPayload() []byte {
	section := []byte{
		0x00,       // table_id
		0xB0, 0x0D, // section_syntax, section_length
		0x00, 0x01, // transport_stream_id
		0xC1,       // version/current_next
		0x00, 0x00, // section/last section number
		0x00, 0x01, // program_number = 1
		0xE1, 0x00, // PMT PID = 0x0100
	}
	payload := append([]byte{0x00}, section...) // pointer field
	return ts.AppendCRC32(payload, payload[1:])
}

func TestPATDiscovery(t *testing.T) {
	d := New(DefaultConfig(), nopLogger{})
	p := makeTSPacket(t, 0x0000, true, 0, patPayload())
	_, ok := d.Process(p)
	if ok {
		t.Fatal("pat packet must not yield a pes")
	}
	if d.pmtPID != 0x0100 {
		t.Fatalf("pmt_pid = 0x%04x, want 0x0100", d.pmtPID)
	}
}

func pmtPayload() []byte {
	section := []byte{
		0x02,       // table_id
		0xB0, 0x12, // section_length
		0x00, 0x01, // program_number
		0xC1,
		0x00, 0x00,
		0xE1, 0x00, // PCR PID
		0xF0, 0x00, // program_info_length = 0
		0x03,       // stream_type = MP2
		0xE1, 0x01, // elementary PID = 0x0101
		0xF0, 0x00, // ES info length = 0
	}
	payload := append([]byte{0x00}, section...)
	return ts.AppendCRC32(payload, payload[1:])
}

func TestPMTAudioDiscoveryMP2(t *testing.T) {
	d := New(DefaultConfig(), nopLogger{})
	d.pmtPID = 0x0100
	d.phase = phaseSearchingPMT

	p := makeTSPacket(t, 0x0100, true, 0, pmtPayload())
	_, ok := d.Process(p)
	if ok {
		t.Fatal("pmt packet must not yield a pes")
	}
	if d.AudioPID() != 0x0101 {
		t.Fatalf("audio pid = 0x%04x, want 0x0101", d.AudioPID())
	}
	if d.AudioCodec() != CodecMP2 {
		t.Fatalf("codec = %v, want mp2", d.AudioCodec())
	}
}

func TestPESCompletion(t *testing.T) {
	d := New(DefaultConfig(), nopLogger{})
	d.audioPID = 0x0101
	d.phase = phaseStreaming

	body := make([]byte, 32)
	for i := range body {
		body[i] = byte(i)
	}
	payload := ts.BuildAudioPES(0xC0, 0, body)

	p := makeTSPacket(t, 0x0101, true, 0, payload)
	out, ok := d.Process(p)
	if !ok {
		t.Fatal("expected a completed pes")
	}
	if len(out.Data) != len(body) {
		t.Fatalf("elementary payload length = %d, want %d", len(out.Data), len(body))
	}
	for i, b := range out.Data {
		if b != body[i] {
			t.Fatalf("elementary payload corrupted at byte %d: got 0x%02x, want 0x%02x", i, b, body[i])
		}
	}
}

func TestPESCompletionStripsAC3MiniHeaderAfterRealHeader(t *testing.T) {
	d := New(DefaultConfig(), nopLogger{})
	d.audioPID = 0x0101
	d.audioCodec = CodecAC3
	d.phase = phaseStreaming

	frame := []byte{0x0B, 0x77, 0x01, 0x02, 0x03, 0x04} // AC-3 sync word onward
	miniHeader := []byte{0xAA, 0xBB}
	elementary := append(append([]byte{}, miniHeader...), frame...)
	payload := ts.BuildAudioPES(ts.PrivateStreamID1, 0, elementary)

	p := makeTSPacket(t, 0x0101, true, 0, payload)
	out, ok := d.Process(p)
	if !ok {
		t.Fatal("expected a completed pes")
	}
	if len(out.Data) != len(frame) || out.Data[0] != 0x0B || out.Data[1] != 0x77 {
		t.Fatalf("got %x, want ac3 frame %x with mini-header and pes header both removed", out.Data, frame)
	}
}

func TestContinuityBreak(t *testing.T) {
	d := New(DefaultConfig(), nopLogger{})
	d.audioPID = 0x0101
	d.phase = phaseStreaming

	payload := append([]byte{0x00, 0x00, 0x01, 0xC0, 0x00, 0x00}, make([]byte, 100)...)
	p1 := makeTSPacket(t, 0x0101, true, 5, payload)
	if _, ok := d.Process(p1); ok {
		t.Fatal("first fragment should not complete")
	}

	p2 := makeTSPacket(t, 0x0101, false, 7, make([]byte, 100))
	if _, ok := d.Process(p2); ok {
		t.Fatal("continuity break must not yield a pes")
	}
	if d.Errors != 1 {
		t.Fatalf("errors = %d, want 1", d.Errors)
	}
	if d.buf != nil {
		t.Fatal("buffer must be reset after continuity break")
	}
}

func TestAC3MiniHeaderStripped(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0x0B, 0x77, 0x01, 0x02}
	out := stripAC3MiniHeader(ts.PrivateStreamID1, data)
	if len(out) != 4 || out[0] != 0x0B || out[1] != 0x77 {
		t.Fatalf("mini-header not stripped: %x", out)
	}

	mp2 := stripAC3MiniHeader(0xC0, data)
	if len(mp2) != len(data) {
		t.Fatal("mp2 payload must not be stripped")
	}
}
