/*
NAME
  pes.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ts

import "github.com/pkg/errors"

// Audio PES stream ids recognised at PES reassembly boundaries.
const (
	AudioStreamIDMin  = 0xC0
	AudioStreamIDMax  = 0xDF
	PrivateStreamID1  = 0xBD
	MaxPESPayloadSize = 1 << 20 // 1 MiB reassembly buffer cap.
)

// PESHeader is the subset of PES header fields needed to build an
// audio access unit.
type PESHeader struct {
	StreamID byte
	PTS      uint64 // 33-bit timestamp, 90kHz units
	DTS      uint64 // 33-bit timestamp, 90kHz units
}

// IsAudioStreamID reports whether id is a valid PUSI=1 PES start for
// audio reassembly: MPEG audio (0xC0-0xDF) or private_stream_1
// (0xBD, commonly used for AC-3).
func IsAudioStreamID(id byte) bool {
	return (id >= AudioStreamIDMin && id <= AudioStreamIDMax) || id == PrivateStreamID1
}

// ValidatePESStart checks that payload begins with a PES start code
// and a recognised audio stream id, returning the declared payload
// length (len_field==0 resolves to MaxPESPayloadSize).
func ValidatePESStart(payload []byte) (streamID byte, declaredLen int, err error) {
	if len(payload) < 6 {
		return 0, 0, errors.New("ts: pes payload too short for header")
	}
	if payload[0] != 0x00 || payload[1] != 0x00 || payload[2] != 0x01 {
		return 0, 0, errors.New("ts: missing pes start code")
	}
	streamID = payload[3]
	if !IsAudioStreamID(streamID) {
		return 0, 0, errors.Errorf("ts: unexpected pes stream id 0x%02x", streamID)
	}
	lenField := int(payload[4])<<8 | int(payload[5])
	if lenField == 0 {
		declaredLen = MaxPESPayloadSize
	} else {
		declaredLen = lenField + 6
	}
	return streamID, declaredLen, nil
}

// PESHeaderLen returns the total byte length of the fixed and
// optional PES header — everything up to but not including the
// elementary stream payload — given a payload already validated by
// ValidatePESStart. The optional header's length is carried in the
// header_data_length byte at offset 8, following the two flag bytes
// at offsets 6 and 7.
func PESHeaderLen(payload []byte) (int, error) {
	if len(payload) < 9 {
		return 0, errors.New("ts: pes payload too short for optional header")
	}
	total := 9 + int(payload[8])
	if len(payload) < total {
		return 0, errors.New("ts: pes header_data_length exceeds buffered payload")
	}
	return total, nil
}

// writeTimestamp encodes a 33-bit PTS/DTS value into the canonical
// 5-byte PES timestamp form, prefix identifying which field this is
// (0x2 when only one of PTS/DTS is present and it's PTS, 0x3 when
// both PTS and DTS are present and this is the PTS, 0x1 for DTS).
// Marker bits are always 1.
func writeTimestamp(buf []byte, prefix byte, ts uint64) {
	buf[0] = (prefix << 4) | byte((ts>>29)&0x0E) | 0x01
	buf[1] = byte(ts >> 22)
	buf[2] = byte((ts>>14)&0xFE) | 0x01
	buf[3] = byte(ts >> 7)
	buf[4] = byte((ts<<1)&0xFE) | 0x01
}

// BuildAudioPES builds a complete PES packet wrapping data with equal
// PTS and DTS (audio has no B-frames, so DTS==PTS).
func BuildAudioPES(streamID byte, pts uint64, data []byte) []byte {
	const headerDataLength = 10 // both PTS and DTS present

	out := make([]byte, 0, 9+headerDataLength+len(data))
	out = append(out, 0x00, 0x00, 0x01, streamID)

	// PES_packet_length covers everything after the length field itself:
	// 2 flag bytes + header_data_length byte + header_data_length bytes + payload.
	pesLength := 2 + 1 + headerDataLength + len(data)
	out = append(out, byte(pesLength>>8), byte(pesLength))

	out = append(out, 0x84)       // '10' marker, scrambling=0, priority=0, alignment=1, copyright=0, original=0
	out = append(out, 0xC0)       // PTS_DTS_flags=11, ESCR/ES_rate/DSM/additional_copy/CRC/extension=0
	out = append(out, headerDataLength)

	ptsBuf := make([]byte, 5)
	writeTimestamp(ptsBuf, 0x3, pts)
	out = append(out, ptsBuf...)

	dtsBuf := make([]byte, 5)
	writeTimestamp(dtsBuf, 0x1, pts)
	out = append(out, dtsBuf...)

	out = append(out, data...)
	return out
}
