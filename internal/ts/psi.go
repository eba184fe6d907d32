/*
NAME
  psi.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ts

import "github.com/Comcast/gots/v2/psi"

// PSI table ids used by this package.
const (
	PatTableID = uint8(psi.PatTableID)
	PmtTableID = uint8(psi.PmtTableID)
)

// Stream types carried in a PMT elementary stream descriptor loop.
const (
	StreamTypeMPEG2Video = 0x02
	StreamTypeH264       = 0x1B
	StreamTypeMP2Audio1  = 0x03
	StreamTypeMP2Audio2  = 0x04
	StreamTypeAC3PES     = 0x81
	StreamTypeAC3Private = 0x06
	StreamTypeAAC        = 0x0F
)

// PMTConfig describes the single audio + single video elementary
// stream PMT this package emits. Multi-program tables are out of
// scope.
type PMTConfig struct {
	ProgramNumber uint16
	PMTPID        uint16
	PCRPID        uint16
	VideoPID      uint16
	AudioPID      uint16
}

// BuildPAT constructs a complete PAT section (table id 0x00) mapping
// ProgramNumber to PMTPID, including the real CRC32 trailer.
func BuildPAT(cfg PMTConfig) []byte {
	section := make([]byte, 0, 13)
	section = append(section, 0x00) // table_id
	// section_length placeholder, patched below.
	section = append(section, 0x00, 0x00)
	section = append(section, 0x00, 0x01) // transport_stream_id
	section = append(section, 0xC1)       // version=0, current_next=1
	section = append(section, 0x00, 0x00) // section/last section number
	section = append(section, byte(cfg.ProgramNumber>>8), byte(cfg.ProgramNumber))
	section = append(section, 0xE0|byte(cfg.PMTPID>>8), byte(cfg.PMTPID))

	secLen := len(section) - 3 + 4 // bytes after section_length field, plus CRC
	section[1] = 0xB0 | byte(secLen>>8)
	section[2] = byte(secLen)

	return AppendCRC32(section, section)
}

// BuildPMT constructs a complete PMT section (table id 0x02) declaring
// one video stream and one audio stream, including the real CRC32
// trailer.
func BuildPMT(cfg PMTConfig, audioStreamType byte) []byte {
	section := make([]byte, 0, 24)
	section = append(section, 0x02) // table_id
	section = append(section, 0x00, 0x00)
	section = append(section, byte(cfg.ProgramNumber>>8), byte(cfg.ProgramNumber))
	section = append(section, 0xC1)
	section = append(section, 0x00, 0x00)
	section = append(section, 0xE0|byte(cfg.PCRPID>>8), byte(cfg.PCRPID))
	section = append(section, 0xF0, 0x00) // program_info_length = 0

	// Video elementary stream entry.
	section = append(section, StreamTypeH264)
	section = append(section, 0xE0|byte(cfg.VideoPID>>8), byte(cfg.VideoPID))
	section = append(section, 0xF0, 0x00)

	// Audio elementary stream entry.
	section = append(section, audioStreamType)
	section = append(section, 0xE0|byte(cfg.AudioPID>>8), byte(cfg.AudioPID))
	section = append(section, 0xF0, 0x00)

	secLen := len(section) - 3 + 4
	section[1] = 0xB0 | byte(secLen>>8)
	section[2] = byte(secLen)

	return AppendCRC32(section, section)
}
