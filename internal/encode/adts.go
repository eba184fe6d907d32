/*
NAME
  adts.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package encode

import "github.com/pkg/errors"

// ADTS header size in bytes (no CRC).
const ADTSHeaderLen = 7

// Profile identifies the ADTS profile field. Only AAC-LC is required;
// HE-AAC variants are accepted but not exercised by the encoder
// backend.
type Profile uint8

const (
	ProfileAACLC   Profile = 1
	ProfileHEAAC   Profile = 4
	ProfileHEAACv2 Profile = 28
)

// adtsSampleRates is the standard ADTS sampling-frequency-index
// table; index 13-14 are reserved, 15 means "explicit frequency" and
// is unsupported here.
var adtsSampleRates = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

// ErrBadSampleRate is returned when a sample rate has no ADTS table
// entry.
var ErrBadSampleRate = errors.New("encode: sample rate not in ADTS table")

func sampleRateIndex(rate int) (int, error) {
	for i, r := range adtsSampleRates {
		if r == rate {
			return i, nil
		}
	}
	return 0, ErrBadSampleRate
}

// WriteADTSHeader writes a 7-byte ADTS header for a frame whose total
// byte count (header + payload) is frameLen. profile's ADTS profile
// field is profile-1, i.e. ProfileAACLC (1) encodes as 0.
func WriteADTSHeader(buf []byte, profile Profile, sampleRate, channels, frameLen int) error {
	if len(buf) < ADTSHeaderLen {
		return errors.New("encode: adts header buffer too small")
	}
	if frameLen > 0x1FFF {
		return errors.New("encode: adts frame length exceeds 13 bits")
	}
	if channels < 1 || channels > 7 {
		return errors.Errorf("encode: adts channel configuration out of range: %d", channels)
	}
	freqIdx, err := sampleRateIndex(sampleRate)
	if err != nil {
		return err
	}

	buf[0] = 0xFF
	buf[1] = 0xF1 // sync (high nibble) | MPEG-4, layer 0, protection_absent=1

	profileBits := byte(profile - 1)
	buf[2] = (profileBits << 6) | (byte(freqIdx) << 2) | (byte(channels) >> 2)
	buf[3] = (byte(channels) << 6) | byte(frameLen>>11)
	buf[4] = byte(frameLen >> 3)
	buf[5] = (byte(frameLen) << 5) | 0x1F // low 3 bits of frame length, buffer fullness high bits = all 1 (VBR)
	buf[6] = 0xFC                         // buffer fullness low bits = all 1, num_frames-1 = 0

	return nil
}

// BuildADTSFrame prepends a 7-byte ADTS header to a raw AAC access
// unit.
func BuildADTSFrame(profile Profile, sampleRate, channels int, aac []byte) ([]byte, error) {
	out := make([]byte, ADTSHeaderLen+len(aac))
	if err := WriteADTSHeader(out, profile, sampleRate, channels, len(out)); err != nil {
		return nil, err
	}
	copy(out[ADTSHeaderLen:], aac)
	return out, nil
}
