/*
NAME
  config.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package remux

import (
	"github.com/ausocean/avremux/internal/demux"
	"github.com/ausocean/avremux/internal/encode"
)

// Config provides the Coordinator's tunable parameters. A new Config
// must be validated before being passed to Create.
type Config struct {
	// SampleRate is the input/output PCM rate; it must have an ADTS
	// table entry.
	SampleRate int

	// Channels is the encoder's channel count. The decoders always
	// deliver stereo (downmixing or duplicating as needed); they do not
	// adapt their output to other channel counts.
	Channels int

	// Bitrate is the AAC-LC target bitrate in bits per second.
	Bitrate int

	// Profile is the ADTS profile field. AAC-LC is the only profile
	// this pipeline's encoder backend exercises.
	Profile encode.Profile

	// AudioPID is the output audio elementary stream PID.
	AudioPID uint16

	// VideoPID is the output video PID, used for PCR and passthrough
	// only; this pipeline never decodes or re-encodes video.
	VideoPID uint16

	// PMTPID is the output PMT PID.
	PMTPID uint16

	// ProgramNumber is the PAT entry mapped to PMTPID.
	ProgramNumber uint16

	// PSIIntervalPackets is the PAT+PMT regeneration cadence, in
	// audio frames.
	PSIIntervalPackets int

	// PESFallbackThreshold is the number of packets to wait before
	// heuristic audio PID discovery begins.
	PESFallbackThreshold int

	// FallbackAudioPIDs is the PID set scanned once
	// PESFallbackThreshold elapses with no PMT-discovered audio PID.
	FallbackAudioPIDs []uint16
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:           48000,
		Channels:             2,
		Bitrate:              192000,
		Profile:              encode.ProfileAACLC,
		AudioPID:             0x0101,
		VideoPID:             0x0100,
		PMTPID:               0x1000,
		ProgramNumber:        1,
		PSIIntervalPackets:   40,
		PESFallbackThreshold: 1000,
		FallbackAudioPIDs:    []uint16{68, 128, 256, 257, 258},
	}
}

// Validate checks the configuration, returning a *Error of kind
// KindBadConfig on failure. It delegates AAC-specific range checks to
// encode.Config.Validate so the two validation paths can never drift
// apart.
func (c Config) Validate() error {
	ec := encode.Config{SampleRate: c.SampleRate, Channels: c.Channels, Bitrate: c.Bitrate, Profile: c.Profile}
	if err := ec.Validate(); err != nil {
		return newError(KindBadConfig, err)
	}
	if c.PSIIntervalPackets <= 0 {
		return wrapf(KindBadConfig, "psi_interval_packets must be positive, got %d", c.PSIIntervalPackets)
	}
	if c.PESFallbackThreshold < 0 {
		return wrapf(KindBadConfig, "pes_fallback_threshold must be non-negative, got %d", c.PESFallbackThreshold)
	}
	return nil
}

func (c Config) demuxConfig() demux.Config {
	return demux.Config{
		FallbackAudioPIDs: c.FallbackAudioPIDs,
		FallbackThreshold: c.PESFallbackThreshold,
	}
}
