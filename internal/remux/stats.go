/*
NAME
  stats.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package remux

// Stats is a read-only snapshot of pipeline counters. It is returned
// by value so callers cannot mutate internal coordinator state
// through it.
type Stats struct {
	PacketsProcessed int64
	AudioPackets     int64
	FramesDecoded    int64
	FramesEncoded    int64
	PacketsOutput    int64
	BytesIn          int64
	BytesOut         int64
	Errors           int64

	// AudioBitrateBps and PacketLossRatio are derived metrics,
	// computed from the running counters rather than tracked directly.
	AudioBitrateBps float64
	PacketLossRatio float64
}

// snapshot computes a Stats value from the coordinator's running
// counters.
func (c *Coordinator) snapshot() Stats {
	s := Stats{
		PacketsProcessed: c.statPacketsProcessed,
		AudioPackets:     c.statAudioPackets,
		FramesDecoded:    c.statFramesDecoded,
		FramesEncoded:    c.statFramesEncoded,
		PacketsOutput:    c.statPacketsOutput,
		BytesIn:          c.statBytesIn,
		BytesOut:         c.statBytesOut,
		Errors:           c.statErrors,
	}

	if c.statFramesEncoded > 0 {
		audioSeconds := float64(c.statFramesEncoded*1024) / float64(c.cfg.SampleRate)
		if audioSeconds > 0 {
			s.AudioBitrateBps = float64(c.statBytesOut*8) / audioSeconds
		}
	}
	if c.statPacketsProcessed > 0 {
		s.PacketLossRatio = float64(c.statErrors) / float64(c.statPacketsProcessed)
	}

	return s
}
