/*
NAME
  coordinator.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package remux

import (
	"github.com/ausocean/avremux/internal/decode"
	"github.com/ausocean/avremux/internal/demux"
	"github.com/ausocean/avremux/internal/encode"
	"github.com/ausocean/avremux/internal/mux"
	"github.com/ausocean/avremux/internal/ts"
	"github.com/ausocean/utils/logging"
)

// ptsIncrement returns the PTS step for one 1024-sample AAC frame at
// sampleRate: ⌊1024 × 90000 / sample_rate⌋.
func ptsIncrement(sampleRate int) uint64 {
	return uint64(1024*90000) / uint64(sampleRate)
}

// Coordinator owns the full audio pipeline for one stream handle. It
// is not reentrant: process is synchronous and must not be called
// concurrently on the same Coordinator.
type Coordinator struct {
	cfg Config
	log logging.Logger

	demuxer *demux.Demuxer
	decoder decode.Decoder
	encoder *encode.Encoder
	muxer   *mux.Muxer

	observedSampleRate int
	nextPTS            uint64

	statPacketsProcessed int64
	statAudioPackets     int64
	statFramesDecoded    int64
	statFramesEncoded    int64
	statPacketsOutput    int64
	statBytesIn          int64
	statBytesOut         int64
	statErrors           int64
}

// Create validates cfg and constructs the Coordinator and all of its
// pipeline stages. The audio decoder is constructed lazily once the
// demuxer discovers the stream's codec, since it is unknown at
// construction time.
func Create(cfg Config, log logging.Logger) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enc, err := encode.NewEncoder(encode.Config{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		Bitrate:    cfg.Bitrate,
		Profile:    cfg.Profile,
	})
	if err != nil {
		return nil, newError(KindBadConfig, err)
	}

	muxCfg := mux.DefaultConfig()
	muxCfg.AudioPID = cfg.AudioPID
	muxCfg.VideoPID = cfg.VideoPID
	muxCfg.PMTPID = cfg.PMTPID
	muxCfg.ProgramNumber = cfg.ProgramNumber
	muxCfg.PSIIntervalPackets = cfg.PSIIntervalPackets

	return &Coordinator{
		cfg:                cfg,
		log:                log,
		demuxer:            demux.New(cfg.demuxConfig(), log),
		encoder:            enc,
		muxer:              mux.New(muxCfg),
		observedSampleRate: cfg.SampleRate,
	}, nil
}

// Process runs one TS packet through the parser and demultiplexer;
// when a complete PES emerges it is decoded, encoded, and re-muxed.
// It never panics; per-packet failures are recoverable and are
// reflected only in Stats. It returns the TS packets (if any)
// produced from this input packet, in order.
func (c *Coordinator) Process(raw []byte) ([][]byte, error) {
	c.statPacketsProcessed++
	c.statBytesIn += int64(len(raw))

	pkt, err := ts.Parse(raw)
	if err != nil {
		c.statErrors++
		c.log.Warning("bad ts packet, skipping", "error", err.Error())
		return nil, nil
	}

	if pkt.PID == c.cfg.VideoPID && pkt.HasPayload {
		return [][]byte{c.muxer.PassthroughVideo(raw)}, nil
	}

	pes, ok := c.demuxer.Process(pkt)
	if !ok {
		return nil, nil
	}
	c.statAudioPackets++

	if c.decoder == nil {
		dec, err := decode.New(c.demuxer.AudioCodec())
		if err != nil {
			c.statErrors++
			c.log.Warning("no decoder for discovered codec yet", "error", err.Error())
			return nil, nil
		}
		c.decoder = dec
	}

	// pes.Data is already the elementary stream payload; the demuxer
	// strips the PES header before handing a completed access unit
	// off, so the decoder never sees PES framing.
	pcm, err := c.decoder.Decode(pes.Data)
	if err != nil {
		c.statErrors++
		c.log.Warning("codec error decoding pes, skipping frame", "error", err.Error())
		return nil, nil
	}
	c.statFramesDecoded++

	if sr := c.decoder.SampleRate(); sr > 0 {
		c.observedSampleRate = sr
	}

	c.encoder.Write(pcm)
	frames, err := c.encoder.Encode()
	if err != nil {
		c.statErrors++
		c.log.Warning("codec error encoding aac frame, skipping", "error", err.Error())
		return nil, nil
	}

	return c.muxFrames(frames), nil
}

// Flush drains the encoder's residual partial frame and emits it.
func (c *Coordinator) Flush() ([][]byte, error) {
	frames, err := c.encoder.Flush()
	if err != nil {
		c.statErrors++
		return nil, newError(KindCodecError, err)
	}
	return c.muxFrames(frames), nil
}

func (c *Coordinator) muxFrames(frames [][]byte) [][]byte {
	var out [][]byte
	for _, adts := range frames {
		c.statFramesEncoded++
		tsPackets := c.muxer.MuxAudioFrame(c.nextPTS, adts)
		c.nextPTS += ptsIncrement(c.observedSampleRate)

		for _, p := range tsPackets {
			c.statPacketsOutput++
			c.statBytesOut += int64(len(p))
		}
		out = append(out, tsPackets...)
	}
	return out
}

// Stats returns a snapshot of the pipeline's counters.
func (c *Coordinator) Stats() Stats {
	c.statErrors += int64(c.demuxer.Errors)
	c.demuxer.Errors = 0
	return c.snapshot()
}

// Destroy releases all pipeline state. It is safe to call Destroy
// more than once; subsequent calls are no-ops.
func (c *Coordinator) Destroy() {
	c.demuxer = nil
	c.decoder = nil
	c.encoder = nil
	c.muxer = nil
}
