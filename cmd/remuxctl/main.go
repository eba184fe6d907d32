/*
NAME
  main.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command remuxctl drives the audio remuxing Coordinator over a file
// or pipe, for local testing of the core pipeline outside of the C
// ABI boundary.
package main

import (
	"flag"
	"io"
	"os"

	"github.com/ausocean/avremux/internal/remux"
	"github.com/ausocean/avremux/internal/ts"
	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	in := flag.String("in", "", "input TS file; defaults to stdin")
	out := flag.String("out", "", "output TS file; defaults to stdout")
	sampleRate := flag.Int("sample-rate", 48000, "output sample rate")
	channels := flag.Int("channels", 2, "output channel count")
	bitrate := flag.Int("bitrate", 192000, "AAC-LC bitrate")
	logPath := flag.String("log", "", "log file path; defaults to stderr")
	flag.Parse()

	log := newLogger(*logPath)

	cfg := remux.DefaultConfig()
	cfg.SampleRate = *sampleRate
	cfg.Channels = *channels
	cfg.Bitrate = *bitrate

	c, err := remux.Create(cfg, log)
	if err != nil {
		log.Error("failed to create coordinator", "error", err.Error())
		os.Exit(1)
	}
	defer c.Destroy()

	src, err := openInput(*in)
	if err != nil {
		log.Error("failed to open input", "error", err.Error())
		os.Exit(1)
	}
	defer src.Close()

	dst, err := openOutput(*out)
	if err != nil {
		log.Error("failed to open output", "error", err.Error())
		os.Exit(1)
	}
	defer dst.Close()

	if err := run(c, src, dst, log); err != nil {
		log.Error("pipeline error", "error", err.Error())
		os.Exit(1)
	}

	stats := c.Stats()
	log.Info("remux complete",
		"packets_processed", stats.PacketsProcessed,
		"frames_encoded", stats.FramesEncoded,
		"errors", stats.Errors,
	)
}

func run(c *remux.Coordinator, src io.Reader, dst io.Writer, log logging.Logger) error {
	buf := make([]byte, ts.Size)
	for {
		_, err := io.ReadFull(src, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			log.Warning("trailing bytes smaller than one ts packet, ignoring")
			break
		}
		if err != nil {
			return err
		}

		packets, err := c.Process(buf)
		if err != nil {
			log.Warning("process error", "error", err.Error())
			continue
		}
		for _, p := range packets {
			if _, err := dst.Write(p); err != nil {
				return err
			}
		}
	}

	packets, err := c.Flush()
	if err != nil {
		return err
	}
	for _, p := range packets {
		if _, err := dst.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return noopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type noopCloser struct{ io.Writer }

func (noopCloser) Close() error { return nil }

func newLogger(path string) logging.Logger {
	if path == "" {
		return logging.New(logging.Info, os.Stderr, true)
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return logging.New(logging.Info, rotator, true)
}
