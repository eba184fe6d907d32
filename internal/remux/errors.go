/*
NAME
  errors.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package remux implements the Coordinator: it drives the TS parser,
// demultiplexer, decoder, encoder and multiplexer packet-by-packet,
// derives PTS, and collects stats.
package remux

import "github.com/pkg/errors"

// ErrorKind distinguishes the pipeline's recovery classes.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindBadConfig
	KindBadPacket
	KindBadStream
	KindCodecError
	KindHostAbort
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadConfig:
		return "bad_config"
	case KindBadPacket:
		return "bad_packet"
	case KindBadStream:
		return "bad_stream"
	case KindCodecError:
		return "codec_error"
	case KindHostAbort:
		return "host_abort"
	default:
		return "none"
	}
}

// Error wraps an underlying cause with a recovery Kind, so callers at
// the FFI boundary can map it to the correct negative return code.
type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func wrapf(kind ErrorKind, format string, args ...interface{}) *Error {
	return newError(kind, errors.Errorf(format, args...))
}
