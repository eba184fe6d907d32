/*
NAME
  remux.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ffiabi exposes the Coordinator across a C ABI for
// in-process embedding. Every exported entry point recovers from a
// panic and converts it to a negative return code plus a last-error
// string; nothing here ever unwinds across the boundary.
package ffiabi

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ausocean/avremux/internal/remux"
	"github.com/ausocean/utils/logging"
)

// buildVersion is read from the module's build info, or is
// "avremux/dev" when no build info is available.
var buildVersion = readBuildVersion()

func readBuildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "avremux/dev"
	}
	return "avremux/" + info.Main.Version
}

var (
	handles   sync.Map // map[uintptr]*remux.Coordinator
	nextToken uintptr
)

func registerHandle(c *remux.Coordinator) uintptr {
	token := atomic.AddUintptr(&nextToken, 1)
	handles.Store(token, c)
	return token
}

func lookupHandle(token uintptr) (*remux.Coordinator, bool) {
	if token == 0 {
		return nil, false
	}
	v, ok := handles.Load(token)
	if !ok {
		return nil, false
	}
	return v.(*remux.Coordinator), true
}

func releaseHandle(token uintptr) {
	handles.Delete(token)
}

//export remux_init
func remux_init(sampleRate, channels, bitrate C.int) C.uintptr_t {
	var handle uintptr
	func() {
		defer recoverHostAbort()

		cfg := remux.DefaultConfig()
		cfg.SampleRate = int(sampleRate)
		cfg.Channels = int(channels)
		cfg.Bitrate = int(bitrate)

		c, err := remux.Create(cfg, quietLogger{})
		if err != nil {
			setLastError(err.Error())
			return
		}
		handle = registerHandle(c)
	}()
	return C.uintptr_t(handle)
}

//export remux_process
func remux_process(handle C.uintptr_t, inPtr *C.uint8_t, inLen C.int, outPtr *C.uint8_t, outCap C.int) C.int {
	var result C.int
	func() {
		defer recoverHostAbort(&result)

		c, ok := lookupHandle(uintptr(handle))
		if !ok || inPtr == nil || outPtr == nil {
			result = -1
			return
		}

		in := unsafe.Slice((*byte)(inPtr), int(inLen))
		out := unsafe.Slice((*byte)(outPtr), int(outCap))

		n, err := processInto(c, in, out)
		if err != nil {
			setLastError(err.Error())
			result = -2
			return
		}
		result = C.int(n)
	}()
	return result
}

//export remux_flush
func remux_flush(handle C.uintptr_t, outPtr *C.uint8_t, outCap C.int) C.int {
	var result C.int
	func() {
		defer recoverHostAbort(&result)

		c, ok := lookupHandle(uintptr(handle))
		if !ok || outPtr == nil {
			result = -1
			return
		}

		packets, err := c.Flush()
		if err != nil {
			setLastError(err.Error())
			result = -1
			return
		}

		out := unsafe.Slice((*byte)(outPtr), int(outCap))
		n, fit := copyPackets(out, packets)
		if !fit {
			result = -2
			return
		}
		result = C.int(n)
	}()
	return result
}

//export remux_free
func remux_free(handle C.uintptr_t) {
	defer recoverHostAbort()
	if handle == 0 {
		return
	}
	if c, ok := lookupHandle(uintptr(handle)); ok {
		c.Destroy()
		releaseHandle(uintptr(handle))
	}
}

//export last_error
func last_error() *C.char {
	defer recoverHostAbort()
	msg, ok := getLastError()
	if !ok {
		return nil
	}
	return C.CString(msg)
}

//export free_string
func free_string(s *C.char) {
	defer recoverHostAbort()
	if s == nil {
		return
	}
	C.free(unsafe.Pointer(s))
}

//export version
func version() *C.char {
	defer recoverHostAbort()
	return C.CString(buildVersion)
}

// processInto runs one TS packet through the Coordinator and copies
// the resulting TS packets into out, returning the number of bytes
// written. It returns an error (mapped to -2 by the caller) if out is
// too small to hold the output.
func processInto(c *remux.Coordinator, in, out []byte) (int, error) {
	packets, err := c.Process(in)
	if err != nil {
		return 0, err
	}
	n, fit := copyPackets(out, packets)
	if !fit {
		return 0, errBufferTooSmall
	}
	return n, nil
}

func copyPackets(out []byte, packets [][]byte) (n int, fit bool) {
	for _, p := range packets {
		if n+len(p) > len(out) {
			return n, false
		}
		n += copy(out[n:], p)
	}
	return n, true
}

// quietLogger adapts to logging.Logger for FFI callers that have not
// wired a real sink; the host is expected to supply its own logger in
// a future revision of this boundary if structured logs are needed
// across the C ABI.
type quietLogger struct{}

func (quietLogger) SetLevel(int8) {}

func (quietLogger) Debug(string, ...interface{}) {}

func (quietLogger) Info(string, ...interface{}) {}

func (quietLogger) Warning(string, ...interface{}) {}

func (quietLogger) Error(string, ...interface{}) {}

func (quietLogger) Fatal(string, ...interface{}) {}

var _ logging.Logger = quietLogger{}

var errBufferTooSmall = remuxError("ffiabi: output buffer too small")

type remuxError string

func (e remuxError) Error() string { return string(e) }
