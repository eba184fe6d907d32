/*
NAME
  lasterror.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ffiabi

/*
#include <stdlib.h>
*/
import "C"

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync"
)

// lastErrors stores the most recent error per calling goroutine,
// approximating a thread-local last-error string for C callers. Go
// has no real thread-local storage and the C ABI gives us no caller
// context to key on, so the calling goroutine's id is extracted from
// its own stack trace header line, the standard workaround for
// goroutine-local state in Go.
var lastErrors sync.Map // map[int64]string

func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	// Stack traces start with "goroutine <id> [running]:".
	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func setLastError(msg string) {
	lastErrors.Store(goroutineID(), msg)
}

func getLastError() (string, bool) {
	v, ok := lastErrors.Load(goroutineID())
	if !ok {
		return "", false
	}
	return v.(string), true
}

// recoverHostAbort converts a panic at an FFI entry point into a
// recorded last-error and, if out is supplied, a -1 result code. It
// must be the first deferred call in every exported function.
func recoverHostAbort(out ...*C.int) {
	r := recover()
	if r == nil {
		return
	}
	setLastError(fmt.Sprintf("host abort: %v", r))
	for _, o := range out {
		*o = -1
	}
}
