/*
NAME
  pesbuffer.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package demux

import "github.com/ausocean/avremux/internal/ts"

// pesBuffer accumulates TS payload fragments into one complete PES
// packet for a single PID.
type pesBuffer struct {
	streamID   byte
	data       []byte
	declared   int
	started    bool
	expectedCC uint8
}

func newPESBuffer(streamID byte, declaredLen int) *pesBuffer {
	return &pesBuffer{streamID: streamID, declared: declaredLen}
}

// append adds payload bytes to the buffer, reporting whether the PES
// is now complete. It returns an error if the 1 MiB size cap is
// exceeded.
func (b *pesBuffer) append(payload []byte) (complete bool, err error) {
	if len(b.data)+len(payload) > ts.MaxPESPayloadSize {
		return false, errOversizePES
	}
	b.data = append(b.data, payload...)
	return len(b.data) >= b.declared, nil
}
