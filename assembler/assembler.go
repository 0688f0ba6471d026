// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package assembler collects per-strip render results into complete frames
// and hands each assembled frame to the client session awaiting it (C6).
package assembler

import (
	"encoding/base64"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fractalgrid/mandelgrid/clog"
	"github.com/fractalgrid/mandelgrid/protocol"
	"github.com/fractalgrid/mandelgrid/registry"
)

// Result is delivered on a pending frame's completion channel at most once,
// when the frame completes, carrying the fully assembled Response. The
// Assembler itself never sets Err.
type Result struct {
	Response protocol.FrameResponse
	Err      error
}

// pendingFrame is the assembler's bookkeeping for one in-flight frame.
type pendingFrame struct {
	width, height  uint32
	strips         map[uint32][]byte // y_start -> decoded strip bytes
	expectedStrips int
	startTime      time.Time
	done           chan Result // one-shot, buffered 1
}

// Assembler is the frame assembler (§4.6 / C6).
type Assembler struct {
	*clog.CLogger

	reg *registry.Registry

	mu      sync.Mutex
	pending map[uint64]*pendingFrame

	framesRendered atomic.Uint64
}

// New returns an Assembler that clears busy state and touches last-seen on
// reg whenever a strip result arrives.
func New(reg *registry.Registry, log *clog.CLogger) *Assembler {
	return &Assembler{
		CLogger: log,
		reg:     reg,
		pending: make(map[uint64]*pendingFrame),
	}
}

// Begin installs a new pending frame and returns the channel its result will
// be delivered on once the frame completes. A frame removed by Cancel never
// receives anything on that channel.
func (a *Assembler) Begin(frameID uint64, width, height uint32, expectedStrips int) <-chan Result {
	done := make(chan Result, 1)

	a.mu.Lock()
	a.pending[frameID] = &pendingFrame{
		width:          width,
		height:         height,
		strips:         make(map[uint32][]byte, expectedStrips),
		expectedStrips: expectedStrips,
		startTime:      time.Now(),
		done:           done,
	}
	a.mu.Unlock()

	return done
}

// Cancel removes a pending frame without ever sending on its completion
// channel, used by the dispatcher when its wait times out. A strip result
// that arrives afterwards finds nothing under frameID and is dropped.
func (a *Assembler) Cancel(frameID uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pending, frameID)
}

// HandleStripResult processes one inbound StripResult: it clears the
// reporting worker's busy flag, decodes the payload, and folds it into the
// matching pending frame. If that completes the frame, the assembled buffer
// is delivered on the frame's completion channel and the frame is removed.
func (a *Assembler) HandleStripResult(res protocol.StripResult) {
	a.reg.MarkBusy(res.WorkerID, false)
	a.reg.Touch(res.WorkerID)

	data, err := base64.StdEncoding.DecodeString(res.Data)
	if err != nil {
		a.Errorf("Failed to decode strip data from worker %s: %v", res.WorkerID, err)
		return
	}

	a.mu.Lock()
	frame, ok := a.pending[res.FrameID]
	if !ok {
		a.mu.Unlock()
		return // frame already completed, timed out, or cancelled
	}

	frame.strips[res.YStart] = data

	if len(frame.strips) != frame.expectedStrips {
		a.mu.Unlock()
		return
	}

	delete(a.pending, res.FrameID)
	a.mu.Unlock()

	assembled := assembleFrame(frame)
	renderMS := uint64(time.Since(frame.startTime).Milliseconds())

	response := protocol.NewFrameResponse(
		res.FrameID,
		frame.width,
		frame.height,
		renderMS,
		base64.StdEncoding.EncodeToString(assembled),
	)

	frame.done <- Result{Response: response}
	a.framesRendered.Add(1)
}

// assembleFrame copies every strip into a contiguous width*height*3 buffer in
// ascending y_start order. A copy is truncated defensively if it would
// overrun the buffer.
func assembleFrame(frame *pendingFrame) []byte {
	buf := make([]byte, int(frame.width)*int(frame.height)*3)

	starts := make([]uint32, 0, len(frame.strips))
	for yStart := range frame.strips {
		starts = append(starts, yStart)
	}
	slices.Sort(starts)

	for _, yStart := range starts {
		data := frame.strips[yStart]
		offset := int(yStart) * int(frame.width) * 3
		end := offset + len(data)
		if end > len(buf) {
			end = len(buf)
		}
		if offset >= end {
			continue
		}
		copy(buf[offset:end], data[:end-offset])
	}

	return buf
}

// FramesRendered returns the total number of frames successfully assembled
// and delivered so far.
func (a *Assembler) FramesRendered() uint64 {
	return a.framesRendered.Load()
}
