// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package dispatch translates a client frame request into proportional strip
// assignments across idle workers, sends them, and awaits assembly (C5).
package dispatch

import (
	"encoding/json"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/fractalgrid/mandelgrid/assembler"
	"github.com/fractalgrid/mandelgrid/clog"
	"github.com/fractalgrid/mandelgrid/protocol"
	"github.com/fractalgrid/mandelgrid/registry"
)

// FrameTimeout is the hard ceiling a client request waits for assembly
// before the dispatcher gives up on a frame. It is a var, not a const, so
// tests can shrink it rather than waiting out the real default.
var FrameTimeout = 30 * time.Second

var (
	errNoWorkers    = errors.New("No workers available")
	errAssignFailed = errors.New("Failed to assign strips")
	errFrameTimeout = errors.New("Frame render timeout")
)

// assignment is one worker's contiguous y-band of a frame being dispatched.
type assignment struct {
	workerID string
	outbound registry.Outbound
	yStart   uint32
	yEnd     uint32
}

// Dispatcher is the strip dispatcher (§4.5 / C5).
type Dispatcher struct {
	*clog.CLogger

	reg *registry.Registry
	asm *assembler.Assembler

	nextFrameID atomic.Uint64
}

// New returns a Dispatcher wired to the given registry and assembler.
func New(reg *registry.Registry, asm *assembler.Assembler, log *clog.CLogger) *Dispatcher {
	return &Dispatcher{CLogger: log, reg: reg, asm: asm}
}

// RequestFrame runs the full dispatch procedure of §4.5 for one
// FrameRequest, blocking until the frame is assembled, fails, or times out.
func (d *Dispatcher) RequestFrame(req protocol.FrameRequest) (protocol.FrameResponse, error) {
	frameID := d.nextFrameID.Add(1) - 1

	idle := d.reg.SnapshotIdle()
	if len(idle) == 0 {
		return protocol.FrameResponse{}, errNoWorkers
	}

	assignments := partitionStrips(idle, req.Height)
	if len(assignments) == 0 {
		return protocol.FrameResponse{}, errAssignFailed
	}

	done := d.asm.Begin(frameID, req.Width, req.Height, len(assignments))

	for _, a := range assignments {
		d.reg.MarkBusy(a.workerID, true)
	}

	for _, a := range assignments {
		msg := protocol.RenderStrip{
			Type:           protocol.TypeRenderStrip,
			FrameID:        frameID,
			Width:          req.Width,
			YStart:         a.yStart,
			YEnd:           a.yEnd,
			TotalHeight:    req.Height,
			CenterX:        req.CenterX,
			CenterY:        req.CenterY,
			Zoom:           req.Zoom,
			MaxIterations:  req.MaxIterations,
			Palette:        req.Palette,
			ColourInterior: req.ColourInterior,
		}
		d.send(a.workerID, a.outbound, msg)
	}

	select {
	case result := <-done:
		if result.Err != nil {
			return protocol.FrameResponse{}, result.Err
		}
		return result.Response, nil
	case <-time.After(FrameTimeout):
		d.asm.Cancel(frameID)
		return protocol.FrameResponse{}, errFrameTimeout
	}
}

// send marshals and enqueues msg on a worker's outbound channel. A full
// channel or marshal error is logged and swallowed: the frame timeout is the
// recovery mechanism for a strip that never arrives (§7).
func (d *Dispatcher) send(workerID string, outbound registry.Outbound, msg any) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		d.Errorf("Failed to encode message for worker %s: %v", workerID, err)
		return
	}

	select {
	case outbound <- encoded:
	default:
		d.Errorf("Failed to send to worker %s: outbound channel full", workerID)
	}
}

// partitionStrips implements the proportional split of §4.5 step 3: workers
// are weighted by capability, every worker but the last gets a rounded
// share, and the last absorbs the exact remainder so the bands always cover
// [0, height) with no gap or overlap regardless of rounding.
func partitionStrips(idle []registry.Snapshot, height uint32) []assignment {
	total := 0.0
	for _, w := range idle {
		total += w.Capability
	}
	if total <= 0 {
		return nil
	}

	assignments := make([]assignment, 0, len(idle))
	var currentY uint32

	n := len(idle)
	for i, w := range idle {
		if currentY >= height {
			break
		}

		var stripHeight uint32
		if i == n-1 {
			stripHeight = height - currentY
		} else {
			proportion := w.Capability / total
			stripHeight = uint32(math.Round(float64(height) * proportion))
		}

		if stripHeight == 0 {
			continue
		}

		yEnd := currentY + stripHeight
		if yEnd > height {
			yEnd = height
		}

		assignments = append(assignments, assignment{
			workerID: w.ID,
			outbound: w.Outbound,
			yStart:   currentY,
			yEnd:     yEnd,
		})
		currentY = yEnd
	}

	return assignments
}
