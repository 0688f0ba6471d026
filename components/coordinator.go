// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

package components

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fractalgrid/mandelgrid/assembler"
	"github.com/fractalgrid/mandelgrid/clog"
	"github.com/fractalgrid/mandelgrid/dispatch"
	"github.com/fractalgrid/mandelgrid/profiler"
	"github.com/fractalgrid/mandelgrid/protocol"
	"github.com/fractalgrid/mandelgrid/registry"
)

// outboundCapacity is the minimum bounded channel capacity required by §3
// for a worker's outbound command channel.
const outboundCapacity = 32

// A Coordinator is the application component that tracks connected workers,
// dispatches strip render work proportional to measured capability, and
// assembles finished frames for waiting client sessions. It communicates
// with workers and clients over WebSocket connections upgraded by the
// transport package.
type Coordinator struct {
	*clog.CLogger

	id   string
	reg  *registry.Registry
	asm  *assembler.Assembler
	disp *dispatch.Dispatcher
	prof *profiler.Profiler
}

// NewCoordinator creates a ready-to-use Coordinator with the profiler loop's
// default interval, canonical profile dimensions, and stale-worker
// threshold from §4.7. Call StartProfiling to begin that loop.
func NewCoordinator() *Coordinator {
	id := uuid.NewString()
	log := clog.New("%v %s ", RoleCoordinator, UuidShort(id))
	reg := registry.New()
	asm := assembler.New(reg, log)
	return &Coordinator{
		CLogger: log,
		id:      id,
		reg:     reg,
		asm:     asm,
		disp:    dispatch.New(reg, asm, log),
		prof: profiler.New(reg, profiler.DefaultInterval, profiler.DefaultWidth, profiler.DefaultHeight,
			profiler.DefaultStaleThreshold, log),
	}
}

// StartProfiling runs the profiler loop (C7) in its own goroutine until ctx
// is cancelled.
func (c *Coordinator) StartProfiling(ctx context.Context) {
	go c.prof.Run(ctx)
}

// HandleWorkerConn owns one worker connection end to end: it starts the
// writer goroutine, reads inbound frames until the connection closes or a
// read error occurs, and applies each message to the registry and
// assembler. On return the worker is removed from the registry, mirroring
// the teacher's reader-task-owns-cleanup discipline (see SPEC_FULL.md
// §4.10/§9).
func (c *Coordinator) HandleWorkerConn(ctx context.Context, conn *websocket.Conn) {
	outbound := make(chan []byte, outboundCapacity)
	done := make(chan struct{})

	go c.writeLoop(conn, outbound, done)
	defer close(done)

	var workerID string

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		msg, err := protocol.DecodeWorkerMessage(data)
		if err != nil {
			c.Errorf("Invalid worker message: %v", err)
			continue
		}

		switch m := msg.(type) {
		case protocol.Register:
			workerID = m.WorkerID
			c.Printf("Worker registered: %s", UuidShort(workerID))
			c.reg.Register(workerID, outbound)
			c.sendTo(outbound, protocol.NewRegistered(workerID))
			c.sendTo(outbound, protocol.NewRunProfile(profiler.DefaultWidth, profiler.DefaultHeight))

		case protocol.Heartbeat:
			c.reg.Touch(m.WorkerID)

		case protocol.ProfileResult:
			c.Printf("Worker %s profile: %dms", UuidShort(m.WorkerID), m.ComputeMS)
			c.reg.SetCapability(m.WorkerID, m.ComputeMS)

		case protocol.StripResult:
			c.asm.HandleStripResult(m)
		}
	}

	if workerID != "" {
		c.Printf("Worker disconnected: %s", UuidShort(workerID))
		c.reg.Remove(workerID)
	}
}

// writeLoop drains outbound and writes each already-encoded frame to conn
// until done is closed or a write fails.
func (c *Coordinator) writeLoop(conn *websocket.Conn, outbound <-chan []byte, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case frame, ok := <-outbound:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

// sendTo marshals msg and enqueues it without blocking; a full channel is
// logged and dropped, the same discipline the dispatcher and profiler use.
func (c *Coordinator) sendTo(outbound chan<- []byte, msg any) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		c.Errorf("Failed to encode message: %v", err)
		return
	}
	select {
	case outbound <- encoded:
	default:
		c.Errorf("Failed to send: outbound channel full")
	}
}

// HandleClientConn is the client session (C8): it reads request_frame and
// get_status messages and replies with frame, status, or error responses.
// A malformed message produces an error reply; the session stays open.
func (c *Coordinator) HandleClientConn(conn *websocket.Conn) {
	c.Printf("Client connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		msg, err := protocol.DecodeClientMessage(data)
		if err != nil {
			c.replyClient(conn, protocol.NewError(fmt.Sprintf("Invalid message: %v", err)))
			continue
		}

		switch m := msg.(type) {
		case protocol.FrameRequest:
			resp, err := c.disp.RequestFrame(m)
			if err != nil {
				c.replyClient(conn, protocol.NewError(err.Error()))
				continue
			}
			c.replyClient(conn, resp)

		case protocol.GetStatus:
			c.replyClient(conn, c.status())
		}
	}

	c.Printf("Client disconnected")
}

// status builds a Status response from the current registry contents and
// render count.
func (c *Coordinator) status() protocol.Status {
	workers := c.reg.StatusAll()
	out := make([]protocol.WorkerStatus, 0, len(workers))
	for _, w := range workers {
		out = append(out, protocol.WorkerStatus{
			WorkerID:   w.ID,
			Capability: w.Capability,
			LastSeenMS: uint64(time.Since(w.LastSeen).Milliseconds()),
		})
	}
	return protocol.NewStatus(out, c.asm.FramesRendered())
}

func (c *Coordinator) replyClient(conn *websocket.Conn, msg any) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		c.Errorf("Failed to encode client response: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, encoded); err != nil {
		c.Errorf("Failed to write client response: %v", err)
	}
}

// Registry exposes the coordinator's worker registry to code outside the
// session handlers.
func (c *Coordinator) Registry() *registry.Registry {
	return c.reg
}
