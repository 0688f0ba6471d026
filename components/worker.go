// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

package components

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fractalgrid/mandelgrid/clog"
	"github.com/fractalgrid/mandelgrid/mandelbrot"
	"github.com/fractalgrid/mandelgrid/palette"
	"github.com/fractalgrid/mandelgrid/protocol"
)

// Fixed canonical view a worker renders to measure its own capability, and
// the timers governing its connection lifecycle (§4.2).
const (
	profileCenterX    = -0.5
	profileCenterY    = 0.0
	profileZoom       = 1.0
	profileIterations = 256

	reconnectDelay    = 5 * time.Second
	heartbeatInterval = 10 * time.Second
	dialTimeout       = 10 * time.Second

	workerOutboundDepth = 32
	paletteTableSize    = 256
)

// A Worker is the worker runtime (C2): it holds a stable id for the process
// lifetime and maintains a connection to one coordinator, reconnecting
// forever on any failure.
type Worker struct {
	*clog.CLogger

	id             string
	coordinatorURL string
	tables         map[palette.Variant][]palette.RGB
}

// NewWorker returns a Worker with a freshly generated id, ready to Run
// against the given coordinator WebSocket URL.
func NewWorker(coordinatorURL string) *Worker {
	id := uuid.NewString()
	return &Worker{
		CLogger:        clog.New("%v %s ", RoleWorker, UuidShort(id)),
		id:             id,
		coordinatorURL: coordinatorURL,
		tables:         make(map[palette.Variant][]palette.RGB),
	}
}

// Run connects to the coordinator and serves requests until ctx is
// cancelled, reconnecting after reconnectDelay on any connection failure.
// It only returns once ctx is done.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := w.session(ctx); err != nil {
			w.Errorf("Session ended: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// session dials the coordinator, registers, and serves one connection's
// worth of work until the connection fails or ctx is cancelled.
func (w *Worker) session(ctx context.Context) error {
	u, err := url.Parse(w.coordinatorURL)
	if err != nil {
		return fmt.Errorf("parse coordinator url: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial coordinator: %w", err)
	}
	defer conn.Close()

	w.Printf("Connected to coordinator at %s", w.coordinatorURL)

	outbound := make(chan []byte, workerOutboundDepth)
	done := make(chan struct{})

	go w.writeLoop(conn, outbound, done)
	defer close(done)

	w.send(outbound, protocol.NewRegister(w.id))
	go w.heartbeatLoop(ctx, outbound, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read from coordinator: %w", err)
		}

		msg, err := protocol.DecodeCoordinatorToWorkerMessage(data)
		if err != nil {
			w.Errorf("Invalid coordinator message: %v", err)
			continue
		}

		switch m := msg.(type) {
		case protocol.Registered:
			w.Printf("Registered with coordinator")

		case protocol.RunProfile:
			w.handleRunProfile(outbound, m)

		case protocol.RenderStrip:
			w.handleRenderStrip(outbound, m)
		}
	}
}

// writeLoop drains outbound and writes each frame to conn until done closes
// or a write fails.
func (w *Worker) writeLoop(conn *websocket.Conn, outbound <-chan []byte, done <-chan struct{}) {
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

// heartbeatLoop enqueues a Heartbeat every heartbeatInterval until ctx is
// cancelled or done closes. It runs concurrently with strip and profile
// replies going out on the same outbound channel (§4.2).
func (w *Worker) heartbeatLoop(ctx context.Context, outbound chan<- []byte, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.send(outbound, protocol.NewHeartbeat(w.id))
		}
	}
}

// handleRunProfile renders the fixed canonical view at the requested
// dimensions and replies with the measured duration (§4.2).
func (w *Worker) handleRunProfile(outbound chan<- []byte, req protocol.RunProfile) {
	start := time.Now()
	table := w.paletteTable(palette.Default)
	mandelbrot.RenderStrip(req.Width, 0, req.Height, req.Height, profileCenterX, profileCenterY, profileZoom,
		profileIterations, table, false)
	computeMS := uint64(time.Since(start).Milliseconds())

	w.Printf("Profile render: %dms", computeMS)
	w.send(outbound, protocol.NewProfileResult(w.id, computeMS))
}

// handleRenderStrip renders the requested band and replies with the base64
// encoded pixels (§4.2).
func (w *Worker) handleRenderStrip(outbound chan<- []byte, req protocol.RenderStrip) {
	start := time.Now()

	variant := palette.Variant(req.Palette)
	if !variant.Valid() {
		variant = palette.Default
	}
	table := w.paletteTable(variant)

	pixels := mandelbrot.RenderStrip(req.Width, req.YStart, req.YEnd, req.TotalHeight, req.CenterX, req.CenterY,
		req.Zoom, req.MaxIterations, table, req.ColourInterior)
	computeMS := uint64(time.Since(start).Milliseconds())

	data := base64.StdEncoding.EncodeToString(pixels)
	w.send(outbound, protocol.NewStripResult(w.id, req.FrameID, req.YStart, req.YEnd, computeMS, data))
}

// paletteTable returns the cached colour table for variant, generating and
// caching it on first use. A worker serializes its own requests (§4.2), so
// the cache needs no synchronization.
func (w *Worker) paletteTable(variant palette.Variant) []palette.RGB {
	if table, ok := w.tables[variant]; ok {
		return table
	}
	table := variant.Generate(paletteTableSize)
	w.tables[variant] = table
	return table
}

// send marshals msg and enqueues it without blocking; a full channel is
// logged and dropped.
func (w *Worker) send(outbound chan<- []byte, msg any) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		w.Errorf("Failed to encode message: %v", err)
		return
	}
	select {
	case outbound <- encoded:
	default:
		w.Errorf("Failed to send: outbound channel full")
	}
}
