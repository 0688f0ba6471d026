// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package transport adapts the worker and client session handlers of
// components onto net/http, upgrading incoming connections to WebSocket with
// gorilla/websocket (A2).
package transport

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fractalgrid/mandelgrid/clog"
	"github.com/fractalgrid/mandelgrid/components"
)

// upgrader has no origin restriction: the coordinator is meant to be reached
// by workers and clients on arbitrary hosts, mirroring a headless compute
// service rather than a browser-facing one.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handlers builds the three HTTP routes a coordinator process exposes: the
// worker WebSocket upgrade path, the client WebSocket upgrade path, and a
// plain health check.
func Handlers(ctx context.Context, coord *components.Coordinator, log *clog.CLogger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws/worker", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("Worker upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		coord.HandleWorkerConn(ctx, conn)
	})

	mux.HandleFunc("/ws/client", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("Client upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		coord.HandleClientConn(conn)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
