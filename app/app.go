// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package app wires the coordinator and worker runtimes to their process
// entrypoints, shared by cmd/coordinator, cmd/worker, and the cmd/fractalzoomer
// mode-selector wrapper so the wiring is written once.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fractalgrid/mandelgrid/clog"
	comp "github.com/fractalgrid/mandelgrid/components"
	"github.com/fractalgrid/mandelgrid/transport"
)

// ShutdownGrace bounds how long RunCoordinator waits for in-flight HTTP
// requests to drain after ctx is cancelled. WebSocket sessions are hijacked
// connections, which the server's Shutdown does not wait for.
const ShutdownGrace = 5 * time.Second

// RunCoordinator starts a coordinator listening on addr, runs the profiler
// loop alongside it, and blocks until ctx is cancelled, then shuts the HTTP
// server down gracefully within ShutdownGrace.
func RunCoordinator(ctx context.Context, addr string) {
	coordinatorLog := clog.New("coordinator ")
	coordinator := comp.NewCoordinator()
	coordinator.StartProfiling(ctx)

	server := &http.Server{
		Addr:    addr,
		Handler: transport.Handlers(ctx, coordinator, coordinatorLog),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Coordinator listening on %s\n", addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		<-shutdownDone
	} else if err != nil {
		fmt.Printf("Coordinator server error: %v\n", err)
	}
}

// RunWorker starts a single worker runtime against coordinatorURL and blocks
// until ctx is cancelled.
func RunWorker(ctx context.Context, coordinatorURL string) {
	fmt.Printf("Connecting worker to %s...\n", coordinatorURL)
	comp.NewWorker(coordinatorURL).Run(ctx)
}
