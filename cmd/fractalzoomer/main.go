// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

/*
fractalzoomer is a mode-selector wrapper around the coordinator and worker
runtimes: MODE=coordinator runs just a coordinator, MODE=worker runs just a
worker, and MODE=standalone runs one of each in-process against each other,
useful for local exploration without two separate processes.

For usage details, run fractalzoomer with the command line flag -h or --help.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fractalgrid/mandelgrid/app"
	"github.com/fractalgrid/mandelgrid/clog"
)

func main() {
	var addr string
	var coordinatorURL string
	var help bool
	var log bool

	flag.Usage = usage
	flag.StringVar(&addr, "addr", ":8080", "coordinator listen address (host:port)")
	flag.StringVar(&coordinatorURL, "coordinator", "ws://localhost:8080/ws/worker", "coordinator WebSocket URL (worker mode)")
	flag.BoolVar(&help, "h", false, "Show usage information")
	flag.BoolVar(&log, "l", false, "Show logging output (for debugging)")
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}

	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if url := os.Getenv("COORDINATOR_URL"); url != "" {
		coordinatorURL = url
	}

	mode := os.Getenv("MODE")
	if mode == "" {
		mode = "standalone"
	}

	if log {
		clog.Enable()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		s := <-sigCh
		fmt.Printf("Terminating on signal %v...\n", s)
		cancel()
	}()

	switch mode {
	case "coordinator":
		app.RunCoordinator(ctx, addr)
	case "worker":
		app.RunWorker(ctx, coordinatorURL)
	case "standalone":
		go app.RunCoordinator(ctx, addr)
		// Give the listener a moment to come up before the in-process worker
		// dials it.
		time.Sleep(200 * time.Millisecond)
		app.RunWorker(ctx, coordinatorURL)
	default:
		fmt.Printf("Unknown MODE %q: must be coordinator, worker, or standalone\n", mode)
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf(`usage: fractalzoomer [-h|--help] [-l] [-addr addr] [-coordinator url]

Runs a coordinator, a worker, or both in-process, selected by the MODE
environment variable (coordinator, worker, or standalone; default
standalone). The listen address and coordinator URL can also be set with the
PORT and COORDINATOR_URL environment variables.

Flags:
`)
	flag.PrintDefaults()
}
