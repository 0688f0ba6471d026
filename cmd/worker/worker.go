// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

/*
Starts a worker that connects to a coordinator, measures its own rendering
capability when profiled, and renders the Mandelbrot strips it is assigned.

For usage details, run worker with the command line flag -h or --help.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fractalgrid/mandelgrid/app"
	"github.com/fractalgrid/mandelgrid/clog"
)

func main() {
	var coordinatorURL string
	var help bool
	var log bool

	flag.Usage = usage
	flag.StringVar(&coordinatorURL, "coordinator", "ws://localhost:8080/ws/worker", "coordinator WebSocket URL")
	flag.BoolVar(&help, "h", false, "Show usage information")
	flag.BoolVar(&log, "l", false, "Show logging output (for debugging)")
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}

	if url := os.Getenv("COORDINATOR_URL"); url != "" {
		coordinatorURL = url
	}

	if log {
		clog.Enable()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		s := <-sigCh
		fmt.Printf("Terminating worker on signal %v...\n", s)
		cancel()
	}()

	app.RunWorker(ctx, coordinatorURL)
}

func usage() {
	fmt.Printf(`usage: worker [-h|--help] [-l] [-coordinator url]

Starts a worker that connects to a coordinator and renders the profile and
strip render jobs it is assigned.

The coordinator URL can also be set with the COORDINATOR_URL environment
variable (overrides -coordinator).

Flags:
`)
	flag.PrintDefaults()
}
