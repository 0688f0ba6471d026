// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

/*
Starts a coordinator that accepts worker connections, dispatches Mandelbrot
strip render jobs proportional to measured worker capability, and serves
assembled frames to clients, all over WebSocket.

For usage details, run coordinator with the command line flag -h or --help.
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
	var addr string
	var help bool
	var log bool

	flag.Usage = usage
	flag.StringVar(&addr, "addr", ":8080", "listen address (host:port)")
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

	if log {
		clog.Enable()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		s := <-sigCh
		fmt.Printf("Terminating coordinator on signal %v...\n", s)
		cancel()
	}()

	app.RunCoordinator(ctx, addr)
}

func usage() {
	fmt.Printf(`usage: coordinator [-h|--help] [-l] [-addr addr]

Starts a coordinator that dispatches Mandelbrot strip render work to
connected workers and serves frames to clients over WebSocket.

The listen address can also be set with the PORT environment variable
(overrides -addr, matching the port assigned by most hosting platforms).

Flags:
`)
	flag.PrintDefaults()
}
