// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package profiler periodically re-measures worker capability and evicts
// workers that have gone quiet (§4.7 / C7).
package profiler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fractalgrid/mandelgrid/clog"
	"github.com/fractalgrid/mandelgrid/protocol"
	"github.com/fractalgrid/mandelgrid/registry"
)

// Default tuning values from §4.7.
const (
	DefaultInterval       = 60 * time.Second
	DefaultWidth          = 512
	DefaultHeight         = 512
	DefaultStaleThreshold = 30 * time.Second
)

// Profiler is the profiler loop (§4.7 / C7).
type Profiler struct {
	*clog.CLogger

	reg            *registry.Registry
	interval       time.Duration
	width, height  uint32
	staleThreshold time.Duration
}

// New returns a Profiler with the given tick interval, canonical profile
// dimensions, and stale-worker threshold.
func New(reg *registry.Registry, interval time.Duration, width, height uint32, staleThreshold time.Duration, log *clog.CLogger) *Profiler {
	return &Profiler{
		CLogger:        log,
		reg:            reg,
		interval:       interval,
		width:          width,
		height:         height,
		staleThreshold: staleThreshold,
	}
}

// Run ticks every interval, re-profiling every registered worker and then
// evicting any that have gone stale, until ctx is cancelled.
func (p *Profiler) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Profiler) tick() {
	snapshot := p.reg.SnapshotAll()
	p.Printf("Running profiling on %d workers", len(snapshot))

	msg := protocol.NewRunProfile(p.width, p.height)
	encoded, err := json.Marshal(msg)
	if err != nil {
		p.Errorf("Failed to encode profile request: %v", err)
	} else {
		for _, w := range snapshot {
			select {
			case w.Outbound <- encoded:
			default:
				p.Errorf("Failed to send profile request to worker %s: outbound channel full", w.ID)
			}
		}
	}

	removed := p.reg.EvictStale(p.staleThreshold)
	for _, id := range removed {
		p.Printf("Removed stale worker: %s", id)
	}
}
