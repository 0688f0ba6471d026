// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

package assembler

import (
	"encoding/base64"
	"testing"

	"github.com/fractalgrid/mandelgrid/clog"
	"github.com/fractalgrid/mandelgrid/protocol"
	"github.com/fractalgrid/mandelgrid/registry"
)

func stripBytes(width, rows int, fill byte) []byte {
	b := make([]byte, width*rows*3)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestHandleStripResultOutOfOrderAssembly(t *testing.T) {
	reg := registry.New()
	reg.Register("w1", make(chan []byte, 1))
	asm := New(reg, clog.New("test "))

	const width, height = 4, 4
	done := asm.Begin(1, width, height, 2)

	top := stripBytes(width, 2, 0x11)
	bottom := stripBytes(width, 2, 0x22)

	// Deliver the second half first.
	asm.HandleStripResult(protocol.NewStripResult("w1", 1, 2, 4, 5, base64.StdEncoding.EncodeToString(bottom)))
	select {
	case <-done:
		t.Fatal("frame completed before all strips arrived")
	default:
	}

	asm.HandleStripResult(protocol.NewStripResult("w1", 1, 0, 2, 5, base64.StdEncoding.EncodeToString(top)))

	result := <-done
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.Response.Data)
	if err != nil {
		t.Fatalf("decode response data: %v", err)
	}
	if len(decoded) != width*height*3 {
		t.Fatalf("len(decoded) = %d, want %d", len(decoded), width*height*3)
	}
	if decoded[0] != 0x11 || decoded[len(decoded)-1] != 0x22 {
		t.Errorf("strips landed in the wrong rows: first=%x last=%x", decoded[0], decoded[len(decoded)-1])
	}
}

func TestHandleStripResultUnknownFrameIsDropped(t *testing.T) {
	reg := registry.New()
	reg.Register("w1", make(chan []byte, 1))
	asm := New(reg, clog.New("test "))

	data := base64.StdEncoding.EncodeToString(stripBytes(4, 4, 0x01))
	asm.HandleStripResult(protocol.NewStripResult("w1", 999, 0, 4, 5, data))

	if asm.FramesRendered() != 0 {
		t.Error("expected no frames rendered for an unknown frame id")
	}
}

func TestHandleStripResultClearsBusyFlag(t *testing.T) {
	reg := registry.New()
	reg.Register("w1", make(chan []byte, 1))
	reg.MarkBusy("w1", true)
	asm := New(reg, clog.New("test "))

	asm.Begin(1, 4, 2, 1)
	data := base64.StdEncoding.EncodeToString(stripBytes(4, 2, 0x01))
	asm.HandleStripResult(protocol.NewStripResult("w1", 1, 0, 2, 5, data))

	if len(reg.SnapshotIdle()) != 1 {
		t.Error("worker should be idle again after reporting a strip result")
	}
}

func TestCancelDropsLateStripResult(t *testing.T) {
	reg := registry.New()
	reg.Register("w1", make(chan []byte, 1))
	asm := New(reg, clog.New("test "))

	done := asm.Begin(1, 4, 2, 1)
	asm.Cancel(1)

	data := base64.StdEncoding.EncodeToString(stripBytes(4, 2, 0x01))
	asm.HandleStripResult(protocol.NewStripResult("w1", 1, 0, 2, 5, data))

	select {
	case result := <-done:
		t.Fatalf("expected no value on a cancelled frame's channel, got %+v", result)
	default:
		// Cancel removed the pending frame before the strip result arrived, so
		// HandleStripResult found nothing to complete and done stays empty.
	}
}
