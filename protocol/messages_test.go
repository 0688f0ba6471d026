// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodeWorkerMessageRoundTrip(t *testing.T) {
	reg := NewRegister("worker-1")
	data, err := json.Marshal(reg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := DecodeWorkerMessage(data)
	if err != nil {
		t.Fatalf("DecodeWorkerMessage: %v", err)
	}
	got, ok := decoded.(Register)
	if !ok {
		t.Fatalf("decoded type = %T, want Register", decoded)
	}
	if got != reg {
		t.Errorf("got %+v, want %+v", got, reg)
	}
}

func TestDecodeWorkerMessageStripResult(t *testing.T) {
	msg := NewStripResult("w1", 7, 0, 32, 12, "deadbeef==")
	data, _ := json.Marshal(msg)

	decoded, err := DecodeWorkerMessage(data)
	if err != nil {
		t.Fatalf("DecodeWorkerMessage: %v", err)
	}
	got, ok := decoded.(StripResult)
	if !ok {
		t.Fatalf("decoded type = %T, want StripResult", decoded)
	}
	if got != msg {
		t.Errorf("got %+v, want %+v", got, msg)
	}
}

func TestDecodeWorkerMessageUnknownType(t *testing.T) {
	_, err := DecodeWorkerMessage([]byte(`{"type":"not_a_real_type"}`))
	if err == nil {
		t.Fatal("expected error for unknown message type")
	}
}

func TestDecodeCoordinatorToWorkerMessageRenderStrip(t *testing.T) {
	msg := RenderStrip{
		Type:          TypeRenderStrip,
		FrameID:       3,
		Width:         64,
		YStart:        0,
		YEnd:          32,
		TotalHeight:   32,
		CenterX:       -0.5,
		CenterY:       0,
		Zoom:          1,
		MaxIterations: 64,
	}
	data, _ := json.Marshal(msg)

	decoded, err := DecodeCoordinatorToWorkerMessage(data)
	if err != nil {
		t.Fatalf("DecodeCoordinatorToWorkerMessage: %v", err)
	}
	got, ok := decoded.(RenderStrip)
	if !ok {
		t.Fatalf("decoded type = %T, want RenderStrip", decoded)
	}
	if got.Palette != "" || got.ColourInterior != false {
		t.Errorf("expected omitted palette/colour_interior fields to decode as zero values, got %+v", got)
	}
}

func TestDecodeClientMessageFrameRequestAndGetStatus(t *testing.T) {
	fr := FrameRequest{Type: TypeRequestFrame, Width: 64, Height: 32, CenterX: -0.5, Zoom: 1, MaxIterations: 64}
	data, _ := json.Marshal(fr)
	decoded, err := DecodeClientMessage(data)
	if err != nil {
		t.Fatalf("DecodeClientMessage: %v", err)
	}
	if _, ok := decoded.(FrameRequest); !ok {
		t.Fatalf("decoded type = %T, want FrameRequest", decoded)
	}

	gs := GetStatus{Type: TypeGetStatus}
	data, _ = json.Marshal(gs)
	decoded, err = DecodeClientMessage(data)
	if err != nil {
		t.Fatalf("DecodeClientMessage: %v", err)
	}
	if _, ok := decoded.(GetStatus); !ok {
		t.Fatalf("decoded type = %T, want GetStatus", decoded)
	}
}

func TestNewStatusNilWorkersEncodesAsEmptyArray(t *testing.T) {
	status := NewStatus(nil, 0)
	data, err := json.Marshal(status)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"status","workers":[],"frames_rendered":0}` {
		t.Errorf("got %s", data)
	}
}

func TestNewErrorRoundTrip(t *testing.T) {
	e := NewError("No workers available")
	data, _ := json.Marshal(e)
	var decoded Error
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != e {
		t.Errorf("got %+v, want %+v", decoded, e)
	}
}
