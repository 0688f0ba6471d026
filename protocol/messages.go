// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package protocol defines the tagged-union JSON messages exchanged between
// clients, the coordinator, and workers. Every message carries a lowercase,
// underscored "type" field identifying its variant; strip and frame pixel
// payloads travel base64-encoded in a "data" string field.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Worker → Coordinator message type tags.
const (
	TypeRegister      = "register"
	TypeHeartbeat     = "heartbeat"
	TypeProfileResult = "profile_result"
	TypeStripResult   = "strip_result"
)

// Coordinator → Worker message type tags.
const (
	TypeRegistered  = "registered"
	TypeRunProfile  = "run_profile"
	TypeRenderStrip = "render_strip"
)

// Client → Coordinator message type tags.
const (
	TypeRequestFrame = "request_frame"
	TypeGetStatus    = "get_status"
)

// Coordinator → Client message type tags.
const (
	TypeFrame  = "frame"
	TypeStatus = "status"
	TypeError  = "error"
)

// envelope extracts just the discriminator field, shared by every decode
// path below.
type envelope struct {
	Type string `json:"type"`
}

// ---- Worker → Coordinator ----

// Register announces a new worker connection with its stable id.
type Register struct {
	Type     string `json:"type"`
	WorkerID string `json:"worker_id"`
}

// NewRegister builds a Register message.
func NewRegister(workerID string) Register {
	return Register{Type: TypeRegister, WorkerID: workerID}
}

// Heartbeat keeps a worker's registry entry from going stale.
type Heartbeat struct {
	Type     string `json:"type"`
	WorkerID string `json:"worker_id"`
}

// NewHeartbeat builds a Heartbeat message.
func NewHeartbeat(workerID string) Heartbeat {
	return Heartbeat{Type: TypeHeartbeat, WorkerID: workerID}
}

// ProfileResult reports the measured duration of a canonical profiling
// render, from which capability is derived.
type ProfileResult struct {
	Type      string `json:"type"`
	WorkerID  string `json:"worker_id"`
	ComputeMS uint64 `json:"compute_ms"`
}

// NewProfileResult builds a ProfileResult message.
func NewProfileResult(workerID string, computeMS uint64) ProfileResult {
	return ProfileResult{Type: TypeProfileResult, WorkerID: workerID, ComputeMS: computeMS}
}

// StripResult carries the base64-encoded pixel output of one rendered strip.
type StripResult struct {
	Type      string `json:"type"`
	WorkerID  string `json:"worker_id"`
	FrameID   uint64 `json:"frame_id"`
	YStart    uint32 `json:"y_start"`
	YEnd      uint32 `json:"y_end"`
	ComputeMS uint64 `json:"compute_ms"`
	Data      string `json:"data"`
}

// NewStripResult builds a StripResult message.
func NewStripResult(workerID string, frameID uint64, yStart, yEnd uint32, computeMS uint64, data string) StripResult {
	return StripResult{
		Type:      TypeStripResult,
		WorkerID:  workerID,
		FrameID:   frameID,
		YStart:    yStart,
		YEnd:      yEnd,
		ComputeMS: computeMS,
		Data:      data,
	}
}

// DecodeWorkerMessage parses a worker→coordinator frame, returning one of
// Register, Heartbeat, ProfileResult, or StripResult.
func DecodeWorkerMessage(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}

	switch env.Type {
	case TypeRegister:
		var m Register
		return m, unmarshalInto(data, &m)
	case TypeHeartbeat:
		var m Heartbeat
		return m, unmarshalInto(data, &m)
	case TypeProfileResult:
		var m ProfileResult
		return m, unmarshalInto(data, &m)
	case TypeStripResult:
		var m StripResult
		return m, unmarshalInto(data, &m)
	default:
		return nil, fmt.Errorf("unknown worker message type %q", env.Type)
	}
}

// ---- Coordinator → Worker ----

// Registered acknowledges a Register message.
type Registered struct {
	Type     string `json:"type"`
	WorkerID string `json:"worker_id"`
}

// NewRegistered builds a Registered message.
func NewRegistered(workerID string) Registered {
	return Registered{Type: TypeRegistered, WorkerID: workerID}
}

// RunProfile requests a canonical benchmarking render of the given area.
type RunProfile struct {
	Type   string `json:"type"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// NewRunProfile builds a RunProfile message.
func NewRunProfile(width, height uint32) RunProfile {
	return RunProfile{Type: TypeRunProfile, Width: width, Height: height}
}

// RenderStrip requests the rendering of one horizontal band of a frame.
type RenderStrip struct {
	Type           string  `json:"type"`
	FrameID        uint64  `json:"frame_id"`
	Width          uint32  `json:"width"`
	YStart         uint32  `json:"y_start"`
	YEnd           uint32  `json:"y_end"`
	TotalHeight    uint32  `json:"total_height"`
	CenterX        float64 `json:"center_x"`
	CenterY        float64 `json:"center_y"`
	Zoom           float64 `json:"zoom"`
	MaxIterations  uint32  `json:"max_iterations"`
	Palette        string  `json:"palette,omitempty"`
	ColourInterior bool    `json:"colour_interior,omitempty"`
}

// DecodeCoordinatorToWorkerMessage parses a coordinator→worker frame,
// returning one of Registered, RunProfile, or RenderStrip.
func DecodeCoordinatorToWorkerMessage(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}

	switch env.Type {
	case TypeRegistered:
		var m Registered
		return m, unmarshalInto(data, &m)
	case TypeRunProfile:
		var m RunProfile
		return m, unmarshalInto(data, &m)
	case TypeRenderStrip:
		var m RenderStrip
		return m, unmarshalInto(data, &m)
	default:
		return nil, fmt.Errorf("unknown coordinator message type %q", env.Type)
	}
}

// ---- Client → Coordinator ----

// FrameRequest asks the coordinator to render and assemble one frame.
type FrameRequest struct {
	Type           string  `json:"type"`
	Width          uint32  `json:"width"`
	Height         uint32  `json:"height"`
	CenterX        float64 `json:"center_x"`
	CenterY        float64 `json:"center_y"`
	Zoom           float64 `json:"zoom"`
	MaxIterations  uint32  `json:"max_iterations"`
	Palette        string  `json:"palette,omitempty"`
	ColourInterior bool    `json:"colour_interior,omitempty"`
}

// GetStatus asks the coordinator for its current worker pool and render
// count. It carries no payload beyond the type tag.
type GetStatus struct {
	Type string `json:"type"`
}

// DecodeClientMessage parses a client→coordinator frame, returning either a
// FrameRequest or a GetStatus.
func DecodeClientMessage(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}

	switch env.Type {
	case TypeRequestFrame:
		var m FrameRequest
		return m, unmarshalInto(data, &m)
	case TypeGetStatus:
		var m GetStatus
		return m, unmarshalInto(data, &m)
	default:
		return nil, fmt.Errorf("unknown client message type %q", env.Type)
	}
}

// ---- Coordinator → Client ----

// FrameResponse carries the base64-encoded, fully assembled frame.
type FrameResponse struct {
	Type     string `json:"type"`
	FrameID  uint64 `json:"frame_id"`
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	RenderMS uint64 `json:"render_ms"`
	Data     string `json:"data"`
}

// NewFrameResponse builds a FrameResponse message.
func NewFrameResponse(frameID uint64, width, height uint32, renderMS uint64, data string) FrameResponse {
	return FrameResponse{Type: TypeFrame, FrameID: frameID, Width: width, Height: height, RenderMS: renderMS, Data: data}
}

// WorkerStatus describes one registered worker in a Status response.
type WorkerStatus struct {
	WorkerID   string  `json:"worker_id"`
	Capability float64 `json:"capability"`
	LastSeenMS uint64  `json:"last_seen_ms"`
}

// Status reports the worker pool and total rendered frame count.
type Status struct {
	Type           string         `json:"type"`
	Workers        []WorkerStatus `json:"workers"`
	FramesRendered uint64         `json:"frames_rendered"`
}

// NewStatus builds a Status message.
func NewStatus(workers []WorkerStatus, framesRendered uint64) Status {
	if workers == nil {
		workers = []WorkerStatus{}
	}
	return Status{Type: TypeStatus, Workers: workers, FramesRendered: framesRendered}
}

// Error reports a failure back to a client; the connection stays open.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds an Error message.
func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

func unmarshalInto(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
