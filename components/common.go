// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package components provides the coordinator and worker application
// components, and definitions shared by them.
package components

import "strings"

// ComponentRole identifies which side of a connection a component plays, for
// use in log prefixes.
type ComponentRole int

const (
	RoleUndefined   ComponentRole = iota // undefined role
	RoleCoordinator                      // coordinator role
	RoleWorker                           // worker role
)

// String returns a human-readable format of a ComponentRole.
func (r ComponentRole) String() string {
	switch r {
	case RoleCoordinator:
		return "coordinator"
	case RoleWorker:
		return "worker"
	default:
		return "undefined"
	}
}

// UuidShort returns the first segment of a string in UUID v4 format, i.e. up
// to its first hyphen; otherwise the complete string is returned unchanged.
func UuidShort(uuid string) string {
	i := strings.Index(uuid, "-")
	if i != -1 {
		return uuid[:i]
	}
	return uuid
}
