// SPDX-License-Identifier: MPL-2.0

// Package arch translates platform architecture names into the target names the
// native build expects.
package arch

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownArchitecture is returned when an architecture has no target mapping.
var ErrUnknownArchitecture = errors.New("unknown architecture")

type (
	// Target is a canonical build target, e.g. "i686" or "aarch64".
	Target string

	// Mapping pairs a platform architecture with its target.
	Mapping struct {
		Arch   string
		Target Target
	}

	// UnknownArchitectureError names the architecture that has no mapping.
	UnknownArchitectureError struct {
		Arch string
	}
)

var targets = map[string]Target{
	"x86":    "i686",
	"x86_64": "x86_64",
	"armv8":  "aarch64",
}

// Error implements the error interface.
func (e *UnknownArchitectureError) Error() string {
	return fmt.Sprintf("architecture %q has no build target (supported: %s)",
		e.Arch, strings.Join(Supported(), ", "))
}

// Unwrap returns ErrUnknownArchitecture for errors.Is checks.
func (e *UnknownArchitectureError) Unwrap() error { return ErrUnknownArchitecture }

// String returns the target name.
func (t Target) String() string { return string(t) }

// Map returns the target for arch. The second result is false when there is none.
func Map(arch string) (Target, bool) {
	t, ok := targets[arch]
	return t, ok
}

// Lookup is Map with an UnknownArchitectureError for missing entries.
func Lookup(arch string) (Target, error) {
	t, ok := Map(arch)
	if !ok {
		return "", &UnknownArchitectureError{Arch: arch}
	}
	return t, nil
}

// Supported returns the mapped architecture names in sorted order.
func Supported() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Table returns every mapping sorted by architecture name.
func Table() []Mapping {
	out := make([]Mapping, 0, len(targets))
	for _, name := range Supported() {
		out = append(out, Mapping{Arch: name, Target: targets[name]})
	}
	return out
}
