// SPDX-License-Identifier: MPL-2.0

// Package deps turns feature options into the ordered list of upstream packages
// the build requires.
package deps

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/includeos/lbrecipe/pkg/recipe"
)

var (
	// ErrInvalidRange is returned when a declared version range is not a lower bound.
	ErrInvalidRange = errors.New("invalid version range")
	// ErrInvalidReference is returned when a reference string cannot be parsed.
	ErrInvalidReference = errors.New("invalid package reference")
)

var (
	lowerBound = regexp.MustCompile(`^>=v?([0-9]+(?:\.[0-9]+)*)$`)
	reference  = regexp.MustCompile(`^([^/@\[\]]+)/\[>=([0-9]+(?:\.[0-9]+)*)(,include_prerelease=True)?\]@(.+)$`)
)

type (
	// VersionRange is a lower bound with an optional pre-release allowance.
	VersionRange struct {
		Min               string
		IncludePrerelease bool
	}

	// Requirement is one upstream package reference.
	Requirement struct {
		Name  string
		Range VersionRange
		Scope recipe.Scope
	}

	// InvalidRangeError names the dependency with an unusable range.
	InvalidRangeError struct {
		Name  string
		Range string
	}
)

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("dependency %q: range %q must be a lower bound such as >=1.0.0", e.Name, e.Range)
}

// Unwrap returns ErrInvalidRange for errors.Is checks.
func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// ParseRange parses a ">=X.Y.Z" declaration.
func ParseRange(s string, includePrerelease bool) (VersionRange, error) {
	m := lowerBound.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return VersionRange{}, &InvalidRangeError{Range: s}
	}
	return VersionRange{Min: m[1], IncludePrerelease: includePrerelease}, nil
}

// String renders the range in reference syntax: [>=0.14.0,include_prerelease=True].
func (r VersionRange) String() string {
	var b strings.Builder
	b.WriteString("[>=")
	b.WriteString(r.Min)
	if r.IncludePrerelease {
		b.WriteString(",include_prerelease=")
		b.WriteString(recipe.FormatBool(true))
	}
	b.WriteString("]")
	return b.String()
}

// Reference renders name/range@user/channel.
func (r Requirement) Reference() string {
	return r.Name + "/" + r.Range.String() + "@" + r.Scope.String()
}

// String implements fmt.Stringer.
func (r Requirement) String() string { return r.Reference() }

// ParseReference reads a name/[>=X.Y.Z]@user/channel reference back into a Requirement.
func ParseReference(ref string) (Requirement, error) {
	m := reference.FindStringSubmatch(ref)
	if m == nil {
		return Requirement{}, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	scope, err := recipe.ParseScope(m[4])
	if err != nil {
		return Requirement{}, fmt.Errorf("%w: %q: %w", ErrInvalidReference, ref, err)
	}
	return Requirement{
		Name:  m[1],
		Range: VersionRange{Min: m[2], IncludePrerelease: m[3] != ""},
		Scope: scope,
	}, nil
}

// ParseReferences parses each reference in order.
func ParseReferences(refs []string) ([]Requirement, error) {
	out := make([]Requirement, 0, len(refs))
	for _, ref := range refs {
		r, err := ParseReference(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Resolve returns the runtime requirement, then live-update when enabled, then TLS
// when enabled. Dependencies without a pinned scope resolve from scope. A name that
// appears twice keeps its first position.
func Resolve(declared recipe.Requires, opts recipe.FeatureOptions, scope recipe.Scope) ([]Requirement, error) {
	selected := []recipe.Dependency{declared.Runtime}
	if opts.LiveUpdate {
		selected = append(selected, declared.LiveUpdate)
	}
	if opts.TLS {
		selected = append(selected, declared.TLS)
	}

	seen := make(map[string]bool, len(selected))
	out := make([]Requirement, 0, len(selected))
	for _, d := range selected {
		if seen[d.Name] {
			slog.Debug("dropping duplicate requirement", "name", d.Name)
			continue
		}
		seen[d.Name] = true

		req, err := requirement(d, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func requirement(d recipe.Dependency, scope recipe.Scope) (Requirement, error) {
	rng, err := ParseRange(d.Range, d.IncludePrerelease)
	if err != nil {
		return Requirement{}, &InvalidRangeError{Name: d.Name, Range: d.Range}
	}

	s := scope
	if d.Scope != nil {
		s = *d.Scope
	}
	if err := s.Validate(); err != nil {
		return Requirement{}, fmt.Errorf("dependency %q: %w", d.Name, err)
	}

	return Requirement{Name: d.Name, Range: rng, Scope: s}, nil
}

// References renders each requirement.
func References(reqs []Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Reference()
	}
	return out
}
