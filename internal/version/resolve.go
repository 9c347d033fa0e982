// SPDX-License-Identifier: MPL-2.0

package version

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/includeos/lbrecipe/internal/vcs"
)

// Fallback is the version reported when none can be derived.
const Fallback = "0.0.0"

const (
	// ReasonNone means the version was resolved.
	ReasonNone FailureReason = iota
	// ReasonNoRepository means the source directory is not a checkout.
	ReasonNoRepository
	// ReasonNoTags means no tag is reachable from HEAD.
	ReasonNoTags
	// ReasonMalformedTag means the nearest tag is not a dotted numeric version.
	ReasonMalformedTag
	// ReasonBackendFailure covers any other error from the VCS backend.
	ReasonBackendFailure
)

// ErrMalformedTag is returned when a tag is not a dotted numeric version.
var ErrMalformedTag = errors.New("malformed version tag")

var dottedNumeric = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

type (
	// FailureReason classifies why resolution fell back.
	FailureReason int

	// Resolution is the outcome of version resolution: either Version is set and
	// Reason is ReasonNone, or Reason names the failure and Err holds the cause.
	Resolution struct {
		Tag      string
		Distance int
		Version  string
		Reason   FailureReason
		Err      error
	}

	// MalformedTagError names the tag that could not be interpreted.
	MalformedTagError struct {
		Tag string
	}
)

// Error implements the error interface.
func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("tag %q is not a dotted numeric version", e.Tag)
}

// Unwrap returns ErrMalformedTag for errors.Is checks.
func (e *MalformedTagError) Unwrap() error { return ErrMalformedTag }

// String returns a short identifier for the reason.
func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoRepository:
		return "no-repository"
	case ReasonNoTags:
		return "no-tags"
	case ReasonMalformedTag:
		return "malformed-tag"
	case ReasonBackendFailure:
		return "backend-failure"
	default:
		return "unknown"
	}
}

// OK reports whether a version was derived.
func (r Resolution) OK() bool { return r.Reason == ReasonNone }

// VersionOrFallback returns the derived version, or Fallback when resolution failed.
func (r Resolution) VersionOrFallback() string {
	if !r.OK() {
		return Fallback
	}
	return r.Version
}

// Resolve derives the version from the nearest tag and the commit distance to HEAD.
//
// At distance 0 the tag is returned without its "v" prefix. Past the tag, the last
// component is incremented and the distance appended: tag 1.2.3 four commits back
// yields "1.2.4-4".
func Resolve(ctx context.Context, backend vcs.Backend) Resolution {
	tag, err := backend.NearestTag(ctx)
	if err != nil {
		return failed(classify(err), err)
	}

	distance, err := backend.CommitsBetween(ctx, tag, vcs.HeadRevision)
	if err != nil {
		res := failed(classify(err), err)
		res.Tag = tag
		return res
	}

	v, err := Derive(tag, distance)
	if err != nil {
		res := failed(ReasonMalformedTag, err)
		res.Tag, res.Distance = tag, distance
		return res
	}

	return Resolution{Tag: tag, Distance: distance, Version: v}
}

// ResolveDir opens the checkout containing dir and resolves its version.
func ResolveDir(ctx context.Context, dir string) Resolution {
	backend, err := vcs.OpenGit(dir)
	if err != nil {
		return failed(classify(err), err)
	}
	return Resolve(ctx, backend)
}

// Derive applies the version rule to a tag and its distance from HEAD.
func Derive(tag string, distance int) (string, error) {
	stripped := strings.TrimPrefix(tag, "v")
	if !dottedNumeric.MatchString(stripped) || distance < 0 {
		return "", &MalformedTagError{Tag: tag}
	}
	if distance == 0 {
		return stripped, nil
	}

	parts := strings.Split(stripped, ".")
	last, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || last == math.MaxInt {
		return "", &MalformedTagError{Tag: tag}
	}
	parts[len(parts)-1] = strconv.Itoa(last + 1)
	return strings.Join(parts, ".") + "-" + strconv.Itoa(distance), nil
}

func failed(reason FailureReason, err error) Resolution {
	slog.Debug("version resolution fell back", "reason", reason.String(), "error", err)
	return Resolution{Reason: reason, Err: err}
}

func classify(err error) FailureReason {
	switch {
	case errors.Is(err, vcs.ErrNoRepository):
		return ReasonNoRepository
	case errors.Is(err, vcs.ErrNoTags):
		return ReasonNoTags
	default:
		return ReasonBackendFailure
	}
}
