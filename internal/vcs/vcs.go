// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
)

// HeadRevision names the checked-out commit.
const HeadRevision = "HEAD"

var (
	// ErrNoRepository is returned when the directory is not inside a git repository.
	ErrNoRepository = errors.New("not a git repository")
	// ErrNoTags is returned when no tag is reachable from HEAD.
	ErrNoTags = errors.New("no tag reachable from HEAD")
	// ErrRevisionNotFound is returned when a tag or revision cannot be resolved.
	ErrRevisionNotFound = errors.New("revision not found")
)

type (
	// Backend is the version control query surface.
	Backend interface {
		// NearestTag returns the name of the most recent tag reachable from HEAD.
		NearestTag(ctx context.Context) (string, error)
		// CommitsBetween counts commits reachable from to but not from from.
		CommitsBetween(ctx context.Context, from, to string) (int, error)
	}

	// RevisionError records which revision failed to resolve.
	RevisionError struct {
		Revision string
		Err      error
	}
)

// Error implements the error interface.
func (e *RevisionError) Error() string {
	return fmt.Sprintf("resolve revision %q: %v", e.Revision, e.Err)
}

// Unwrap returns ErrRevisionNotFound for errors.Is checks.
func (e *RevisionError) Unwrap() error { return ErrRevisionNotFound }
