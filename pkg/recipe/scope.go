// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidScope is the sentinel error wrapped by InvalidScopeError.
var ErrInvalidScope = errors.New("invalid scope")

var scopePartPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]*$`)

type (
	// Scope is the organizational (user, channel) pair a package reference
	// resolves from, written "user/channel".
	Scope struct {
		User    string `json:"user" mapstructure:"user" toml:"user"`
		Channel string `json:"channel" mapstructure:"channel" toml:"channel"`
	}

	// InvalidScopeError is returned when a Scope has an empty or malformed part.
	InvalidScopeError struct {
		Value string
	}
)

// DefaultScope is the scope the IncludeOS packages are published under.
func DefaultScope() Scope {
	return Scope{User: "includeos", Channel: "latest"}
}

// ParseScope parses "user/channel".
func ParseScope(s string) (Scope, error) {
	user, channel, ok := strings.Cut(s, "/")
	if !ok {
		return Scope{}, &InvalidScopeError{Value: s}
	}
	sc := Scope{User: user, Channel: channel}
	if err := sc.Validate(); err != nil {
		return Scope{}, err
	}
	return sc, nil
}

// String renders the scope as "user/channel".
func (s Scope) String() string { return s.User + "/" + s.Channel }

// IsZero reports whether neither part is set.
func (s Scope) IsZero() bool { return s.User == "" && s.Channel == "" }

// Validate returns an error unless both parts are well-formed identifiers.
func (s Scope) Validate() error {
	if !scopePartPattern.MatchString(s.User) || !scopePartPattern.MatchString(s.Channel) {
		return &InvalidScopeError{Value: s.String()}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope %q (expected user/channel)", e.Value)
}

// Unwrap returns ErrInvalidScope for errors.Is() compatibility.
func (e *InvalidScopeError) Unwrap() error { return ErrInvalidScope }
