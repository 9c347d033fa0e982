// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/includeos/lbrecipe/internal/arch"
	"github.com/includeos/lbrecipe/pkg/recipe"
)

// Definition keys passed to CMake.
const (
	KeyArch       = "ARCH"
	KeyLiveUpdate = "LIVEUPDATE"
	KeyTLS        = "TLS"
)

// ErrConfiguration is returned when settings cannot be turned into a build configuration.
var ErrConfiguration = errors.New("invalid build configuration")

type (
	// BuildConfig is the derived configuration for one build.
	BuildConfig struct {
		Arch       arch.Target
		LiveUpdate bool
		TLS        bool
	}

	// Definitions maps CMake cache variables to their values.
	Definitions map[string]string

	// ConfigurationError wraps the reason a configuration could not be derived.
	ConfigurationError struct {
		Err error
	}
)

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configure: %v", e.Err)
}

// Unwrap exposes both ErrConfiguration and the underlying cause.
func (e *ConfigurationError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }

// Derive builds the configuration for settings and options.
func Derive(settings recipe.Settings, opts recipe.FeatureOptions) (BuildConfig, error) {
	target, err := arch.Lookup(string(settings.Arch))
	if err != nil {
		return BuildConfig{}, &ConfigurationError{Err: err}
	}
	return BuildConfig{Arch: target, LiveUpdate: opts.LiveUpdate, TLS: opts.TLS}, nil
}

// Definitions returns ARCH, LIVEUPDATE and TLS. All three keys are always present.
func (c BuildConfig) Definitions() Definitions {
	return Definitions{
		KeyArch:       c.Arch.String(),
		KeyLiveUpdate: onOff(c.LiveUpdate),
		KeyTLS:        onOff(c.TLS),
	}
}

// Keys returns the definition names in sorted order.
func (d Definitions) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Args renders the definitions as -DKEY=VALUE flags in key order.
func (d Definitions) Args() []string {
	args := make([]string, 0, len(d))
	for _, k := range d.Keys() {
		args = append(args, "-D"+k+"="+d[k])
	}
	return args
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
