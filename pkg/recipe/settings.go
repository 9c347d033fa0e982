// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// SettingOS is the settings key for the target operating system.
	SettingOS = "os"
	// SettingArch is the settings key for the target architecture.
	SettingArch = "arch"
	// SettingBuildType is the settings key for the build type.
	SettingBuildType = "build_type"
	// SettingCompiler is the settings key for the compiler.
	SettingCompiler = "compiler"

	// OptionLiveUpdate is the option key toggling live-update support.
	OptionLiveUpdate = "liveupdate"
	// OptionTLS is the option key toggling TLS support.
	OptionTLS = "tls"

	// BuildTypeDebug builds without optimizations.
	BuildTypeDebug BuildType = "Debug"
	// BuildTypeRelease builds with optimizations.
	BuildTypeRelease BuildType = "Release"
	// BuildTypeRelWithDebInfo builds with optimizations and debug info.
	BuildTypeRelWithDebInfo BuildType = "RelWithDebInfo"
	// BuildTypeMinSizeRel builds optimized for size.
	BuildTypeMinSizeRel BuildType = "MinSizeRel"
)

var (
	// ErrInvalidSetting is the sentinel error wrapped by InvalidSettingError.
	ErrInvalidSetting = errors.New("invalid setting")
	// ErrUnknownSettingKey is the sentinel error wrapped by UnknownKeyError for settings.
	ErrUnknownSettingKey = errors.New("unknown setting key")
	// ErrInvalidOption is the sentinel error wrapped by InvalidOptionError.
	ErrInvalidOption = errors.New("invalid option")
	// ErrUnknownOptionKey is the sentinel error wrapped by UnknownKeyError for options.
	ErrUnknownOptionKey = errors.New("unknown option key")
	// ErrMalformedAssignment is returned for an assignment that is not key=value.
	ErrMalformedAssignment = errors.New("malformed assignment")

	// knownArchs are the architecture names the settings model accepts. Whether a
	// known arch can actually be built is decided later by the architecture mapper.
	knownArchs = []Arch{
		"x86", "x86_64", "armv6", "armv7", "armv7hf", "armv8", "armv8_32",
		"ppc32", "ppc64", "ppc64le", "mips", "mips64", "s390x", "riscv32", "riscv64", "wasm",
	}

	knownOS = []OS{"Linux", "Windows", "Macos", "FreeBSD", "SunOS", "Android", "iOS", "Neutrino", "Arduino"}
)

type (
	// OS is the target operating system setting (e.g. "Linux").
	OS string

	// Arch is the platform architecture setting (e.g. "x86_64", "armv8").
	Arch string

	// BuildType is the CMake build type setting.
	BuildType string

	// Compiler is the compiler setting (e.g. "gcc", "clang").
	Compiler string

	// Settings describe the platform a package is built for.
	Settings struct {
		OS        OS        `json:"os" mapstructure:"os" toml:"os"`
		Arch      Arch      `json:"arch" mapstructure:"arch" toml:"arch"`
		BuildType BuildType `json:"build_type" mapstructure:"build_type" toml:"build_type"`
		Compiler  Compiler  `json:"compiler" mapstructure:"compiler" toml:"compiler"`
	}

	// FeatureOptions toggle optional features of the library.
	FeatureOptions struct {
		LiveUpdate bool `json:"liveupdate" toml:"liveupdate"`
		TLS        bool `json:"tls" toml:"tls"`
	}

	// InvalidSettingError is returned when a setting value is empty or not recognized.
	InvalidSettingError struct {
		Key   string
		Value string
	}

	// InvalidOptionError is returned when an option value is not a boolean.
	InvalidOptionError struct {
		Key   string
		Value string
	}

	// UnknownKeyError is returned for an assignment to a key the model does not declare.
	UnknownKeyError struct {
		Key      string
		Valid    []string
		sentinel error
	}

	// MalformedAssignmentError is returned when an assignment lacks the '=' separator.
	MalformedAssignmentError struct {
		Input string
	}
)

// DefaultFeatureOptions returns both features enabled.
func DefaultFeatureOptions() FeatureOptions {
	return FeatureOptions{LiveUpdate: true, TLS: true}
}

// FormatBool renders option values the way package references and manifests spell them.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// SettingKeys lists the declared settings keys in declaration order.
func SettingKeys() []string {
	return []string{SettingOS, SettingArch, SettingBuildType, SettingCompiler}
}

// OptionKeys lists the declared option keys in declaration order.
func OptionKeys() []string {
	return []string{OptionLiveUpdate, OptionTLS}
}

// Error implements the error interface.
func (e *InvalidSettingError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid setting %s: value must not be empty", e.Key)
	}
	return fmt.Sprintf("invalid setting %s=%q", e.Key, e.Value)
}

// Unwrap returns ErrInvalidSetting for errors.Is() compatibility.
func (e *InvalidSettingError) Unwrap() error { return ErrInvalidSetting }

// Error implements the error interface.
func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %s=%q (expected True or False)", e.Key, e.Value)
}

// Unwrap returns ErrInvalidOption for errors.Is() compatibility.
func (e *InvalidOptionError) Unwrap() error { return ErrInvalidOption }

// Error implements the error interface.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %q (valid: %s)", e.Key, strings.Join(e.Valid, ", "))
}

// Unwrap returns the settings or options sentinel, depending on where the key was used.
func (e *UnknownKeyError) Unwrap() error { return e.sentinel }

// Error implements the error interface.
func (e *MalformedAssignmentError) Error() string {
	return fmt.Sprintf("malformed assignment %q (expected key=value)", e.Input)
}

// Unwrap returns ErrMalformedAssignment for errors.Is() compatibility.
func (e *MalformedAssignmentError) Unwrap() error { return ErrMalformedAssignment }

// String returns the string representation of the Arch.
func (a Arch) String() string { return string(a) }

// Validate returns an error unless a is one of the known architecture names.
func (a Arch) Validate() error {
	if !slices.Contains(knownArchs, a) {
		return &InvalidSettingError{Key: SettingArch, Value: string(a)}
	}
	return nil
}

// String returns the string representation of the OS.
func (o OS) String() string { return string(o) }

// Validate returns an error unless o is one of the known operating systems.
func (o OS) Validate() error {
	if !slices.Contains(knownOS, o) {
		return &InvalidSettingError{Key: SettingOS, Value: string(o)}
	}
	return nil
}

// String returns the string representation of the BuildType.
func (b BuildType) String() string { return string(b) }

// Validate returns an error unless b is one of the CMake build types.
func (b BuildType) Validate() error {
	switch b {
	case BuildTypeDebug, BuildTypeRelease, BuildTypeRelWithDebInfo, BuildTypeMinSizeRel:
		return nil
	default:
		return &InvalidSettingError{Key: SettingBuildType, Value: string(b)}
	}
}

// String returns the string representation of the Compiler.
func (c Compiler) String() string { return string(c) }

// Validate returns an error if the compiler is empty or whitespace-only.
func (c Compiler) Validate() error {
	if strings.TrimSpace(string(c)) == "" {
		return &InvalidSettingError{Key: SettingCompiler, Value: string(c)}
	}
	return nil
}

// Validate checks every field and joins the failures.
func (s Settings) Validate() error {
	return errors.Join(s.OS.Validate(), s.Arch.Validate(), s.BuildType.Validate(), s.Compiler.Validate())
}

// Get returns the value of a settings key.
func (s Settings) Get(key string) (string, bool) {
	switch key {
	case SettingOS:
		return string(s.OS), true
	case SettingArch:
		return string(s.Arch), true
	case SettingBuildType:
		return string(s.BuildType), true
	case SettingCompiler:
		return string(s.Compiler), true
	default:
		return "", false
	}
}

// Get returns the value of an option key.
func (o FeatureOptions) Get(key string) (bool, bool) {
	switch key {
	case OptionLiveUpdate:
		return o.LiveUpdate, true
	case OptionTLS:
		return o.TLS, true
	default:
		return false, false
	}
}

// ParseSettings applies key=value assignments on top of base and validates the result.
func ParseSettings(base Settings, assignments []string) (Settings, error) {
	s := base
	for _, a := range assignments {
		key, value, err := splitAssignment(a)
		if err != nil {
			return Settings{}, err
		}
		switch key {
		case SettingOS:
			s.OS = OS(value)
		case SettingArch:
			s.Arch = Arch(value)
		case SettingBuildType:
			s.BuildType = BuildType(value)
		case SettingCompiler:
			s.Compiler = Compiler(value)
		default:
			return Settings{}, &UnknownKeyError{Key: key, Valid: SettingKeys(), sentinel: ErrUnknownSettingKey}
		}
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ParseOptions applies key=value assignments on top of base. Values are parsed
// with strconv.ParseBool, so both "True" and "true" are accepted.
func ParseOptions(base FeatureOptions, assignments []string) (FeatureOptions, error) {
	o := base
	for _, a := range assignments {
		key, value, err := splitAssignment(a)
		if err != nil {
			return FeatureOptions{}, err
		}
		b, perr := strconv.ParseBool(value)
		switch key {
		case OptionLiveUpdate, OptionTLS:
			if perr != nil {
				return FeatureOptions{}, &InvalidOptionError{Key: key, Value: value}
			}
		default:
			return FeatureOptions{}, &UnknownKeyError{Key: key, Valid: OptionKeys(), sentinel: ErrUnknownOptionKey}
		}
		if key == OptionLiveUpdate {
			o.LiveUpdate = b
		} else {
			o.TLS = b
		}
	}
	return o, nil
}

func splitAssignment(a string) (key, value string, err error) {
	key, value, ok := strings.Cut(a, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", &MalformedAssignmentError{Input: a}
	}
	return key, strings.TrimSpace(value), nil
}
