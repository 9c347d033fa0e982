// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultCMakeBinary is the CMake executable looked up on PATH.
const DefaultCMakeBinary = "cmake"

// ErrCMakeNotFound is returned when the CMake binary cannot be located.
var ErrCMakeNotFound = errors.New("cmake not found")

type (
	// ExecCommandFunc creates the command for a CMake invocation. Tests replace it.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// CMakeOption configures a CMakeBackend.
	CMakeOption func(*CMakeBackend)

	// CMakeBackend runs CMake as a subprocess against a single build directory.
	CMakeBackend struct {
		binary        string
		buildDir      string
		generator     string
		buildType     string
		installPrefix string
		stdout        io.Writer
		stderr        io.Writer
		execCommand   ExecCommandFunc
		lookPath      func(string) (string, error)
	}

	// CMakeNotFoundError names the binary that could not be found.
	CMakeNotFoundError struct {
		Binary string
		Err    error
	}
)

var _ Backend = (*CMakeBackend)(nil)

// Error implements the error interface.
func (e *CMakeNotFoundError) Error() string {
	return fmt.Sprintf("cmake binary %q not found: %v", e.Binary, e.Err)
}

// Unwrap returns ErrCMakeNotFound for errors.Is checks.
func (e *CMakeNotFoundError) Unwrap() error { return ErrCMakeNotFound }

// WithBinary overrides the CMake executable.
func WithBinary(path string) CMakeOption {
	return func(b *CMakeBackend) {
		if path != "" {
			b.binary = path
		}
	}
}

// WithGenerator selects a CMake generator such as "Ninja".
func WithGenerator(generator string) CMakeOption {
	return func(b *CMakeBackend) {
		b.generator = generator
	}
}

// WithBuildType sets CMAKE_BUILD_TYPE and the multi-config --config value.
func WithBuildType(buildType string) CMakeOption {
	return func(b *CMakeBackend) {
		b.buildType = buildType
	}
}

// WithInstallPrefix sets CMAKE_INSTALL_PREFIX and the --prefix used by install.
func WithInstallPrefix(prefix string) CMakeOption {
	return func(b *CMakeBackend) {
		b.installPrefix = prefix
	}
}

// WithOutput redirects CMake's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) CMakeOption {
	return func(b *CMakeBackend) {
		b.stdout = stdout
		b.stderr = stderr
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) CMakeOption {
	return func(b *CMakeBackend) {
		b.execCommand = fn
	}
}

// WithLookPath sets a custom PATH lookup for testing.
func WithLookPath(fn func(string) (string, error)) CMakeOption {
	return func(b *CMakeBackend) {
		b.lookPath = fn
	}
}

// NewCMakeBackend creates a backend that builds in buildDir.
func NewCMakeBackend(buildDir string, opts ...CMakeOption) *CMakeBackend {
	b := &CMakeBackend{
		binary:      DefaultCMakeBinary,
		buildDir:    buildDir,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildDir returns the CMake binary directory.
func (b *CMakeBackend) BuildDir() string { return b.buildDir }

// InstallPrefix returns the configured install prefix, or "" for CMake's default.
func (b *CMakeBackend) InstallPrefix() string { return b.installPrefix }

// Check verifies the CMake binary can be found.
func (b *CMakeBackend) Check() error {
	if _, err := b.lookPath(b.binary); err != nil {
		return &CMakeNotFoundError{Binary: b.binary, Err: err}
	}
	return nil
}

// ConfigureArgs returns the arguments Configure passes to CMake.
func (b *CMakeBackend) ConfigureArgs(sourceDir string, defs Definitions) []string {
	args := []string{"-S", sourceDir, "-B", b.buildDir}
	if b.generator != "" {
		args = append(args, "-G", b.generator)
	}
	if b.buildType != "" {
		args = append(args, "-DCMAKE_BUILD_TYPE="+b.buildType)
	}
	if b.installPrefix != "" {
		args = append(args, "-DCMAKE_INSTALL_PREFIX="+b.installPrefix)
	}
	return append(args, defs.Args()...)
}

// Configure runs cmake -S sourceDir -B buildDir with the definitions.
func (b *CMakeBackend) Configure(ctx context.Context, sourceDir string, defs Definitions) error {
	return b.run(ctx, b.ConfigureArgs(sourceDir, defs)...)
}

// Build runs cmake --build.
func (b *CMakeBackend) Build(ctx context.Context) error {
	args := []string{"--build", b.buildDir}
	if b.buildType != "" {
		args = append(args, "--config", b.buildType)
	}
	return b.run(ctx, args...)
}

// Install runs cmake --install.
func (b *CMakeBackend) Install(ctx context.Context) error {
	args := []string{"--install", b.buildDir}
	if b.buildType != "" {
		args = append(args, "--config", b.buildType)
	}
	if b.installPrefix != "" {
		args = append(args, "--prefix", b.installPrefix)
	}
	return b.run(ctx, args...)
}

func (b *CMakeBackend) run(ctx context.Context, args ...string) error {
	slog.Debug("running cmake", "binary", b.binary, "args", strings.Join(args, " "))
	cmd := b.execCommand(ctx, b.binary, args...)
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return &CMakeNotFoundError{Binary: b.binary, Err: err}
		}
		return fmt.Errorf("command %s %v failed: %w", b.binary, args, err)
	}
	return nil
}
