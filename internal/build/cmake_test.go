// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func testDefs() Definitions {
	return BuildConfig{Arch: "x86_64", LiveUpdate: true, TLS: false}.Definitions()
}

func TestCMakeBackend_Configure(t *testing.T) {
	t.Parallel()

	rec := &mockCommandRecorder{}
	b := NewCMakeBackend("/tmp/build",
		WithExecCommand(rec.commandFunc(t)),
		WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)

	if err := b.Configure(context.Background(), "/src", testDefs()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	rec.assertInvocationCount(t, 1)
	if rec.Invocations[0].Name != DefaultCMakeBinary {
		t.Errorf("binary = %q, want cmake", rec.Invocations[0].Name)
	}
	rec.assertArgs(t, 0, []string{"-S", "/src", "-B", "/tmp/build", "-DARCH=x86_64", "-DLIVEUPDATE=ON", "-DTLS=OFF"})
}

func TestCMakeBackend_AllOptions(t *testing.T) {
	t.Parallel()

	rec := &mockCommandRecorder{}
	b := NewCMakeBackend("out",
		WithBinary("/opt/cmake/bin/cmake"),
		WithGenerator("Ninja"),
		WithBuildType("Release"),
		WithInstallPrefix("/tmp/pkg"),
		WithExecCommand(rec.commandFunc(t)),
		WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	ctx := context.Background()

	if err := b.Configure(ctx, ".", testDefs()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := b.Build(ctx); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := b.Install(ctx); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	rec.assertInvocationCount(t, 3)
	if rec.Invocations[0].Name != "/opt/cmake/bin/cmake" {
		t.Errorf("binary = %q", rec.Invocations[0].Name)
	}
	rec.assertArgs(t, 0, []string{
		"-S", ".", "-B", "out", "-G", "Ninja",
		"-DCMAKE_BUILD_TYPE=Release", "-DCMAKE_INSTALL_PREFIX=/tmp/pkg",
		"-DARCH=x86_64", "-DLIVEUPDATE=ON", "-DTLS=OFF",
	})
	rec.assertArgs(t, 1, []string{"--build", "out", "--config", "Release"})
	rec.assertArgs(t, 2, []string{"--install", "out", "--config", "Release", "--prefix", "/tmp/pkg"})
}

func TestCMakeBackend_CommandFailure(t *testing.T) {
	t.Parallel()

	rec := &mockCommandRecorder{FailOnCommand: "--build"}
	b := NewCMakeBackend("out", WithExecCommand(rec.commandFunc(t)), WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))

	if err := b.Configure(context.Background(), ".", testDefs()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := b.Build(context.Background()); err == nil {
		t.Fatal("Build() should fail when cmake exits non-zero")
	}
}

func TestCMakeBackend_CapturesOutput(t *testing.T) {
	t.Parallel()

	rec := &mockCommandRecorder{Stdout: "-- Configuring done"}
	var stdout bytes.Buffer
	b := NewCMakeBackend("out", WithExecCommand(rec.commandFunc(t)), WithOutput(&stdout, &bytes.Buffer{}))

	if err := b.Configure(context.Background(), ".", testDefs()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if stdout.String() != "-- Configuring done" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestCMakeBackend_Check(t *testing.T) {
	t.Parallel()

	missing := NewCMakeBackend("out", WithLookPath(func(string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}))
	err := missing.Check()
	if !errors.Is(err, ErrCMakeNotFound) {
		t.Fatalf("Check() error = %v, want ErrCMakeNotFound", err)
	}

	found := NewCMakeBackend("out", WithLookPath(func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}))
	if err := found.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}
