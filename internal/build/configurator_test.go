// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/includeos/lbrecipe/internal/arch"
	"github.com/includeos/lbrecipe/pkg/recipe"
)

type fakeBackend struct {
	calls       []string
	sourceDirs  []string
	definitions []Definitions
	failOn      string
}

func (f *fakeBackend) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New(call + " exploded")
	}
	return nil
}

func (f *fakeBackend) Configure(_ context.Context, sourceDir string, defs Definitions) error {
	f.sourceDirs = append(f.sourceDirs, sourceDir)
	f.definitions = append(f.definitions, defs)
	return f.record("configure")
}

func (f *fakeBackend) Build(context.Context) error   { return f.record("build") }
func (f *fakeBackend) Install(context.Context) error { return f.record("install") }

func settingsFor(a recipe.Arch) recipe.Settings {
	return recipe.Settings{OS: "Linux", Arch: a, BuildType: recipe.BuildTypeRelease, Compiler: "clang"}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arch recipe.Arch
		opts recipe.FeatureOptions
		want Definitions
	}{
		{"x86", recipe.FeatureOptions{LiveUpdate: true, TLS: true}, Definitions{"ARCH": "i686", "LIVEUPDATE": "ON", "TLS": "ON"}},
		{"x86_64", recipe.FeatureOptions{}, Definitions{"ARCH": "x86_64", "LIVEUPDATE": "OFF", "TLS": "OFF"}},
		{"armv8", recipe.FeatureOptions{TLS: true}, Definitions{"ARCH": "aarch64", "LIVEUPDATE": "OFF", "TLS": "ON"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.arch), func(t *testing.T) {
			t.Parallel()

			cfg, err := Derive(settingsFor(tt.arch), tt.opts)
			if err != nil {
				t.Fatalf("Derive() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, cfg.Definitions()); diff != "" {
				t.Errorf("Definitions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDerive_IsDeterministic(t *testing.T) {
	t.Parallel()

	s, o := settingsFor("x86_64"), recipe.DefaultFeatureOptions()
	first, _ := Derive(s, o)
	second, _ := Derive(s, o)
	if diff := cmp.Diff(first.Definitions().Args(), second.Definitions().Args()); diff != "" {
		t.Errorf("consecutive derivations differ:\n%s", diff)
	}
}

func TestConfigure_UnknownArchitectureNeverReachesBackend(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	c := NewConfigurator(backend, "/src")
	ctx := context.Background()

	for name, step := range map[string]func() (BuildConfig, error){
		"configure": func() (BuildConfig, error) { return c.Configure(ctx, settingsFor("riscv64"), recipe.DefaultFeatureOptions()) },
		"build":     func() (BuildConfig, error) { return c.Build(ctx, settingsFor("riscv64"), recipe.DefaultFeatureOptions()) },
		"install":   func() (BuildConfig, error) { return c.Install(ctx, settingsFor("riscv64"), recipe.DefaultFeatureOptions()) },
	} {
		_, err := step()
		if !errors.Is(err, arch.ErrUnknownArchitecture) {
			t.Errorf("%s: error = %v, want ErrUnknownArchitecture", name, err)
		}
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: error = %v, want ErrConfiguration", name, err)
		}
	}

	if len(backend.calls) != 0 {
		t.Errorf("backend was called: %v", backend.calls)
	}
}

func TestConfigurator_BuildAndInstallReconfigure(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	c := NewConfigurator(backend, "/src")
	ctx := context.Background()
	s, o := settingsFor("x86"), recipe.DefaultFeatureOptions()

	if _, err := c.Configure(ctx, s, o); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if _, err := c.Build(ctx, s, o); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := c.Install(ctx, s, o); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	want := []string{"configure", "configure", "build", "configure", "install"}
	if diff := cmp.Diff(want, backend.calls); diff != "" {
		t.Errorf("backend calls mismatch (-want +got):\n%s", diff)
	}
	for i, defs := range backend.definitions {
		if diff := cmp.Diff(backend.definitions[0], defs); diff != "" {
			t.Errorf("configure #%d saw different definitions:\n%s", i, diff)
		}
	}
	for _, dir := range backend.sourceDirs {
		if dir != "/src" {
			t.Errorf("source dir = %q, want /src", dir)
		}
	}
}

func TestConfigurator_StageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		failOn    string
		run       func(*Configurator) error
		wantStage Stage
		wantCalls []string
	}{
		{
			failOn: "configure",
			run: func(c *Configurator) error {
				_, err := c.Build(context.Background(), settingsFor("x86_64"), recipe.FeatureOptions{})
				return err
			},
			wantStage: StageConfigure,
			wantCalls: []string{"configure"},
		},
		{
			failOn: "build",
			run: func(c *Configurator) error {
				_, err := c.Build(context.Background(), settingsFor("x86_64"), recipe.FeatureOptions{})
				return err
			},
			wantStage: StageBuild,
			wantCalls: []string{"configure", "build"},
		},
		{
			failOn: "install",
			run: func(c *Configurator) error {
				_, err := c.Install(context.Background(), settingsFor("x86_64"), recipe.FeatureOptions{})
				return err
			},
			wantStage: StageInstall,
			wantCalls: []string{"configure", "install"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			t.Parallel()

			backend := &fakeBackend{failOn: tt.failOn}
			err := tt.run(NewConfigurator(backend, "."))

			var se *StageError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want StageError", err)
			}
			if se.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", se.Stage, tt.wantStage)
			}
			if diff := cmp.Diff(tt.wantCalls, backend.calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefinitions_Args(t *testing.T) {
	t.Parallel()

	got := Definitions{"TLS": "ON", "ARCH": "i686", "LIVEUPDATE": "OFF"}.Args()
	want := []string{"-DARCH=i686", "-DLIVEUPDATE=OFF", "-DTLS=ON"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}
