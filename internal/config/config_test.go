// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/includeos/lbrecipe/internal/issue"
	"github.com/includeos/lbrecipe/internal/testutil"
	"github.com/includeos/lbrecipe/pkg/recipe"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Profile.OS != "Linux" || cfg.Profile.BuildType != recipe.BuildTypeRelease || cfg.Profile.Compiler != "clang" {
		t.Errorf("unexpected default profile %+v", cfg.Profile)
	}
	if cfg.RecipeScope() != recipe.DefaultScope() {
		t.Errorf("default scope = %v, want includeos/latest", cfg.RecipeScope())
	}
	if cfg.CMake.Binary != "cmake" || cfg.CMake.BuildDir != DefaultBuildDir {
		t.Errorf("unexpected cmake defaults %+v", cfg.CMake)
	}
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("unexpected UI defaults %+v", cfg.UI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-only")
	}
	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", "/tmp/xdg-test"))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", AppName) {
		t.Errorf("ConfigDir() = %q", dir)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Cleanup(testutil.MustUnsetenv(t, "LBRECIPE_LOG_LEVEL"))

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		WorkDir:       t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_UserConfigFile(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `
profile: {
	arch:       "armv8"
	build_type: "Debug"
}
scope: channel: "stable"
cmake: generator: "Ninja"
ui: verbose: true
`)

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	if cfg.Profile.Arch != "armv8" || cfg.Profile.BuildType != recipe.BuildTypeDebug {
		t.Errorf("Profile = %+v", cfg.Profile)
	}
	// Unset fields keep their defaults.
	if cfg.Profile.Compiler != "clang" || cfg.Scope.User != "includeos" {
		t.Errorf("defaults lost: profile %+v scope %+v", cfg.Profile, cfg.Scope)
	}
	if cfg.Scope.Channel != "stable" || cfg.CMake.Generator != "Ninja" || !cfg.UI.Verbose {
		t.Errorf("overrides lost: %+v", cfg)
	}
}

func TestLoad_LocalConfigFile(t *testing.T) {
	work := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, LocalConfigFile), `log_level: "debug"`)

	cfg, path, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		WorkDir:       work,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != filepath.Join(work, LocalConfigFile) || cfg.LogLevel != LogLevelDebug {
		t.Errorf("Load() = (%q, %q)", path, cfg.LogLevel)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(testutil.MustSetenv(t, "LBRECIPE_PROFILE_ARCH", "x86"))
	t.Cleanup(testutil.MustSetenv(t, "LBRECIPE_UI_VERBOSE", "true"))

	cfg, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile.Arch != "x86" || !cfg.UI.Verbose {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax error", `profile: {`, "load configuration"},
		{"unknown field", `container_engine: "docker"`, "load configuration"},
		{"bad log level", `log_level: "trace"`, "load configuration"},
		{"bad scope", `scope: user: "has space"`, "load configuration"},
		{"unknown arch", `profile: arch: "sparc"`, "validate configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "custom.cue")
			testutil.MustWriteFile(t, path, tt.content)

			_, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() should fail")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be ActionableError, got %T", err)
			}
			if ae.IssueID != issue.ConfigLoadFailedId {
				t.Errorf("IssueID = %d", ae.IssueID)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CMake.Generator = "Ninja"
	cfg.CMake.InstallPrefix = "/opt/microlb"
	cfg.UI.ColorScheme = ColorSchemeDark

	path := filepath.Join(t.TempDir(), "generated.cue")
	testutil.MustWriteFile(t, path, GenerateCUE(cfg))

	got, _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load(generated) error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, created, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = (%q, %v)", path, created)
	}

	_, created, err = CreateDefaultConfig()
	if err != nil || created {
		t.Errorf("second CreateDefaultConfig() = (created %v, err %v), want existing file kept", created, err)
	}
}
