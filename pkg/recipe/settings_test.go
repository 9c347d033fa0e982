// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"errors"
	"testing"
)

func validSettings() Settings {
	return Settings{OS: "Linux", Arch: "x86_64", BuildType: BuildTypeRelease, Compiler: "gcc"}
}

func TestParseSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		assignments []string
		want        Settings
		wantErr     error
	}{
		{
			name: "no assignments keeps base",
			want: validSettings(),
		},
		{
			name:        "arch override",
			assignments: []string{"arch=armv8"},
			want:        Settings{OS: "Linux", Arch: "armv8", BuildType: BuildTypeRelease, Compiler: "gcc"},
		},
		{
			name:        "whitespace around key and value",
			assignments: []string{" build_type = Debug "},
			want:        Settings{OS: "Linux", Arch: "x86_64", BuildType: BuildTypeDebug, Compiler: "gcc"},
		},
		{
			name:        "known but unmapped arch is accepted",
			assignments: []string{"arch=riscv64"},
			want:        Settings{OS: "Linux", Arch: "riscv64", BuildType: BuildTypeRelease, Compiler: "gcc"},
		},
		{
			name:        "unknown key",
			assignments: []string{"arch.version=2"},
			wantErr:     ErrUnknownSettingKey,
		},
		{
			name:        "missing separator",
			assignments: []string{"arch"},
			wantErr:     ErrMalformedAssignment,
		},
		{
			name:        "empty key",
			assignments: []string{"=x86"},
			wantErr:     ErrMalformedAssignment,
		},
		{
			name:        "garbage arch",
			assignments: []string{"arch=pdp11"},
			wantErr:     ErrInvalidSetting,
		},
		{
			name:        "bad build type",
			assignments: []string{"build_type=Fast"},
			wantErr:     ErrInvalidSetting,
		},
		{
			name:        "empty compiler",
			assignments: []string{"compiler="},
			wantErr:     ErrInvalidSetting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSettings(validSettings(), tt.assignments)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSettings() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSettings() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettings_ValidateZero(t *testing.T) {
	t.Parallel()

	err := Settings{}.Validate()
	if err == nil {
		t.Fatal("zero Settings should not validate")
	}
	var settingErr *InvalidSettingError
	if !errors.As(err, &settingErr) {
		t.Errorf("expected *InvalidSettingError in %v", err)
	}
}

func TestSettings_Get(t *testing.T) {
	t.Parallel()

	s := validSettings()
	for _, key := range SettingKeys() {
		if v, ok := s.Get(key); !ok || v == "" {
			t.Errorf("Get(%q) = %q, %v", key, v, ok)
		}
	}
	if _, ok := s.Get("nope"); ok {
		t.Error("Get(nope) should report false")
	}
}

func TestFormatBool(t *testing.T) {
	t.Parallel()

	if FormatBool(true) != "True" || FormatBool(false) != "False" {
		t.Errorf("FormatBool = %q/%q, want True/False", FormatBool(true), FormatBool(false))
	}
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		assignments []string
		want        FeatureOptions
		wantErr     error
	}{
		{"defaults", nil, FeatureOptions{LiveUpdate: true, TLS: true}, nil},
		{"python style false", []string{"liveupdate=False"}, FeatureOptions{LiveUpdate: false, TLS: true}, nil},
		{"both off", []string{"liveupdate=false", "tls=0"}, FeatureOptions{}, nil},
		{"last assignment wins", []string{"tls=False", "tls=True"}, FeatureOptions{LiveUpdate: true, TLS: true}, nil},
		{"not a bool", []string{"tls=maybe"}, FeatureOptions{}, ErrInvalidOption},
		{"unknown key", []string{"shared=True"}, FeatureOptions{}, ErrUnknownOptionKey},
		{"malformed", []string{"tls"}, FeatureOptions{}, ErrMalformedAssignment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOptions(DefaultFeatureOptions(), tt.assignments)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseOptions() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOptions() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseOptions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	sc, err := ParseScope("includeos/stable")
	if err != nil {
		t.Fatalf("ParseScope() error = %v", err)
	}
	if sc.User != "includeos" || sc.Channel != "stable" {
		t.Errorf("ParseScope() = %+v", sc)
	}
	if sc.String() != "includeos/stable" {
		t.Errorf("String() = %q", sc.String())
	}

	for _, bad := range []string{"", "includeos", "/stable", "includeos/", "a b/c", "a/b/c"} {
		if _, err := ParseScope(bad); !errors.Is(err, ErrInvalidScope) {
			t.Errorf("ParseScope(%q) error = %v, want ErrInvalidScope", bad, err)
		}
	}
}
