// SPDX-License-Identifier: MPL-2.0

package arch

import (
	"errors"
	"strings"
	"testing"
)

func TestMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arch   string
		want   Target
		wantOK bool
	}{
		{"x86", "i686", true},
		{"x86_64", "x86_64", true},
		{"armv8", "aarch64", true},
		{"riscv64", "", false},
		{"X86", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			t.Parallel()

			got, ok := Map(tt.arch)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Map(%q) = (%q, %v), want (%q, %v)", tt.arch, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	t.Parallel()

	_, err := Lookup("riscv64")
	if !errors.Is(err, ErrUnknownArchitecture) {
		t.Fatalf("Lookup() error = %v, want ErrUnknownArchitecture", err)
	}
	var uae *UnknownArchitectureError
	if !errors.As(err, &uae) || uae.Arch != "riscv64" {
		t.Fatalf("expected UnknownArchitectureError for riscv64, got %v", err)
	}
	if !strings.Contains(err.Error(), "armv8, x86, x86_64") {
		t.Errorf("error should list supported architectures: %v", err)
	}
}

func TestTable(t *testing.T) {
	t.Parallel()

	got := Table()
	want := []Mapping{{"armv8", "aarch64"}, {"x86", "i686"}, {"x86_64", "x86_64"}}
	if len(got) != len(want) {
		t.Fatalf("Table() has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Table()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
