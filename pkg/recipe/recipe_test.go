// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if r.Name != "microlb" {
		t.Errorf("Name = %q, want microlb", r.Name)
	}
	if r.License != "Apache-2.0" {
		t.Errorf("License = %q, want Apache-2.0", r.License)
	}
	if r.DefaultOptions != DefaultFeatureOptions() {
		t.Errorf("DefaultOptions = %+v, want both true", r.DefaultOptions)
	}
	if r.SCM.Type != "git" || r.SCM.Revision != "auto" {
		t.Errorf("SCM = %+v", r.SCM)
	}
	if got := r.Requires.Runtime; got.Name != "includeos" || got.Range != ">=0.14.0" || !got.IncludePrerelease {
		t.Errorf("Requires.Runtime = %+v", got)
	}
	if len(r.Libs) != 1 || r.Libs[0] != "microlb" {
		t.Errorf("Libs = %v", r.Libs)
	}
	if len(r.Deploy) != 2 || r.Deploy[1].Pattern != "*.a" {
		t.Errorf("Deploy = %+v", r.Deploy)
	}
}

const minimalRecipe = `
name:    "mylb"
license: "MIT"
requires: {
	runtime:    {name: "includeos", range: ">=0.15.0", scope: {user: "includeos", channel: "stable"}}
	liveupdate: {name: "liveupdate", range: ">=0.15.0"}
	tls:        {name: "s2n", range: ">=1.1.1", include_prerelease: false}
}
`

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	r, err := Parse([]byte(minimalRecipe), "recipe.cue")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if r.SCM.URL != "auto" || r.SCM.Subfolder != "." {
		t.Errorf("SCM defaults not applied: %+v", r.SCM)
	}
	if !r.DefaultOptions.LiveUpdate || !r.DefaultOptions.TLS {
		t.Errorf("DefaultOptions defaults not applied: %+v", r.DefaultOptions)
	}
	if r.Requires.Runtime.Scope == nil || r.Requires.Runtime.Scope.Channel != "stable" {
		t.Errorf("runtime scope = %+v", r.Requires.Runtime.Scope)
	}
	if r.Requires.LiveUpdate.Scope != nil {
		t.Errorf("liveupdate scope should be unset, got %+v", r.Requires.LiveUpdate.Scope)
	}
	if r.Requires.TLS.IncludePrerelease {
		t.Error("tls include_prerelease should be false")
	}
	if len(r.Libs) != 0 || len(r.Deploy) != 0 {
		t.Errorf("expected empty libs/deploy, got %v / %v", r.Libs, r.Deploy)
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "duplicate package name",
			doc:     strings.Replace(minimalRecipe, `"s2n"`, `"liveupdate"`, 1),
			wantErr: ErrDuplicateRequirement,
		},
		{
			name:    "unknown field",
			doc:     minimalRecipe + "\nshared: true\n",
			wantMsg: "shared",
		},
		{
			name:    "range without lower bound",
			doc:     strings.Replace(minimalRecipe, `">=1.1.1"`, `"1.1.1"`, 1),
			wantMsg: "range",
		},
		{
			name:    "invalid deploy pattern",
			doc:     minimalRecipe + "\ndeploy: [{pattern: \"*\", src: \"include\", dst: \"include\"}, {pattern: \"[\", src: \"lib\", dst: \"lib\"}]\n",
			wantErr: doublestar.ErrBadPattern,
			wantMsg: "deploy rule 1",
		},
		{
			name:    "missing requires",
			doc:     "name: \"x\"\nlicense: \"MIT\"\n",
			wantMsg: "requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc), "recipe.cue")
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Parse() error = %v, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(minimalRecipe), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Name != "mylb" {
		t.Errorf("Name = %q, want mylb", r.Name)
	}

	if _, err := Load(filepath.Join(dir, "missing.cue")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}
