// SPDX-License-Identifier: MPL-2.0

// Package manifest encodes the package-info record of a build as TOML: what was
// built, for which settings and options, and what it requires and provides.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/includeos/lbrecipe/internal/deps"
	"github.com/includeos/lbrecipe/internal/version"
	"github.com/includeos/lbrecipe/pkg/recipe"
)

// FileName is the conventional name of a manifest placed next to deployed artifacts.
const FileName = "lbrecipe-info.toml"

// ErrIncompleteManifest is returned when a decoded manifest lacks its identity.
var ErrIncompleteManifest = errors.New("manifest is missing package name or version")

type (
	// Manifest is the package-info record.
	Manifest struct {
		Package  Package               `toml:"package"`
		Settings recipe.Settings       `toml:"settings"`
		Options  recipe.FeatureOptions `toml:"options"`
		Requires []string              `toml:"requires"`
		CppInfo  CppInfo               `toml:"cpp_info"`
	}

	// Package identifies the build.
	Package struct {
		Name        string `toml:"name"`
		Version     string `toml:"version"`
		ID          string `toml:"id"`
		License     string `toml:"license"`
		Description string `toml:"description,omitempty"`
		URL         string `toml:"url,omitempty"`
	}

	// CppInfo tells consumers what to link.
	CppInfo struct {
		Libs        []string `toml:"libs"`
		IncludeDirs []string `toml:"include_dirs"`
		LibDirs     []string `toml:"lib_dirs"`
	}
)

// New assembles the manifest for one build.
func New(r *recipe.Recipe, ver string, settings recipe.Settings, opts recipe.FeatureOptions, reqs []deps.Requirement) Manifest {
	m := Manifest{
		Package: Package{
			Name:        r.Name,
			Version:     ver,
			ID:          version.PackageID(ver, settings, opts, reqs),
			License:     r.License,
			Description: r.Description,
			URL:         r.URL,
		},
		Settings: settings,
		Options:  opts,
		Requires: deps.References(reqs),
		CppInfo: CppInfo{
			Libs: append([]string(nil), r.Libs...),
		},
	}
	for _, rule := range r.Deploy {
		switch rule.Dst {
		case "include":
			m.CppInfo.IncludeDirs = append(m.CppInfo.IncludeDirs, rule.Dst)
		case "lib":
			m.CppInfo.LibDirs = append(m.CppInfo.LibDirs, rule.Dst)
		}
	}
	return m
}

// Encode writes m as TOML.
func (m Manifest) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// Decode reads a manifest, rejecting unknown keys.
func Decode(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Manifest{}, fmt.Errorf("decode manifest at %d:%d: %w", row, col, err)
		}
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Package.Name == "" || m.Package.Version == "" {
		return Manifest{}, ErrIncompleteManifest
	}
	return m, nil
}

// ReadFile decodes the manifest at path.
func ReadFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// WriteFile encodes m to path.
func (m Manifest) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Verify recomputes the package ID from the recorded version, settings, options
// and requirements.
func (m Manifest) Verify() error {
	reqs, err := deps.ParseReferences(m.Requires)
	if err != nil {
		return fmt.Errorf("verify manifest: %w", err)
	}
	want := version.PackageID(m.Package.Version, m.Settings, m.Options, reqs)
	if m.Package.ID != want {
		return fmt.Errorf("package id %s does not match recorded settings, options and requirements (expected %s)", m.Package.ID, want)
	}
	return nil
}
