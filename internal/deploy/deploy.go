// SPDX-License-Identifier: MPL-2.0

// Package deploy places installed artifacts into a consumer's tree according to the
// recipe's copy rules: headers under include, static archives under lib.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/includeos/lbrecipe/pkg/recipe"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ErrPrefixNotFound is returned when the install prefix does not exist.
var ErrPrefixNotFound = errors.New("install prefix not found")

type (
	// Deployer copies files between directories of a filesystem.
	Deployer struct {
		fs afero.Fs
	}

	// Copied records one placed file.
	Copied struct {
		From string
		To   string
	}

	// Report lists what Deploy placed, in walk order per rule.
	Report struct {
		Copied []Copied
	}
)

// New returns a Deployer over fs; nil means the OS filesystem.
func New(fs afero.Fs) *Deployer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Deployer{fs: fs}
}

// Deploy applies each rule: files under prefix/Src matching Pattern are copied to
// dest/Dst, keeping their path relative to Src. A pattern without a slash matches
// the base name at any depth; otherwise it is a doublestar pattern over the path
// relative to Src. A missing Src directory contributes nothing.
func (d *Deployer) Deploy(ctx context.Context, prefix, dest string, rules []recipe.CopyRule) (Report, error) {
	var report Report

	ok, err := afero.DirExists(d.fs, prefix)
	if err != nil {
		return report, fmt.Errorf("stat %s: %w", prefix, err)
	}
	if !ok {
		return report, fmt.Errorf("%s: %w", prefix, ErrPrefixNotFound)
	}

	if err := recipe.ValidateCopyRules(rules); err != nil {
		return report, err
	}

	for _, rule := range rules {
		srcRoot := filepath.Join(prefix, rule.Src)
		if exists, _ := afero.DirExists(d.fs, srcRoot); !exists {
			slog.Debug("deploy source missing, skipping rule", "src", srcRoot, "pattern", rule.Pattern)
			continue
		}
		dstRoot := filepath.Join(dest, rule.Dst)

		err := afero.Walk(d.fs, srcRoot, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(srcRoot, path)
			if err != nil {
				return err
			}
			if !matches(rule.Pattern, rel) {
				return nil
			}
			target := filepath.Join(dstRoot, rel)
			if err := d.copyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}
			report.Copied = append(report.Copied, Copied{From: path, To: target})
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("deploy %s -> %s: %w", srcRoot, dstRoot, err)
		}
	}

	return report, nil
}

func matches(pattern, rel string) bool {
	name := filepath.ToSlash(rel)
	if !strings.Contains(pattern, "/") {
		name = path.Base(name)
	}
	ok, _ := doublestar.Match(pattern, name)
	return ok
}

func (d *Deployer) copyFile(src, dst string, perm os.FileMode) (err error) {
	if err := d.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", dst, err)
	}

	in, err := d.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := d.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
