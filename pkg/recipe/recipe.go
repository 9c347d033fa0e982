// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/includeos/lbrecipe/pkg/cueutil"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the conventional recipe file name looked up in a source checkout.
const FileName = "recipe.cue"

var (
	//go:embed recipe_schema.cue
	schema []byte

	//go:embed default_recipe.cue
	defaultRecipe []byte

	// ErrDuplicateRequirement is returned when two declared dependencies share a package name.
	ErrDuplicateRequirement = errors.New("duplicate requirement")
)

type (
	// Recipe is the declarative description of the package: identity, declared
	// options, dependency declarations and artifact placement.
	Recipe struct {
		Name           string         `json:"name"`
		License        string         `json:"license"`
		Description    string         `json:"description"`
		URL            string         `json:"url,omitempty"`
		SCM            SCM            `json:"scm"`
		DefaultOptions FeatureOptions `json:"default_options"`
		Requires       Requires       `json:"requires"`
		Libs           []string       `json:"libs"`
		Deploy         []CopyRule     `json:"deploy"`
	}

	// SCM points at the source the package is built from. "auto" means the
	// enclosing checkout and its current revision.
	SCM struct {
		Type      string `json:"type"`
		URL       string `json:"url"`
		Subfolder string `json:"subfolder"`
		Revision  string `json:"revision"`
	}

	// Requires declares the three upstream packages the dependency resolver may emit.
	Requires struct {
		Runtime    Dependency `json:"runtime"`
		LiveUpdate Dependency `json:"liveupdate"`
		TLS        Dependency `json:"tls"`
	}

	// Dependency declares one upstream package. A nil Scope means "same scope as
	// the package being built".
	Dependency struct {
		Name              string `json:"name"`
		Range             string `json:"range"`
		IncludePrerelease bool   `json:"include_prerelease"`
		Scope             *Scope `json:"scope,omitempty"`
	}

	// CopyRule places files matching Pattern under Src into Dst.
	CopyRule struct {
		Pattern string `json:"pattern"`
		Src     string `json:"src"`
		Dst     string `json:"dst"`
	}

	// DuplicateRequirementError names the package declared more than once.
	DuplicateRequirementError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *DuplicateRequirementError) Error() string {
	return fmt.Sprintf("package %q is declared by more than one requirement", e.Name)
}

// Unwrap returns ErrDuplicateRequirement for errors.Is() compatibility.
func (e *DuplicateRequirementError) Unwrap() error { return ErrDuplicateRequirement }

// Default returns the built-in microlb recipe.
func Default() (*Recipe, error) {
	return Parse(defaultRecipe, "default_recipe.cue")
}

// Load reads and parses the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	return Parse(data, path)
}

// Parse validates data against the recipe schema and the cross-field rules the
// schema cannot express.
func Parse(data []byte, filename string) (*Recipe, error) {
	res, err := cueutil.ParseAndDecode[Recipe](schema, data, "#Recipe", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	r := res.Value
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return r, nil
}

// Validate checks that declared dependencies have distinct names and valid scopes.
func (r *Recipe) Validate() error {
	seen := make(map[string]bool, 3)
	for _, d := range r.Requires.All() {
		if seen[d.Name] {
			return &DuplicateRequirementError{Name: d.Name}
		}
		seen[d.Name] = true
		if d.Scope != nil {
			if err := d.Scope.Validate(); err != nil {
				return fmt.Errorf("requirement %s: %w", d.Name, err)
			}
		}
	}
	return ValidateCopyRules(r.Deploy)
}

// ValidateCopyRules rejects the first rule whose pattern is not a valid glob.
func ValidateCopyRules(rules []CopyRule) error {
	for i, rule := range rules {
		if !doublestar.ValidatePattern(rule.Pattern) {
			return fmt.Errorf("deploy rule %d pattern %q: %w", i, rule.Pattern, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// All returns the declarations in resolution order: runtime, liveupdate, tls.
func (r Requires) All() []Dependency {
	return []Dependency{r.Runtime, r.LiveUpdate, r.TLS}
}
