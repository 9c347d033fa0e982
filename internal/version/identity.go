// SPDX-License-Identifier: MPL-2.0

package version

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/includeos/lbrecipe/internal/deps"
	"github.com/includeos/lbrecipe/pkg/recipe"
)

// Major returns the major component of a resolved version in semver form ("v1"),
// or "" when v is not a dotted numeric version. Any pre-release suffix is ignored.
func Major(v string) string {
	core, _, _ := strings.Cut(strings.TrimPrefix(v, "v"), "-")
	if !dottedNumeric.MatchString(core) {
		return ""
	}
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	canonical := "v" + strings.Join(parts, ".")
	if !semver.IsValid(canonical) {
		return ""
	}
	return semver.Major(canonical)
}

// Compatible reports whether two versions share a package identity under
// major-mode: only the major component is compared.
func Compatible(a, b string) bool {
	ma, mb := Major(a), Major(b)
	return ma != "" && ma == mb
}

// PackageID is the identity of a binary package. Builds whose versions share a
// major component, whose settings and options are equal, and whose requirements
// name the same packages at the same major version get the same ID.
func PackageID(v string, settings recipe.Settings, options recipe.FeatureOptions, reqs []deps.Requirement) string {
	var info strings.Builder

	info.WriteString("[settings]\n")
	for _, key := range recipe.SettingKeys() {
		val, _ := settings.Get(key)
		info.WriteString(key + "=" + val + "\n")
	}

	info.WriteString("[options]\n")
	for _, key := range recipe.OptionKeys() {
		val, _ := options.Get(key)
		info.WriteString(key + "=" + recipe.FormatBool(val) + "\n")
	}

	info.WriteString("[requires]\n")
	for _, r := range reqs {
		info.WriteString(r.Name + "/" + majorMode(r.Range.Min) + "@" + r.Scope.String() + "\n")
	}

	info.WriteString("[version]\n")
	info.WriteString("v" + majorMode(v) + "\n")

	sum := sha256.Sum256([]byte(info.String()))
	return hex.EncodeToString(sum[:20])
}

// majorMode renders v as "<major>.Y.Z", using the fallback's major when v has none.
func majorMode(v string) string {
	major := Major(v)
	if major == "" {
		major = Major(Fallback)
	}
	return strings.TrimPrefix(major, "v") + ".Y.Z"
}
