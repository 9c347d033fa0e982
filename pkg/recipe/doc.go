// SPDX-License-Identifier: MPL-2.0

// Package recipe defines the typed inputs of a package build: the recipe document
// (recipe.cue), the platform Settings and the FeatureOptions.
//
// Settings and options arrive as loose key=value strings from flags and config
// profiles. ParseSettings and ParseOptions turn them into validated structs once,
// at the boundary, so nothing downstream has to re-check a field.
package recipe
