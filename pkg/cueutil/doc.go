// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing flow shared by the recipe and config loaders.
//
// Both loaders compile an embedded schema, unify the user's document with a root
// definition of that schema, validate, and decode into a Go struct:
//
//	//go:embed recipe_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[Recipe](schema, data, "#Recipe",
//	    cueutil.WithFilename("recipe.cue"))
//	if err != nil {
//	    return nil, err // error carries the offending CUE path
//	}
//	return result.Value, nil
package cueutil
