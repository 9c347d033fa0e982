// SPDX-License-Identifier: MPL-2.0

// Package build derives the CMake definitions for a set of settings and options and
// drives a Backend through configure, build and install.
//
// Derive is pure: identical inputs always yield identical definitions. Configurator
// re-derives and re-configures before every build or install, so those steps never act
// on state left behind by an earlier invocation. An architecture without a target
// mapping stops the pipeline before the backend is called.
package build
