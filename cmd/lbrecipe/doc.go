// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for lbrecipe.
//
// This package implements the Cobra command hierarchy: version resolution,
// architecture and dependency inspection, the CMake configure/build/install
// drivers, artifact deployment, package metadata and configuration management.
package cmd
