// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests: environment and working-directory
// overrides that restore themselves, and go-git fixtures that build tagged
// repositories without a git binary.
package testutil
