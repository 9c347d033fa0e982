// SPDX-License-Identifier: MPL-2.0

// Package version derives the package version from tag history and computes the
// package identity used to decide whether two builds are interchangeable.
//
// Resolution never fails outward. Resolve reports why a version could not be derived
// and leaves the choice of fallback to the caller; VersionOrFallback applies the
// conventional "0.0.0".
package version
