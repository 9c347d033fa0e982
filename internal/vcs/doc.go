// SPDX-License-Identifier: MPL-2.0

// Package vcs answers the two questions version resolution asks of a checkout:
// which tag is nearest to HEAD, and how many commits separate a tag from HEAD.
//
// GitBackend answers them from the local repository with go-git; no git binary is
// required and nothing is fetched.
package vcs
