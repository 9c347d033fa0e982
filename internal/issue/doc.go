// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error reporting for the lbrecipe CLI.
//
// ActionableError carries what was attempted, on what, and how to fix it. The Issue
// catalog holds longer Markdown guidance for the failure classes users hit most
// often; the CLI renders it with glamour when a command fails.
package issue
