// SPDX-License-Identifier: MPL-2.0

// Package config handles lbrecipe configuration using Viper with CUE as the file format.
//
// Configuration is loaded from the first of: the file given with --config,
// $XDG_CONFIG_HOME/lbrecipe/config.cue (~/Library/Application Support/lbrecipe on macOS,
// %APPDATA%\lbrecipe on Windows), or ./lbrecipe.cue. Values are validated against the
// embedded config_schema.cue, merged over built-in defaults, and may be overridden by
// LBRECIPE_* environment variables (LBRECIPE_PROFILE_ARCH=armv8, LBRECIPE_LOG_LEVEL=debug).
package config
