// SPDX-License-Identifier: MPL-2.0

// Command lbrecipe derives package versions and build configuration for microLB.
package main

import cmd "github.com/includeos/lbrecipe/cmd/lbrecipe"

func main() {
	cmd.Execute()
}
