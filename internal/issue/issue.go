// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ConfigLoadFailedId Id = iota + 1
	RecipeParseErrorId
	InvalidSettingsId
	UnknownArchitectureId
	CMakeNotFoundId
	BuildFailedId
	DeployFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is Markdown guidance shown to the user.
	MarkdownMsg string

	// Issue is a catalog entry: a failure class plus how to get out of it.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// render is swapped out in tests so output does not depend on the terminal.
var render = glamour.Render

// Id returns the catalog identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw Markdown guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the guidance with the named glamour style ("dark", "light", "notty").
func (i *Issue) Render(stylePath string) (string, error) {
	return render(strings.TrimSpace(string(i.mdMsg)), stylePath)
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

var issues = map[Id]*Issue{
	ConfigLoadFailedId: {
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The lbrecipe configuration file could not be read or does not match the schema.

## Things you can try:
- Show where lbrecipe looks for configuration:
~~~
$ lbrecipe config path
~~~
- Regenerate a default file and edit from there:
~~~
$ lbrecipe config init
~~~`,
	},
	RecipeParseErrorId: {
		id: RecipeParseErrorId,
		mdMsg: `
# Failed to parse the recipe!

The recipe file contains CUE syntax errors or fields the schema does not allow.

## Things you can try:
- Check the CUE path in the error message above
- Compare with the built-in recipe:
~~~
$ lbrecipe inspect
~~~
- Every requirement range must be a lower bound such as ` + "`>=0.14.0`",
	},
	InvalidSettingsId: {
		id: InvalidSettingsId,
		mdMsg: `
# Invalid settings or options!

Settings and options are given as ` + "`key=value`" + ` pairs.

## Accepted keys:
- settings (` + "`-s`" + `): os, arch, build_type, compiler
- options (` + "`-o`" + `): liveupdate, tls (True or False)`,
	},
	UnknownArchitectureId: {
		id: UnknownArchitectureId,
		mdMsg: `
# Architecture not supported!

The library can only be built for architectures with a known target triple.

## Things you can try:
- List the supported architectures:
~~~
$ lbrecipe arch
~~~
- Pass one of them explicitly:
~~~
$ lbrecipe configure -s arch=x86_64
~~~`,
	},
	CMakeNotFoundId: {
		id: CMakeNotFoundId,
		mdMsg: `
# CMake not found!

Configure, build and install run CMake as a subprocess.

## Things you can try:
- Install CMake 3.15 or newer and make sure it is on your PATH
- Or point lbrecipe at a specific binary in config.cue:
~~~cue
cmake: binary: "/opt/cmake/bin/cmake"
~~~`,
	},
	BuildFailedId: {
		id: BuildFailedId,
		mdMsg: `
# Build failed!

CMake exited with an error. Its output is shown above.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the definitions passed to CMake
- Remove the build directory and configure from scratch`,
	},
	DeployFailedId: {
		id: DeployFailedId,
		mdMsg: `
# Deploy failed!

Installed artifacts could not be copied into the destination tree.

## Things you can try:
- Run ` + "`lbrecipe install`" + ` first so the install prefix exists
- Check that the destination directory is writable`,
	},
}
