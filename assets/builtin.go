package assets

import (
	"embed"
	"io/fs"
)

// The underscore keeps the toolchain from treating the hook scripts as part
// of this module; they only ever run inside the plugin sandbox.
//
//go:embed all:_plugins
var builtinPlugins embed.FS

// BuiltinPlugins exposes the embedded plugin tree, rooted at the individual
// plugin directories.
func BuiltinPlugins() fs.FS {
	sub, err := fs.Sub(builtinPlugins, "_plugins")
	if err != nil {
		panic(err) // the embed path is fixed at compile time
	}
	return sub
}
