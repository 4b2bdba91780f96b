// Package stdlib embeds the standard library written in ECP itself. The
// interpreter searches it after the configured module path.
package stdlib

import (
	"embed"
	"io/fs"
	"strings"
)

// FS holds one .ecp file per module.
//
//go:embed *.ecp
var FS embed.FS

// Modules returns the names of the embedded modules, sorted.
func Modules() []string {
	files, _ := fs.Glob(FS, "*.ecp")
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = strings.TrimSuffix(f, ".ecp")
	}
	return names
}
