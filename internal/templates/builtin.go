package templates

import (
	"embed"
	"io/fs"
)

//go:embed builtin/*.tmpl
var embedded embed.FS

// builtinFS returns the embedded templates rooted at the builtin directory.
func builtinFS() fs.FS {
	sub, err := fs.Sub(embedded, "builtin")
	if err != nil {
		panic("templates: embedded builtin directory missing: " + err.Error())
	}
	return sub
}
