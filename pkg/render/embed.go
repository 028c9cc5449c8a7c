package render

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded preview template bundle so callers can
// ship the default rendering without a templates directory on disk.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
