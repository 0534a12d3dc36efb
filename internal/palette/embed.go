// Package palette provides named color palettes for drawing commands and
// the editor.
package palette

import "embed"

// Embedded holds the palettes shipped with the binary.
//
//go:embed defaults/*.palette
var Embedded embed.FS
