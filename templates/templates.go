// Package templates holds the embedded HTML page templates.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
