// Package templates embeds the HTML pages rendered by the handlers.
package templates

import "embed"

//go:embed *.html posts/*.html core/*.html auth/*.html
var FS embed.FS
