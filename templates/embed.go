// Package templates holds the bundled gallery templates. They are the last
// root searched by the view resolver, after the theme overrides.
package templates

import "embed"

// FS contains every bundled template, addressed by its path relative to this
// directory (for example "virtual/single-case.html").
//
//go:embed *.html native virtual partials
var FS embed.FS
