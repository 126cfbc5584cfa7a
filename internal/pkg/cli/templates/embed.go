package templates

import "embed"

// Application templates ship inside the binary so a deployment host
// needs nothing besides the CLI itself.
//
//go:embed assets
var assets embed.FS
