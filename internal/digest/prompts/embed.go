// Package prompts provides the embedded prompt templates for digest requests.
package prompts

import (
	"embed"
)

// FS holds the prompt templates. Each variant has a user prompt template
// (<name>.tmpl) and a system instruction template (<name>_system.tmpl).
//
//go:embed *.tmpl
var FS embed.FS
