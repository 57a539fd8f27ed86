package web

import "embed"

// EmailTemplatesFS embeds the HTML bodies of outbound emails.
//
//go:embed templates/email/*.html
var EmailTemplatesFS embed.FS
