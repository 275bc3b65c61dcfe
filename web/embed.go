package web

import "embed"

// TemplatesFS holds the dashboard Markdown template and the HTML page shell.
//
//go:embed templates/*
var TemplatesFS embed.FS

// StaticFS holds the stylesheet served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
