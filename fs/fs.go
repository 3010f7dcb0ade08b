package appfs

import "embed"

// FS embeds all application assets: goose migrations and email templates.
//
//go:embed all:migrations all:assets
var FS embed.FS
