// Package web embeds the offline-capable app shell.
package web

import "embed"

// Assets holds the shell: page, manifest, service worker and icon.
//
//go:embed index.html app.js manifest.webmanifest service-worker.js icon.svg
var Assets embed.FS
