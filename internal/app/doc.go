// Package app wires the dashboard server together and supervises it.
//
// NewApplication resolves paths, starts telemetry and builds every
// component in dependency order:
//
//	1. Dimensions, from the defaults or a hierarchy declaration file
//	2. The cached normalizer over the data directory
//	3. The dashboard and health services
//	4. The websocket hub and the data directory watcher
//	5. The chi router and the HTTP server
//
// Run supervises the HTTP server, the hub and the watcher with an errgroup.
// When the context is cancelled, or any of them fails, the server is shut
// down gracefully, websocket clients are disconnected and telemetry is
// flushed. Run never calls os.Exit; the caller decides the exit code.
//
// A change in the data directory invalidates the normalizer cache and
// broadcasts a data_update message so open pages reload their views.
package app
