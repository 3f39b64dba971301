// Package files locates, fingerprints and watches the source workbooks,
// and writes output files atomically.
//
// Discovery lists the workbooks of the data directory in name order.
// Fingerprint hashes that listing so caches can tell when any input
// changed. Watcher turns fsnotify events into debounced change callbacks.
// Manager resolves paths against the configured directories.
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	workbooks, err := discovery.FindWorkbooks()
//	key := files.Fingerprint(workbooks)
package files
