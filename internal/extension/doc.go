// Package extension models the host site's extension system: the local
// container of extension directories, the key-to-metadata mapper, the status
// manager backed by the site's SQLite store, and the browser for the remote
// extension feed. System bundles them for one booted runtime.
package extension
