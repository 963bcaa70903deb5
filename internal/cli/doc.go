// Package cli defines the Cobra command tree for the cv CLI. Each file in this
// package builds one top-level command (ext:list, api, cli, etc.) around a
// shared per-invocation commandContext, which boots the site at most once.
// Command implementations delegate to internal packages for the actual work
// and only handle flag parsing, I/O formatting, and exit codes.
package cli
