// Package api dispatches Entity.action calls against a booted site and wraps
// every outcome, success or failure, in a version 3 result envelope.
package api
