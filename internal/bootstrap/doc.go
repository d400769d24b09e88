// Package bootstrap is the entry point a host calls once per reload.
//
// A Session outlives reloads and holds the shared channel, registry and
// preview. Start reuses whatever the session already holds, creates what is
// missing, and returns a Client whose Configure feeds each reload cycle's
// story modules into the preview.
package bootstrap
