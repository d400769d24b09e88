// Package app contains the preview host. It owns the session, serves the
// channel and the story index over HTTP, and drives a reload cycle each time
// the story files change.
package app
