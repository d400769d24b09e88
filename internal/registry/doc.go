// Package registry is the story registration facade.
//
// The Registry owns the registration table: for every story-producing module
// it holds the module's current exports. Reload cycles add and remove
// entries, and every read of the project annotations, the story index, or the
// import function folds the whole table again, so a read never observes a
// stale derived view.
//
// Addons contribute project-wide parameters and decorators through the same
// Registry during startup.
package registry
