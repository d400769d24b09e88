// Package preview implements the long-lived preview coordinator.
//
// A Preview starts Uninitialized. Initialize stores the accessors for the
// story index, the import function and the project annotations, then renders
// the selected story. Every later reload cycle reaches the preview through
// OnStoriesChanged, which swaps in the new index and import function while
// keeping the current selection. Renders run on their own goroutine and a
// newer render cancels the one in flight.
package preview
