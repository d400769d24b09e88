// Package loadable computes which story modules changed between two reload
// cycles of the preview.
//
// A Loadable is anything that can report the current set of story modules:
// a ready-made map, a positional list of export maps, a factory, or a
// directory of story files. ExtractChanges observes it and, when a Hot reload
// context is present, diffs the observation against what the previous cycle
// accepted. Without a reload context every observed module counts as added
// and nothing is ever reported as removed.
//
// Loading errors are returned as *LoadError and are never recovered here:
// they must reach the preview so it can show them.
package loadable
