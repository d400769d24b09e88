// Package storyfile reads story-producing modules written in HCL.
//
// A story file declares an optional meta block and any number of story
// blocks:
//
//	meta {
//	  title      = "Example/Button"
//	  tags       = ["autodocs"]
//	  args       = { label = "Button" }
//	  parameters = { layout = "centered" }
//	}
//
//	story "Primary" {
//	  args = { primary = true }
//	}
//
// Parse turns one file into a story.Exports map: the meta becomes the
// "default" export and every story block becomes an export named after its
// label. Dir exposes a directory of story files as a loadable.Loadable.
package storyfile
