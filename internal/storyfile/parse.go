package storyfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/previewgo/internal/ctyconv"
	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/zclconf/go-cty/cty"
)

// DefaultSuffix is the file name suffix of story files.
const DefaultSuffix = ".stories.hcl"

// hclStoryFile represents the top-level structure of a story file for decoding.
type hclStoryFile struct {
	Meta    *hclMeta    `hcl:"meta,block"`
	Stories []*hclStory `hcl:"story,block"`
}

type hclMeta struct {
	Title          string    `hcl:"title,optional"`
	Component      string    `hcl:"component,optional"`
	Tags           []string  `hcl:"tags,optional"`
	Args           cty.Value `hcl:"args,optional"`
	Parameters     cty.Value `hcl:"parameters,optional"`
	IncludeStories []string  `hcl:"include_stories,optional"`
	ExcludeStories []string  `hcl:"exclude_stories,optional"`
}

type hclStory struct {
	ExportName string    `hcl:"export,label"`
	Name       string    `hcl:"name,optional"`
	Tags       []string  `hcl:"tags,optional"`
	Args       cty.Value `hcl:"args,optional"`
	Parameters cty.Value `hcl:"parameters,optional"`
}

// Parse decodes the source of one story file into its exports.
func Parse(src []byte, filename string) (story.Exports, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse story file %s: %w", filename, diags)
	}

	var parsed hclStoryFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode story file %s: %w", filename, diags)
	}

	exports := story.Exports{}
	if parsed.Meta != nil {
		meta, err := parsed.Meta.toMeta()
		if err != nil {
			return nil, fmt.Errorf("story file %s: meta: %w", filename, err)
		}
		exports[story.DefaultExport] = meta
	}

	order := make([]string, 0, len(parsed.Stories))
	for _, s := range parsed.Stories {
		if _, dup := exports[s.ExportName]; dup {
			return nil, fmt.Errorf("story file %s: %w", filename, duplicateStoryDiag(s.ExportName))
		}
		converted, err := s.toStory()
		if err != nil {
			return nil, fmt.Errorf("story file %s: story %q: %w", filename, s.ExportName, err)
		}
		exports[s.ExportName] = converted
		order = append(order, s.ExportName)
	}
	exports[story.NamedExportsOrder] = order

	return exports, nil
}

func (m *hclMeta) toMeta() (story.Meta, error) {
	args, err := ctyconv.ObjectToMap(m.Args)
	if err != nil {
		return story.Meta{}, fmt.Errorf("args: %w", err)
	}
	params, err := ctyconv.ObjectToMap(m.Parameters)
	if err != nil {
		return story.Meta{}, fmt.Errorf("parameters: %w", err)
	}
	return story.Meta{
		Title:          m.Title,
		Component:      m.Component,
		Tags:           m.Tags,
		Args:           args,
		Parameters:     params,
		IncludeStories: m.IncludeStories,
		ExcludeStories: m.ExcludeStories,
	}, nil
}

func (s *hclStory) toStory() (story.Story, error) {
	args, err := ctyconv.ObjectToMap(s.Args)
	if err != nil {
		return story.Story{}, fmt.Errorf("args: %w", err)
	}
	params, err := ctyconv.ObjectToMap(s.Parameters)
	if err != nil {
		return story.Story{}, fmt.Errorf("parameters: %w", err)
	}
	return story.Story{
		Name:       s.Name,
		Tags:       s.Tags,
		Args:       args,
		Parameters: params,
	}, nil
}

func duplicateStoryDiag(name string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Duplicate \"story\" block",
		Detail:   "A story named \"" + name + "\" is already declared in this file.",
	}}
}
