// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package story

import "context"

// DefaultExport is the export name that holds a module's Meta.
const DefaultExport = "default"

// NamedExportsOrder is an optional export listing story export names in
// declaration order. Without it, stories are ordered by export name.
const NamedExportsOrder = "__namedExportsOrder"

// ModuleID is an opaque, path-like identifier of a story-producing module.
type ModuleID string

// ID identifies a single story, e.g. "example-button--primary".
type ID string

// Exports is the export map of one module as currently loaded.
type Exports map[string]any

// Meta is the module-level default export.
type Meta struct {
	Title          string
	Component      string
	Tags           []string
	Args           map[string]any
	Parameters     map[string]any
	Decorators     []Decorator
	Render         Fn
	IncludeStories []string
	ExcludeStories []string
}

// Story is a named story export.
type Story struct {
	Name       string
	Args       map[string]any
	Parameters map[string]any
	Tags       []string
	Decorators []Decorator
	Render     Fn
}

// Context is what a render function sees for the story being rendered.
type Context struct {
	ID         ID
	Title      string
	Name       string
	Args       map[string]any
	Parameters map[string]any
	Globals    map[string]any
	Tags       []string
}

// Fn renders a story into a framework-specific value.
type Fn func(ctx context.Context, sc Context) (any, error)

// Decorator wraps the rendering of a story.
type Decorator func(ctx context.Context, next Fn, sc Context) (any, error)

// DecorateStory composes decorators around fn. Later decorators wrap earlier ones.
type DecorateStory func(fn Fn, decorators []Decorator) Fn

// RenderContext is handed to the render backend for one render pass.
type RenderContext struct {
	Story        Context
	ImportPath   ModuleID
	StoryFn      Fn
	ForceRemount bool
}

// RenderToCanvas paints one story. It is supplied by the host.
type RenderToCanvas func(ctx context.Context, rc RenderContext) error

// ImportFn resolves a module id to its current exports.
type ImportFn func(ctx context.Context, path ModuleID) (Exports, error)

// Annotation is the normalized description of a single story.
type Annotation struct {
	ID         ID
	ExportName string
	Name       string
	Title      string
	ImportPath ModuleID
	Args       map[string]any
	Parameters map[string]any
	Tags       []string
	Decorators []Decorator
	Render     Fn
}

// ModuleAnnotations groups the stories derived from one module.
type ModuleAnnotations struct {
	ID      ModuleID
	Title   string
	Meta    Meta
	Stories []Annotation
}

// Processor converts a module's exports into story annotations. It must be
// a pure function of its inputs.
type Processor func(id ModuleID, exports Exports) (ModuleAnnotations, error)

// ProjectAnnotations is the merged project-wide configuration used to render
// any story.
type ProjectAnnotations struct {
	Parameters      map[string]any
	Decorators      []Decorator
	Stories         map[ID]Annotation
	Render          Fn
	RenderToCanvas  RenderToCanvas
	ApplyDecorators DecorateStory
}
