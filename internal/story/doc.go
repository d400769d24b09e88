// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package story defines the in-memory model shared by every part of the
// preview runtime: story-producing modules and their export maps, the story
// annotations derived from them, the story index, and the function types used
// to render and decorate a story.
//
// # Core Concepts
//
//   - Module: a story-producing source, identified by a ModuleID. Its current
//     Exports map names to values. The "default" export carries the Meta; the
//     other exports describe stories.
//
//   - Annotation: the normalized description of one story (id, title, name,
//     args, parameters, decorators). ProcessModule derives them from Exports.
//
//   - Index: the flat catalogue of known stories used by the preview to decide
//     what can be rendered.
//
//   - ProjectAnnotations: the project-wide configuration (global parameters,
//     decorators, render functions) merged with every module's annotations.
//
// The package is pure: no I/O, no logging, no shared state. Loading modules,
// registering them and rendering them belong to other packages.
package story
