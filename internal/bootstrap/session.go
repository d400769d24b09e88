// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package bootstrap

import (
	"sync"

	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/preview"
	"github.com/specialistvlad/previewgo/internal/registry"
)

// Features are switches fixed for the lifetime of a session.
type Features struct {
	// StoryStoreV7 retires the whole client API: every Client method fails
	// with a *RemovedAPIError.
	StoryStoreV7 bool
}

// Session holds the singletons shared by every Start call of one execution
// session. Each slot is filled at most once.
type Session struct {
	Features Features

	mu       sync.Mutex
	channel  channel.Channel
	registry *registry.Registry
	preview  *preview.Preview
}

// NewSession creates an empty session.
func NewSession(features Features) *Session {
	return &Session{Features: features}
}

// SetChannel installs ch when the channel slot is empty. It reports whether
// ch was installed.
func (s *Session) SetChannel(ch channel.Channel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != nil {
		return false
	}
	s.channel = ch
	return true
}

// SetRegistry installs reg when the registry slot is empty, so a host can
// register addons before the first Start. It reports whether reg was
// installed.
func (s *Session) SetRegistry(reg *registry.Registry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry != nil {
		return false
	}
	s.registry = reg
	return true
}

// Channel returns the shared channel, or nil before one exists.
func (s *Session) Channel() channel.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// Registry returns the shared registry, or nil before one exists.
func (s *Session) Registry() *registry.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry
}

// Preview returns the shared preview, or nil before one exists.
func (s *Session) Preview() *preview.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

func (s *Session) channelOrCreate(create func() channel.Channel) channel.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == nil {
		s.channel = create()
	}
	return s.channel
}

func (s *Session) registryOrCreate(create func() *registry.Registry) *registry.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		s.registry = create()
	}
	return s.registry
}

func (s *Session) previewOrCreate(create func() *preview.Preview) *preview.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		s.preview = create()
	}
	return s.preview
}
