// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package builder

import (
	"github.com/specialistvlad/ambigrid/internal/graph"
	"github.com/specialistvlad/ambigrid/internal/resolve"
)

// Builder runs build sessions. A Builder holds no session state and can be
// reused; every Build starts from a fresh registry and index.
type Builder struct {
	hook   resolve.Hook
	export graph.Options
}

// Option configures a Builder.
type Option func(*Builder)

// WithHook installs a hook consulted for properties the model leaves unset.
func WithHook(h resolve.Hook) Option {
	return func(b *Builder) { b.hook = h }
}

// WithExportOptions sets how the graph is exported.
func WithExportOptions(opts graph.Options) Option {
	return func(b *Builder) { b.export = opts }
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) engine() *resolve.Engine {
	var opts []resolve.Option
	if b.hook != nil {
		opts = append(opts, resolve.WithHook(b.hook))
	}
	return resolve.New(opts...)
}
