// Package plugins defines the common interface for content sources
package plugins

import (
	"context"
	"sort"

	"github.com/briangreenhill/almanac/render"
)

// Plugin defines the minimal interface that all content sources must implement
type Plugin interface {
	// Name returns the name of the plugin (e.g., "history", "douban")
	Name() string

	// GetLatest renders the source's default view (today, the default category)
	GetLatest(ctx context.Context, enc render.Encoding) (render.Output, error)

	// Get renders the view selected by param (a date, a category)
	Get(ctx context.Context, param string, enc render.Encoding) (render.Output, error)

	// Refresh re-fetches param from upstream and overwrites the cached copy
	Refresh(ctx context.Context, param string) error
}

// Registry manages available content sources
type Registry struct {
	plugins map[string]Plugin
}

// NewRegistry creates a new plugin registry
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
	}
}

// Register adds a plugin to the registry
func (r *Registry) Register(plugin Plugin) {
	r.plugins[plugin.Name()] = plugin
}

// GetPlugin retrieves a plugin by name
func (r *Registry) GetPlugin(name string) (Plugin, bool) {
	plugin, exists := r.plugins[name]
	return plugin, exists
}

// List returns all registered plugin names in sorted order
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
