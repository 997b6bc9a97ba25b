package douban

import (
	"context"
	"fmt"

	"github.com/briangreenhill/almanac/pipeline"
	"github.com/briangreenhill/almanac/plugins"
	"github.com/briangreenhill/almanac/render"
)

// Plugin implements the plugins.Plugin interface for Douban weekly rankings
type Plugin struct {
	pipeline *pipeline.Pipeline[Item]
}

// NewPlugin creates a new Douban plugin instance
func NewPlugin(p *pipeline.Pipeline[Item]) *Plugin {
	return &Plugin{pipeline: p}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return "douban"
}

// GetLatest renders the default category
func (p *Plugin) GetLatest(ctx context.Context, enc render.Encoding) (render.Output, error) {
	return p.Get(ctx, DefaultCategory, enc)
}

// Get renders the ranking for a category
func (p *Plugin) Get(ctx context.Context, category string, enc render.Encoding) (render.Output, error) {
	res, err := p.pipeline.Get(ctx, category)
	if err != nil {
		return render.Output{}, fmt.Errorf("douban weekly: %w", err)
	}
	cat, err := LookupCategory(res.Key)
	if err != nil {
		return render.Output{}, err
	}
	return render.Render(Page{Category: cat, Items: res.Items}, enc)
}

// Refresh re-fetches a category
func (p *Plugin) Refresh(ctx context.Context, category string) error {
	if _, err := p.pipeline.Refresh(ctx, category); err != nil {
		return fmt.Errorf("refresh douban weekly: %w", err)
	}
	return nil
}

// Ensure Plugin implements the plugins.Plugin interface
var _ plugins.Plugin = (*Plugin)(nil)
