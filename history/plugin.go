package history

import (
	"context"
	"fmt"

	"github.com/briangreenhill/almanac/pipeline"
	"github.com/briangreenhill/almanac/plugins"
	"github.com/briangreenhill/almanac/render"
)

// Plugin implements the plugins.Plugin interface for "today in history"
type Plugin struct {
	pipeline *pipeline.Pipeline[Event]
}

// NewPlugin creates a new history plugin instance
func NewPlugin(p *pipeline.Pipeline[Event]) *Plugin {
	return &Plugin{pipeline: p}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return "history"
}

// GetLatest renders today's events in the reference timezone
func (p *Plugin) GetLatest(ctx context.Context, enc render.Encoding) (render.Output, error) {
	return p.Get(ctx, "", enc)
}

// Get renders the events for the given date
func (p *Plugin) Get(ctx context.Context, date string, enc render.Encoding) (render.Output, error) {
	res, err := p.pipeline.Get(ctx, date)
	if err != nil {
		return render.Output{}, fmt.Errorf("today in history: %w", err)
	}
	return render.Render(Page{Date: res.Key, Events: res.Items}, enc)
}

// Refresh re-fetches the given date
func (p *Plugin) Refresh(ctx context.Context, date string) error {
	if _, err := p.pipeline.Refresh(ctx, date); err != nil {
		return fmt.Errorf("refresh today in history: %w", err)
	}
	return nil
}

// Ensure Plugin implements the plugins.Plugin interface
var _ plugins.Plugin = (*Plugin)(nil)
