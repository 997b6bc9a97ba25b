package plugins

import (
	"context"
	"testing"

	"github.com/briangreenhill/almanac/render"
)

// mockPlugin is a test implementation of the Plugin interface
type mockPlugin struct {
	name      string
	refreshed []string
}

func (m *mockPlugin) Name() string {
	return m.name
}

func (m *mockPlugin) GetLatest(ctx context.Context, enc render.Encoding) (render.Output, error) {
	return render.Output{Body: []byte("latest from " + m.name)}, nil
}

func (m *mockPlugin) Get(ctx context.Context, param string, enc render.Encoding) (render.Output, error) {
	return render.Output{Body: []byte(param + " from " + m.name)}, nil
}

func (m *mockPlugin) Refresh(ctx context.Context, param string) error {
	m.refreshed = append(m.refreshed, param)
	return nil
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry should not return nil")
	}

	plugins := registry.List()
	if len(plugins) != 0 {
		t.Errorf("New registry should be empty, got %d plugins: %v", len(plugins), plugins)
	}
}

func TestRegisterAndGetPlugin(t *testing.T) {
	registry := NewRegistry()

	registry.Register(&mockPlugin{name: "history"})
	registry.Register(&mockPlugin{name: "douban"})

	plugins := registry.List()
	if len(plugins) != 2 {
		t.Fatalf("Expected 2 plugins, got %d: %v", len(plugins), plugins)
	}
	if plugins[0] != "douban" || plugins[1] != "history" {
		t.Errorf("Expected sorted names [douban history], got %v", plugins)
	}

	plugin, exists := registry.GetPlugin("history")
	if !exists {
		t.Fatal("history plugin should exist")
	}
	if plugin.Name() != "history" {
		t.Errorf("Expected plugin name 'history', got '%s'", plugin.Name())
	}

	_, exists = registry.GetPlugin("nonexistent")
	if exists {
		t.Error("Non-existent plugin should not exist")
	}
}

func TestPluginInterface(t *testing.T) {
	plugin := &mockPlugin{name: "test"}
	ctx := context.Background()

	out, err := plugin.GetLatest(ctx, render.Plain)
	if err != nil {
		t.Errorf("GetLatest should not return error: %v", err)
	}
	if out.String() != "latest from test" {
		t.Errorf("Expected 'latest from test', got '%s'", out.String())
	}

	out, err = plugin.Get(ctx, "3-14", render.Plain)
	if err != nil {
		t.Errorf("Get should not return error: %v", err)
	}
	if out.String() != "3-14 from test" {
		t.Errorf("Expected '3-14 from test', got '%s'", out.String())
	}

	if err := plugin.Refresh(ctx, "movie"); err != nil {
		t.Errorf("Refresh should not return error: %v", err)
	}
	if len(plugin.refreshed) != 1 || plugin.refreshed[0] != "movie" {
		t.Errorf("Expected refresh of movie, got %v", plugin.refreshed)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	registry := NewRegistry()

	plugin1 := &mockPlugin{name: "test"}
	registry.Register(plugin1)

	plugin2 := &mockPlugin{name: "test"}
	registry.Register(plugin2)

	plugins := registry.List()
	if len(plugins) != 1 {
		t.Errorf("Expected 1 plugin after overwrite, got %d", len(plugins))
	}

	plugin, exists := registry.GetPlugin("test")
	if !exists {
		t.Error("Plugin should exist")
	}
	if plugin != plugin2 {
		t.Error("Should get the second registered plugin")
	}
}
