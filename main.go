package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	goflags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/almanac/douban"
	"github.com/briangreenhill/almanac/internal/app"
	"github.com/briangreenhill/almanac/internal/config"
	"github.com/briangreenhill/almanac/plugins"
	"github.com/briangreenhill/almanac/render"
)

var version = "dev"

func main() {
	if err := RunWithArgs(version, os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Encoding   string        `long:"encoding" short:"e" description:"Output encoding: text | markdown | json" default:"text"`
	Timeout    time.Duration `long:"timeout" description:"Upstream request timeout" default:"10s"`
	HistoryURL string        `long:"history-url" description:"Override the history feed base URL"`
	DoubanURL  string        `long:"douban-url" description:"Override the Douban API base URL"`
	Verbose    bool          `long:"verbose" short:"v" description:"Log fetches to stderr"`
	Version    bool          `long:"version" description:"Show version and exit"`
}

// HistoryCommand prints the events recorded for a calendar day.
type HistoryCommand struct {
	Date string `long:"date" short:"d" description:"Day to show (YYYY-MM-DD, MM-DD, MMDD); defaults to today in UTC+8"`

	globals *GlobalFlags
	out     io.Writer
}

// DoubanCommand prints a Douban weekly ranking.
type DoubanCommand struct {
	Category string `long:"category" short:"c" description:"Ranking category" default:"movie"`
	List     bool   `long:"list" description:"List the available categories"`

	globals *GlobalFlags
	out     io.Writer
}

func buildParser(out io.Writer) (*goflags.Parser, *GlobalFlags) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "almanac"
	parser.LongDescription = "Today in history and Douban weekly rankings, rendered as text, markdown or JSON."

	parser.AddCommand("history", "Show today in history", "Show the events recorded for a calendar day.",
		&HistoryCommand{globals: &globals, out: out})
	parser.AddCommand("douban", "Show a Douban weekly ranking", "Show one of the Douban weekly rankings.",
		&DoubanCommand{globals: &globals, out: out})

	return parser, &globals
}

// RunWithArgs parses args and executes the matched subcommand, writing
// rendered output to out.
func RunWithArgs(version string, args []string, out io.Writer) error {
	// --version is valid without a subcommand.
	for _, arg := range args {
		if arg == "--version" {
			fmt.Fprintf(out, "almanac %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _ := buildParser(out)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}

func (c *HistoryCommand) Execute(args []string) error {
	return runWithPlugin(c.globals, c.out, "history", c.Date)
}

func (c *DoubanCommand) Execute(args []string) error {
	if c.List {
		for _, cat := range douban.Categories() {
			fmt.Fprintf(c.out, "%-13s %s %s\n", cat.Name, cat.Emoji, cat.Title)
		}
		return nil
	}
	return runWithPlugin(c.globals, c.out, "douban", c.Category)
}

// setupPluginRegistry creates the sources with flag overrides applied
// on top of the environment configuration.
func setupPluginRegistry(g *GlobalFlags) (*plugins.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.UpstreamTimeout = g.Timeout
	if g.HistoryURL != "" {
		cfg.History.BaseURL = g.HistoryURL
	}
	if g.DoubanURL != "" {
		cfg.Douban.BaseURL = g.DoubanURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg, nil).Registry, nil
}

// runWithPlugin fetches through the named plugin and prints the result
func runWithPlugin(g *GlobalFlags, out io.Writer, pluginName, param string) error {
	level := zerolog.WarnLevel
	if g.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	registry, err := setupPluginRegistry(g)
	if err != nil {
		return err
	}
	plugin, ok := registry.GetPlugin(pluginName)
	if !ok {
		return fmt.Errorf("plugin '%s' not found. Available plugins: %v", pluginName, registry.List())
	}

	ctx := logger.WithContext(context.Background())
	output, err := plugin.Get(ctx, param, render.ParseEncoding(g.Encoding))
	if err != nil {
		return fmt.Errorf("%s: %w", pluginName, err)
	}

	body := output.String()
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	_, err = io.WriteString(out, body)
	return err
}
