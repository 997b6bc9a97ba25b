package douban

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/briangreenhill/almanac/pipeline"
)

// DefaultCategory is served when no category is given.
const DefaultCategory = "movie"

// Category is one weekly ranking collection.
type Category struct {
	Name       string `yaml:"category"`
	Collection string `yaml:"collection"`
	Title      string `yaml:"title"`
	Emoji      string `yaml:"emoji"`
}

//go:embed categories.yaml
var categoriesYAML []byte

var categories = mustLoadCategories(categoriesYAML)

func mustLoadCategories(data []byte) []Category {
	cats, err := parseCategories(data)
	if err != nil {
		panic(err)
	}
	return cats
}

func parseCategories(data []byte) ([]Category, error) {
	var cats []Category
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parsing categories: %w", err)
	}
	seen := make(map[string]bool, len(cats))
	for i, c := range cats {
		if c.Name == "" || c.Collection == "" {
			return nil, fmt.Errorf("category %d: name and collection are required", i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("category %q defined twice", c.Name)
		}
		seen[c.Name] = true
	}
	return cats, nil
}

// Categories returns the closed set of categories in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory resolves a category name; empty selects DefaultCategory.
func LookupCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultCategory
	}
	for _, c := range categories {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("category %q: %w", name, pipeline.ErrInvalidParam)
}
