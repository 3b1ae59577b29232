package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed recipes.yaml
var embeddedRecipes []byte

// ErrInvalidCatalog is returned when a catalog document fails validation.
var ErrInvalidCatalog = errors.New("invalid recipe catalog")

// Recipe is a single dish. Ingredient and instruction order is display order.
type Recipe struct {
	Name         string   `yaml:"name" json:"name"`
	Category     string   `yaml:"category" json:"category"`
	Ingredients  []string `yaml:"ingredients" json:"ingredients"`
	Instructions []string `yaml:"instructions" json:"instructions"`
}

// Catalog maps a cuisine name to its ordered recipe list.
// A Catalog is immutable once built and safe for concurrent readers.
type Catalog struct {
	cuisines map[string][]Recipe
	names    []string
}

type document struct {
	Cuisines []struct {
		Name    string   `yaml:"name"`
		Recipes []Recipe `yaml:"recipes"`
	} `yaml:"cuisines"`
}

// New builds a catalog from an in-memory mapping. The input is copied.
func New(cuisines map[string][]Recipe) (*Catalog, error) {
	c := &Catalog{cuisines: make(map[string][]Recipe, len(cuisines))}
	for name, recipes := range cuisines {
		if err := validateCuisine(name, recipes); err != nil {
			return nil, err
		}
		c.cuisines[name] = cloneRecipes(recipes)
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	m := make(map[string][]Recipe, len(doc.Cuisines))
	for _, cu := range doc.Cuisines {
		if _, dup := m[cu.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate cuisine %q", ErrInvalidCatalog, cu.Name)
		}
		m[cu.Name] = cu.Recipes
	}
	return New(m)
}

// LoadFile reads and parses a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. It is decoded once per process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedRecipes)
		if err != nil {
			panic(fmt.Sprintf("embedded recipe catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup returns the recipes of a cuisine. Names are case-sensitive.
func (c *Catalog) Lookup(cuisine string) ([]Recipe, bool) {
	recipes, ok := c.cuisines[cuisine]
	if !ok {
		return nil, false
	}
	return slices.Clone(recipes), true
}

// Has reports whether the cuisine exists.
func (c *Catalog) Has(cuisine string) bool {
	_, ok := c.cuisines[cuisine]
	return ok
}

// Cuisines returns the cuisine names in lexical order.
func (c *Catalog) Cuisines() []string {
	return slices.Clone(c.names)
}

func validateCuisine(name string, recipes []Recipe) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty cuisine name", ErrInvalidCatalog)
	}
	if len(recipes) == 0 {
		return fmt.Errorf("%w: cuisine %q has no recipes", ErrInvalidCatalog, name)
	}
	for i, r := range recipes {
		switch {
		case strings.TrimSpace(r.Name) == "":
			return fmt.Errorf("%w: cuisine %q recipe #%d has no name", ErrInvalidCatalog, name, i+1)
		case len(r.Ingredients) == 0:
			return fmt.Errorf("%w: recipe %q has no ingredients", ErrInvalidCatalog, r.Name)
		case len(r.Instructions) == 0:
			return fmt.Errorf("%w: recipe %q has no instructions", ErrInvalidCatalog, r.Name)
		}
	}
	return nil
}

func cloneRecipes(in []Recipe) []Recipe {
	out := make([]Recipe, len(in))
	for i, r := range in {
		out[i] = Recipe{
			Name:         r.Name,
			Category:     r.Category,
			Ingredients:  slices.Clone(r.Ingredients),
			Instructions: slices.Clone(r.Instructions),
		}
	}
	return out
}
