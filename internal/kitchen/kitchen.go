// Package kitchen is the entry point request handlers use to reach the
// planner and the renderers over a single catalog.
package kitchen

import (
	"fmt"

	"github.com/hisgarden/mcp-server-meal-prep/internal/catalog"
	"github.com/hisgarden/mcp-server-meal-prep/internal/markdown"
	"github.com/hisgarden/mcp-server-meal-prep/internal/planner"
)

// Kitchen answers cuisine, plan and overlap queries over one catalog.
type Kitchen struct {
	catalog *catalog.Catalog
}

// New returns a Kitchen backed by c.
func New(c *catalog.Catalog) *Kitchen {
	return &Kitchen{catalog: c}
}

// Cuisines lists the available cuisine names in lexical order.
func (k *Kitchen) Cuisines() []string { return k.catalog.Cuisines() }

// HasCuisine reports whether the catalog knows the cuisine.
func (k *Kitchen) HasCuisine(cuisine string) bool { return k.catalog.Has(cuisine) }

// GenerateMealPlan builds a plan of days dinners scaled to servings.
func (k *Kitchen) GenerateMealPlan(cuisine string, days, servings int) (*planner.MealPlan, error) {
	return planner.Generate(k.catalog, cuisine, days, servings)
}

// RenderRecipesMarkdown renders every recipe of the cuisine as markdown.
func (k *Kitchen) RenderRecipesMarkdown(cuisine string) string {
	return markdown.RenderRecipeList(k.catalog, cuisine)
}

// RenderMealPlanMarkdown renders a generated plan as markdown.
func (k *Kitchen) RenderMealPlanMarkdown(plan *planner.MealPlan) string {
	return markdown.RenderPlan(plan)
}

// AnalyzeIngredientOverlap reports ingredients shared by two or more recipes
// of the cuisine.
func (k *Kitchen) AnalyzeIngredientOverlap(cuisine string) (string, error) {
	recipes, ok := k.catalog.Lookup(cuisine)
	if !ok {
		return "", fmt.Errorf("%w: %s", planner.ErrUnknownCuisine, cuisine)
	}
	return markdown.RenderOverlap(cuisine, planner.AnalyzeOverlap(recipes)), nil
}
