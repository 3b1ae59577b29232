// Package markdown renders recipes, meal plans and overlap reports as
// markdown text. Every function is pure.
package markdown

import (
	"fmt"
	"strings"

	"github.com/hisgarden/mcp-server-meal-prep/internal/catalog"
	"github.com/hisgarden/mcp-server-meal-prep/internal/planner"
)

// RecipeLookup finds the recipes of a cuisine.
type RecipeLookup interface {
	Lookup(cuisine string) ([]catalog.Recipe, bool)
}

// RenderPlan renders a meal plan: schedule, shopping list and tips.
func RenderPlan(plan *planner.MealPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly Meal Plan - %s Cuisine\n\n", plan.Cuisine)

	b.WriteString("## Daily Meal Schedule\n\n")
	for _, day := range plan.Days {
		fmt.Fprintf(&b, "### %s\n", day.Day)
		if day.Breakfast != "" {
			fmt.Fprintf(&b, "- **Breakfast:** %s\n", day.Breakfast)
		}
		if day.Lunch != "" {
			fmt.Fprintf(&b, "- **Lunch:** %s\n", day.Lunch)
		}
		fmt.Fprintf(&b, "- **Dinner:** %s\n\n", day.Dinner)
	}

	b.WriteString("## Shopping List\n\n")
	fmt.Fprintf(&b, "**Total Items:** %d\n\n", plan.ShoppingList.TotalItems)
	for _, item := range plan.ShoppingList.Items {
		fmt.Fprintf(&b, "- **%s**", item.Name)
		if len(item.UsedIn) > 0 {
			fmt.Fprintf(&b, " (used in: %s)", strings.Join(item.UsedIn, ", "))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n## Preparation Tips\n\n")
	for i, tip := range plan.PreparationTips {
		fmt.Fprintf(&b, "%d. %s\n", i+1, tip)
	}
	return b.String()
}

// RenderRecipeList renders every recipe of a cuisine in catalog order. An
// unknown cuisine is not an error; it renders a fixed notice.
func RenderRecipeList(src RecipeLookup, cuisine string) string {
	recipes, ok := src.Lookup(cuisine)
	if !ok {
		return fmt.Sprintf("No recipes found for %s", cuisine)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Recipes\n\n", cuisine)
	for _, r := range recipes {
		fmt.Fprintf(&b, "## %s\n", r.Name)
		fmt.Fprintf(&b, "**Type:** %s\n\n", r.Category)
		b.WriteString("**Ingredients:**\n")
		for _, ingredient := range r.Ingredients {
			fmt.Fprintf(&b, "- %s\n", ingredient)
		}
		b.WriteString("\n**Recipe:**\n")
		for i, step := range r.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderOverlap renders the shared ingredients of a cuisine.
func RenderOverlap(cuisine string, shared []planner.SharedIngredient) string {
	if len(shared) == 0 {
		return fmt.Sprintf("No overlapping ingredients found in %s cuisine recipes.", cuisine)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Common ingredients in %s cuisine:\n\n", cuisine)
	for _, s := range shared {
		fmt.Fprintf(&b, "- %s (used in %d recipes)\n", s.Ingredient, s.Count)
	}
	return b.String()
}
