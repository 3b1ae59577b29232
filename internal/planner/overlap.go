package planner

import (
	"sort"

	"github.com/hisgarden/mcp-server-meal-prep/internal/catalog"
)

// SharedIngredient is an ingredient used by more than one recipe.
type SharedIngredient struct {
	Ingredient string `json:"ingredient"`
	Count      int    `json:"count"`
}

// AnalyzeOverlap counts raw ingredient strings across recipes and returns the
// ones used more than once, most used first. Equal counts keep the order in
// which the ingredient first appeared.
func AnalyzeOverlap(recipes []catalog.Recipe) []SharedIngredient {
	counts := map[string]int{}
	var order []string
	for _, r := range recipes {
		for _, ingredient := range r.Ingredients {
			if counts[ingredient] == 0 {
				order = append(order, ingredient)
			}
			counts[ingredient]++
		}
	}

	shared := make([]SharedIngredient, 0)
	for _, ingredient := range order {
		if n := counts[ingredient]; n > 1 {
			shared = append(shared, SharedIngredient{Ingredient: ingredient, Count: n})
		}
	}
	sort.SliceStable(shared, func(i, j int) bool { return shared[i].Count > shared[j].Count })
	return shared
}
