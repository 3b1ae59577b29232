package planner

import (
	"errors"
	"fmt"

	"github.com/hisgarden/mcp-server-meal-prep/internal/catalog"
)

const (
	// DefaultDays is the plan length used when a caller does not pick one.
	DefaultDays = 7
	// DefaultServings is the portion count used when a caller does not pick one.
	DefaultServings = 4

	breakfastPlaceholder = "Fresh fruit and yogurt"
	lunchPlaceholder     = "Light salad or soup"
)

var weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var (
	// ErrUnknownCuisine is returned when the source has no such cuisine.
	ErrUnknownCuisine = errors.New("unknown cuisine")
	// ErrEmptyCuisine is returned when a cuisine exists but lists no recipes.
	ErrEmptyCuisine = errors.New("cuisine has no recipes")
	// ErrInvalidDays is returned for a plan length below one.
	ErrInvalidDays = errors.New("days must be at least 1")
	// ErrInvalidServings is returned for a portion count below one.
	ErrInvalidServings = errors.New("servings must be at least 1")
)

// RecipeSource is the read side of a recipe catalog.
type RecipeSource interface {
	Lookup(cuisine string) ([]catalog.Recipe, bool)
}

// DayPlan is the schedule for one day. Breakfast and Lunch are empty when
// that meal is not planned.
type DayPlan struct {
	Day       string `json:"day"`
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`
	Dinner    string `json:"dinner"`
}

// MealPlan is a generated plan with its shopping list.
type MealPlan struct {
	Cuisine         string       `json:"cuisine"`
	Days            []DayPlan    `json:"days"`
	ShoppingList    ShoppingList `json:"shopping_list"`
	PreparationTips []string     `json:"preparation_tips"`
}

// Generate builds a plan by rotating through the cuisine's recipes, one
// dinner per day. Recipes repeat when there are fewer recipes than days.
func Generate(src RecipeSource, cuisine string, days, servings int) (*MealPlan, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	if servings < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidServings, servings)
	}
	recipes, ok := src.Lookup(cuisine)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCuisine, cuisine)
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCuisine, cuisine)
	}

	agg := newShoppingAggregator()
	plans := make([]DayPlan, 0, days)
	for i := 0; i < days; i++ {
		dinner := recipes[i%len(recipes)]
		for _, ingredient := range dinner.Ingredients {
			agg.add(ingredient, scaleIngredient(ingredient, servings), dinner.Name)
		}

		day := DayPlan{Day: weekdays[i%len(weekdays)], Dinner: dinner.Name}
		if i%3 == 0 {
			day.Breakfast = breakfastPlaceholder
		}
		if i%2 == 0 {
			day.Lunch = lunchPlaceholder
		}
		plans = append(plans, day)
	}

	return &MealPlan{
		Cuisine:         cuisine,
		Days:            plans,
		ShoppingList:    agg.toShoppingList(),
		PreparationTips: preparationTips(cuisine),
	}, nil
}

func scaleIngredient(ingredient string, servings int) string {
	if servings > 1 {
		return fmt.Sprintf("%s (serves %d)", ingredient, servings)
	}
	return ingredient
}

func preparationTips(cuisine string) []string {
	return []string{
		fmt.Sprintf("Prep ingredients for %s cuisine in advance", cuisine),
		"Marinate proteins the night before for better flavor",
		"Chop vegetables in batches to save time",
		"Cook grains and legumes in larger quantities for multiple meals",
		"Store fresh herbs in water to keep them fresh longer",
	}
}
