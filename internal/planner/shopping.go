package planner

// QuantityAsNeeded is the quantity label of every shopping item.
const QuantityAsNeeded = "As needed"

// ShoppingItem is one distinct ingredient of a plan.
type ShoppingItem struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	UsedIn   []string `json:"used_in"`
}

// ShoppingList aggregates the ingredients of every planned dinner.
type ShoppingList struct {
	Items      []ShoppingItem `json:"items"`
	TotalItems int            `json:"total_items"`
}

// shoppingAggregator keys ingredients by their raw text, compared exactly.
// The display text of a key is overwritten on every add, so the last
// occurrence wins. Items are emitted in the order keys were first seen.
type shoppingAggregator struct {
	order   []string
	display map[string]string
	usedIn  map[string][]string
}

func newShoppingAggregator() *shoppingAggregator {
	return &shoppingAggregator{
		display: map[string]string{},
		usedIn:  map[string][]string{},
	}
}

func (a *shoppingAggregator) add(raw, display, recipe string) {
	if _, seen := a.display[raw]; !seen {
		a.order = append(a.order, raw)
	}
	a.display[raw] = display
	a.usedIn[raw] = append(a.usedIn[raw], recipe)
}

func (a *shoppingAggregator) toShoppingList() ShoppingList {
	items := make([]ShoppingItem, 0, len(a.order))
	for _, raw := range a.order {
		items = append(items, ShoppingItem{
			Name:     a.display[raw],
			Quantity: QuantityAsNeeded,
			UsedIn:   append([]string(nil), a.usedIn[raw]...),
		})
	}
	return ShoppingList{Items: items, TotalItems: len(items)}
}
