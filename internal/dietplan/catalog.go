package dietplan

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed foods.yaml
var defaultFoodsYAML []byte

var defaultCatalog = mustLoadCatalog(defaultFoodsYAML)

// Catalog is the read-only food reference table. It is never mutated after
// loading and may be shared between goroutines.
type Catalog struct {
	foods []FoodItem
	index map[string]int
}

// DefaultCatalog returns the table embedded in the binary.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

func LoadCatalog(data []byte) (*Catalog, error) {
	var foods []FoodItem
	if err := yaml.Unmarshal(data, &foods); err != nil {
		return nil, fmt.Errorf("parsing food table: %w", err)
	}
	return NewCatalog(foods)
}

func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading food table: %w", err)
	}
	return LoadCatalog(data)
}

// NewCatalog validates foods and builds a catalog preserving declaration order.
func NewCatalog(foods []FoodItem) (*Catalog, error) {
	if len(foods) == 0 {
		return nil, configurationErrorf("no foods declared")
	}

	catalog := &Catalog{
		foods: make([]FoodItem, 0, len(foods)),
		index: make(map[string]int, len(foods)),
	}
	present := make(map[Category]bool)

	for position, food := range foods {
		food.ID = strings.TrimSpace(food.ID)
		if food.ID == "" {
			return nil, configurationErrorf("food at position %d has no id", position)
		}
		if _, exists := catalog.index[food.ID]; exists {
			return nil, configurationErrorf("duplicate food id %q", food.ID)
		}
		if !validCategory(food.Category) {
			return nil, configurationErrorf("food %q has unknown category %q", food.ID, food.Category)
		}
		if food.ProteinG < 0 || food.CarbsG < 0 || food.FatG < 0 || food.Kcal < 0 {
			return nil, configurationErrorf("food %q has a negative density", food.ID)
		}
		if food.Name == "" {
			food.Name = food.ID
		}

		food.Tags = append([]string(nil), food.Tags...)
		food.Allergens = append([]Restriction(nil), food.Allergens...)

		catalog.index[food.ID] = len(catalog.foods)
		catalog.foods = append(catalog.foods, food)
		present[food.Category] = true
	}

	for _, category := range []Category{CategoryProtein, CategoryCarb, CategoryFat} {
		if !present[category] {
			return nil, configurationErrorf("no food in mandatory category %q", category)
		}
	}

	return catalog, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	catalog, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return catalog
}

func validCategory(category Category) bool {
	switch category {
	case CategoryProtein, CategoryCarb, CategoryFat, CategoryVeg, CategoryFruit, CategoryOther:
		return true
	}
	return false
}

// Food looks a food up by id.
func (catalog *Catalog) Food(id string) (FoodItem, bool) {
	position, ok := catalog.index[id]
	if !ok {
		return FoodItem{}, false
	}
	return catalog.foods[position], true
}

// Foods returns a copy of the table in declaration order.
func (catalog *Catalog) Foods() []FoodItem {
	return append([]FoodItem(nil), catalog.foods...)
}

// InCategory returns the ids of every food in category, in declaration order.
func (catalog *Catalog) InCategory(category Category) []string {
	var ids []string
	for _, food := range catalog.foods {
		if food.Category == category {
			ids = append(ids, food.ID)
		}
	}
	return ids
}

func (catalog *Catalog) order(id string) int {
	if position, ok := catalog.index[id]; ok {
		return position
	}
	return len(catalog.foods)
}
