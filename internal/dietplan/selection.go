package dietplan

import "sort"

// selector applies one user's preferences to a catalog. pickFood and the
// options listing share it so they always agree on what is allowed.
type selector struct {
	catalog    *Catalog
	restricted map[Restriction]bool
	diet       DietPreference
	likes      map[string]bool
	dislikes   map[string]bool
}

func newSelector(catalog *Catalog, preferences DietPreferences) *selector {
	restricted := make(map[Restriction]bool, len(preferences.Restrictions))
	for _, restriction := range preferences.Restrictions {
		restricted[restriction] = true
	}
	return &selector{
		catalog:    catalog,
		restricted: restricted,
		diet:       preferences.DietPreference,
		likes:      tagSet(preferences.FoodsLike),
		dislikes:   tagSet(preferences.FoodsDislike),
	}
}

func (s *selector) allowed(food FoodItem) bool {
	for _, allergen := range food.Allergens {
		if s.restricted[allergen] {
			return false
		}
	}

	switch s.diet {
	case DietVegan:
		if food.IsAnimalProduct {
			return false
		}
	case DietVegetarian:
		if food.IsMeat || food.IsFish {
			return false
		}
	case DietPescetarian:
		if food.IsMeat {
			return false
		}
	}

	for _, tag := range food.Tags {
		if s.dislikes[NormalizeTag(tag)] {
			return false
		}
	}
	return true
}

func (s *selector) score(food FoodItem) int {
	score := 0
	for _, tag := range NormalizeTags(food.Tags) {
		if s.likes[tag] {
			score++
		}
	}
	return score
}

// rank returns the allowed foods among ids, best first: score descending, then
// name, then table order.
func (s *selector) rank(ids []string) []FoodItem {
	var foods []FoodItem
	scores := make(map[string]int, len(ids))
	for _, id := range ids {
		food, ok := s.catalog.Food(id)
		if !ok || !s.allowed(food) {
			continue
		}
		if _, duplicate := scores[id]; duplicate {
			continue
		}
		scores[id] = s.score(food)
		foods = append(foods, food)
	}

	sort.SliceStable(foods, func(i, j int) bool {
		left, right := foods[i], foods[j]
		if scores[left.ID] != scores[right.ID] {
			return scores[left.ID] > scores[right.ID]
		}
		if left.Name != right.Name {
			return left.Name < right.Name
		}
		return s.catalog.order(left.ID) < s.catalog.order(right.ID)
	})
	return foods
}

// pick chooses the best allowed candidate. When no candidate is allowed it falls
// back to the first allowed food of the candidates' category, then to the first
// allowed food of the whole table. The category step comes first so a banned
// protein is swapped for another protein rather than for whatever food leads
// the table; a whole-table-only fallback would give a different food here.
func (s *selector) pick(candidates []string) (FoodItem, error) {
	if ranked := s.rank(candidates); len(ranked) > 0 {
		return ranked[0], nil
	}

	if len(candidates) > 0 {
		if first, ok := s.catalog.Food(candidates[0]); ok {
			if food, ok := s.firstAllowed(func(food FoodItem) bool { return food.Category == first.Category }); ok {
				return food, nil
			}
		}
	}

	if food, ok := s.firstAllowed(func(FoodItem) bool { return true }); ok {
		return food, nil
	}
	return FoodItem{}, configurationErrorf("no food in the table is allowed for these preferences")
}

// prefer returns primary when it is allowed and otherwise picks among fallback.
func (s *selector) prefer(primary string, fallback []string) (FoodItem, error) {
	if food, ok := s.catalog.Food(primary); ok && s.allowed(food) {
		return food, nil
	}
	return s.pick(fallback)
}

// pickOptional is pick without fallback, for items a meal can do without.
func (s *selector) pickOptional(candidates []string) (FoodItem, bool) {
	ranked := s.rank(candidates)
	if len(ranked) == 0 {
		return FoodItem{}, false
	}
	return ranked[0], true
}

func (s *selector) firstAllowed(match func(FoodItem) bool) (FoodItem, bool) {
	for _, food := range s.catalog.foods {
		if match(food) && s.allowed(food) {
			return food, true
		}
	}
	return FoodItem{}, false
}

// IsFoodAllowed reports whether food passes the allergy, diet and dislike filters.
func IsFoodAllowed(food FoodItem, preferences DietPreferences) bool {
	return newSelector(defaultCatalog, preferences).allowed(food)
}

// PickFood selects among candidate ids of the given catalog for preferences.
func (catalog *Catalog) PickFood(candidates []string, preferences DietPreferences) (FoodItem, error) {
	return newSelector(catalog, preferences).pick(candidates)
}

// ListDietFoodOptions lists allowed foods of a category, best match first.
func (catalog *Catalog) ListDietFoodOptions(category Category, preferences DietPreferences) []FoodOption {
	ranked := newSelector(catalog, preferences).rank(catalog.InCategory(category))
	options := make([]FoodOption, 0, len(ranked))
	for _, food := range ranked {
		options = append(options, FoodOption{ID: food.ID, Name: food.Name})
	}
	return options
}

// ListDietFoodOptions runs the listing against the embedded table.
func ListDietFoodOptions(category Category, preferences DietPreferences) []FoodOption {
	return defaultCatalog.ListDietFoodOptions(category, preferences)
}
