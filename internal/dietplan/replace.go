package dietplan

import "fmt"

// ReplaceMealItem returns a copy of plan with one item swapped to newFoodID.
// Items bound to a target macro are resized against the new food's density.
// The new food is not checked against the user's preferences; callers offer
// choices from ListDietFoodOptions.
func (catalog *Catalog) ReplaceMealItem(plan DietPlan, mealIndex, itemIndex int, newFoodID string) (DietPlan, error) {
	if mealIndex < 0 || mealIndex >= len(plan.Meals) {
		return DietPlan{}, fmt.Errorf("%w: index %d", ErrMealNotFound, mealIndex)
	}
	if itemIndex < 0 || itemIndex >= len(plan.Meals[mealIndex].Items) {
		return DietPlan{}, fmt.Errorf("%w: index %d", ErrItemNotFound, itemIndex)
	}
	food, ok := catalog.Food(newFoodID)
	if !ok {
		return DietPlan{}, fmt.Errorf("%w: %q", ErrUnknownFood, newFoodID)
	}

	replaced := copyPlan(plan)
	meal := &replaced.Meals[mealIndex]
	item := meal.Items[itemIndex]

	item.FoodID = food.ID
	item.Label = ""
	if item.TargetMacro != "" {
		item.Grams = GramsFor(item.TargetMacroGrams, food.Density(item.TargetMacro))
		item.Quantity = 0
		if food.ID == EggFoodID {
			applyEggUnits(&item)
		}
	}

	meal.Items[itemIndex] = item
	meal.Foods = describeItems(catalog, meal.Items)
	return replaced, nil
}

// ReplaceMealItem runs the replacement against the embedded table.
func ReplaceMealItem(plan DietPlan, mealIndex, itemIndex int, newFoodID string) (DietPlan, error) {
	return defaultCatalog.ReplaceMealItem(plan, mealIndex, itemIndex, newFoodID)
}

func copyPlan(plan DietPlan) DietPlan {
	copied := plan
	copied.Meals = make([]MealPlan, len(plan.Meals))
	for i, meal := range plan.Meals {
		meal.Items = append([]MealItem(nil), meal.Items...)
		meal.Foods = append([]string(nil), meal.Foods...)
		copied.Meals[i] = meal
	}
	copied.Lists = Lists{
		Prioritize: append([]string(nil), plan.Lists.Prioritize...),
		Avoid:      append([]string(nil), plan.Lists.Avoid...),
	}
	copied.Meta.Preferences = copyPreferences(plan.Meta.Preferences)
	return copied
}
