package dietplan

import (
	"fmt"
	"math"
	"time"
)

// PlanSchemaVersion is bumped whenever the plan layout or the rules change, so
// stored plans built by older rules can be detected and replaced.
const PlanSchemaVersion = 1

const (
	EggFoodID      = "eggs"
	eggUnitGrams   = 50
	vegetableGrams = 150

	breakfastCarbOffset = 12.0
	snackProteinMinimum = 10.0
	snackProteinShare   = 0.6
	snackProteinFloor   = 8.0
	mainFatMinimumGrams = 5

	carbFloorKcal    = 200
	lowCarbMinimumG  = 60
	lowCarbKeepShare = 0.75
	minimumFatGrams  = 45
	fatPerKg         = 0.8
	waterLitersPerKg = 0.035
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

var proteinPerKg = map[GoalType]float64{
	GoalLose:     2.0,
	GoalGain:     1.8,
	GoalMaintain: 1.6,
}

var (
	breakfastProteins = []string{EggFoodID, "yogurt", "tofu"}
	breakfastCarbs    = []string{"oats", "whole_bread", "sweet_potato"}
	mainProteins      = []string{"chicken", "fish", "shrimp", "tofu", EggFoodID}
	mainCarbs         = []string{"rice", "sweet_potato"}
	snackProteins     = []string{EggFoodID, "tofu", "beans", "chicken", "fish"}
	fruits            = []string{"banana", "apple"}
	fats              = []string{"nuts", "olive_oil"}
	vegetables        = []string{"vegetables"}
)

var prioritizeList = []string{
	"Lean proteins: chicken, fish, eggs, tofu",
	"Whole grains and tubers: brown rice, oats, sweet potato",
	"Vegetables and leafy greens at lunch and dinner",
	"Whole fruits instead of juices",
	"Healthy fats: olive oil, nuts",
	"Water throughout the day",
}

var avoidList = []string{
	"Sugary drinks and juices with added sugar",
	"Ultra-processed snacks and sweets",
	"Deep-fried foods",
	"Processed meats: sausages, ham, bacon",
	"Excess alcohol",
}

const disclaimer = "This plan is an estimate based on the information you provided and does not " +
	"replace guidance from a doctor or registered dietitian."

// Calculator turns a profile and preferences into a DietPlan. It holds no
// mutable state and may be used from several goroutines.
type Calculator struct {
	catalog *Catalog
	now     func() time.Time
}

// NewCalculator builds a calculator. A nil catalog uses the embedded table and a
// nil clock uses time.Now; the clock only feeds Meta.CreatedAt.
func NewCalculator(catalog *Catalog, now func() time.Time) *Calculator {
	if catalog == nil {
		catalog = defaultCatalog
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{catalog: catalog, now: now}
}

func (calculator *Calculator) Catalog() *Catalog {
	return calculator.catalog
}

// CalculateDietPlan runs the default calculator.
func CalculateDietPlan(profile BiometricProfile, preferences DietPreferences) (DietPlan, error) {
	return NewCalculator(nil, nil).Calculate(profile, preferences)
}

func (calculator *Calculator) Calculate(profile BiometricProfile, preferences DietPreferences) (DietPlan, error) {
	if err := validateProfile(profile); err != nil {
		return DietPlan{}, err
	}

	bmr := BMR(profile)
	tdee := TDEE(bmr, profile.ActivityLevel)
	goal := GoalFor(profile.WeightKg, profile.GoalWeightKg)
	floor := CalorieFloor(profile.Gender)

	target := tdee
	switch goal {
	case GoalLose:
		target = tdee - 400
	case GoalGain:
		target = tdee + 300
	}
	if target < floor {
		target = floor
	}

	daily := allocateMacros(profile.WeightKg, goal, target, preferences.DietPreference, floor)

	mealsPerDay := preferences.MealsPerDay
	if !SupportedMealsPerDay(mealsPerDay) {
		mealsPerDay = DefaultMealsPerDay
	}

	sel := newSelector(calculator.catalog, preferences)
	slots := MealTemplate(mealsPerDay)
	meals := make([]MealPlan, 0, len(slots))
	for _, slot := range slots {
		meal, err := calculator.buildMeal(slot, daily, sel)
		if err != nil {
			return DietPlan{}, fmt.Errorf("building %s: %w", slot.Name, err)
		}
		meals = append(meals, meal)
	}

	return DietPlan{
		Calories: daily.calories,
		Macros: Macros{
			ProteinG: daily.protein,
			CarbsG:   daily.carbs,
			FatG:     daily.fat,
			WaterL:   math.Round(profile.WeightKg*waterLitersPerKg*10) / 10,
		},
		GoalType: goal,
		TMB:      bmr,
		TDEE:     tdee,
		Meals:    meals,
		Lists: Lists{
			Prioritize: append([]string(nil), prioritizeList...),
			Avoid:      append([]string(nil), avoidList...),
		},
		Disclaimer: disclaimer,
		Meta: Meta{
			Preferences:   copyPreferences(preferences),
			CreatedAt:     calculator.now().UTC(),
			SchemaVersion: PlanSchemaVersion,
		},
	}, nil
}

func validateProfile(profile BiometricProfile) error {
	if profile.Age <= 0 {
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	}
	if profile.HeightCm <= 0 || profile.WeightKg <= 0 || profile.GoalWeightKg <= 0 {
		return fmt.Errorf("%w: height, weight and goal weight must be positive", ErrInvalidProfile)
	}
	return nil
}

// BMR is the Mifflin-St Jeor estimate. The "other" gender uses the female
// offset, matching the behaviour plans were originally generated with.
func BMR(profile BiometricProfile) int {
	bmr := 10*profile.WeightKg + 6.25*profile.HeightCm - 5*float64(profile.Age)
	if profile.Gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return int(math.Round(bmr))
}

// ActivityMultiplier defaults to the sedentary factor for unknown levels.
func ActivityMultiplier(level ActivityLevel) float64 {
	if multiplier, ok := activityMultipliers[level]; ok {
		return multiplier
	}
	return activityMultipliers[ActivitySedentary]
}

func TDEE(bmr int, level ActivityLevel) int {
	return int(math.Round(float64(bmr) * ActivityMultiplier(level)))
}

func GoalFor(weightKg, goalWeightKg float64) GoalType {
	switch {
	case weightKg > goalWeightKg+1:
		return GoalLose
	case weightKg < goalWeightKg-1:
		return GoalGain
	default:
		return GoalMaintain
	}
}

func CalorieFloor(gender Gender) int {
	if gender == GenderMale {
		return 1500
	}
	return 1200
}

type macroTargets struct {
	calories int
	protein  int
	carbs    int
	fat      int
}

func allocateMacros(weightKg float64, goal GoalType, target int, diet DietPreference, floor int) macroTargets {
	protein := int(math.Round(weightKg * proteinPerKg[goal]))
	fat := max(minimumFatGrams, int(math.Round(weightKg*fatPerKg)))

	fixed := protein*4 + fat*9
	remaining := target - fixed
	if remaining < carbFloorKcal {
		// Protein and fat are never cut to make room for carbs; the total rises instead.
		remaining = carbFloorKcal
		target = fixed + carbFloorKcal
	}
	carbs := int(math.Round(float64(remaining) / 4))

	if diet == DietLowCarb {
		// Capped at the current carbs: with 50-59 g the 60 g minimum would otherwise
		// raise carbs on a low-carb diet.
		reduced := min(carbs, max(lowCarbMinimumG, int(math.Round(float64(carbs)*lowCarbKeepShare))))
		if reduced < carbs {
			removedKcal := (carbs - reduced) * 4
			fat += int(math.Ceil(float64(removedKcal) / 9))
			carbs = reduced
			target = protein*4 + carbs*4 + fat*9
			if target < floor {
				target = floor
			}
		}
	}

	return macroTargets{calories: target, protein: protein, carbs: carbs, fat: fat}
}

// GramsFor scales a 100g reference so the portion carries targetGrams of a macro
// whose density is densityPer100g. Non-positive density yields zero grams.
func GramsFor(targetGrams, densityPer100g float64) int {
	if densityPer100g <= 0 || targetGrams <= 0 {
		return 0
	}
	return int(math.Round(targetGrams / (densityPer100g / 100)))
}

func (calculator *Calculator) buildMeal(slot MealSlot, daily macroTargets, sel *selector) (MealPlan, error) {
	proteinTarget := float64(daily.protein) * slot.Ratio
	carbTarget := float64(daily.carbs) * slot.Ratio
	fatTarget := float64(daily.fat) * slot.Ratio

	meal := MealPlan{
		Name:           slot.Name,
		Icon:           slot.Icon,
		Type:           slot.Type,
		Time:           slot.Time,
		Ratio:          slot.Ratio,
		ApproxCalories: int(math.Round(float64(daily.calories) * slot.Ratio)),
		Macros: MealMacros{
			ProteinG: int(math.Round(proteinTarget)),
			CarbsG:   int(math.Round(carbTarget)),
			FatG:     int(math.Round(fatTarget)),
			Calories: int(math.Round(float64(daily.calories) * slot.Ratio)),
		},
	}

	var err error
	switch slot.Type {
	case SlotBreakfast:
		meal.Items, err = breakfastItems(sel, proteinTarget, carbTarget)
	case SlotSnack:
		meal.Items, err = snackItems(sel, proteinTarget, fatTarget)
	default:
		meal.Items, err = mainItems(sel, proteinTarget, carbTarget, fatTarget)
	}
	if err != nil {
		return MealPlan{}, err
	}

	meal.Foods = describeItems(calculator.catalog, meal.Items)
	return meal, nil
}

func breakfastItems(sel *selector, proteinTarget, carbTarget float64) ([]MealItem, error) {
	var items []MealItem

	protein, err := sel.pick(breakfastProteins)
	if err != nil {
		return nil, err
	}
	items = append(items, sizedItem(CategoryProtein, protein, MacroProtein, proteinTarget))

	carb, err := sel.pick(breakfastCarbs)
	if err != nil {
		return nil, err
	}
	// Leave room for the fruit.
	if item := sizedItem(CategoryCarb, carb, MacroCarbs, max(0, carbTarget-breakfastCarbOffset)); item.Grams > 0 {
		items = append(items, item)
	}

	if fruit, ok := preferOptional(sel, "banana", fruits); ok {
		items = append(items, unitItem(CategoryFruit, fruit))
	}
	return items, nil
}

func snackItems(sel *selector, proteinTarget, fatTarget float64) ([]MealItem, error) {
	var items []MealItem

	if fruit, ok := sel.pickOptional(fruits); ok {
		items = append(items, unitItem(CategoryFruit, fruit))
	}

	fat, err := sel.prefer("nuts", fats)
	if err != nil {
		return nil, err
	}
	if item := sizedItem(CategoryFat, fat, MacroFat, fatTarget); item.Grams > 0 {
		items = append(items, item)
	}

	if proteinTarget > snackProteinMinimum {
		protein, err := sel.prefer("yogurt", snackProteins)
		if err != nil {
			return nil, err
		}
		target := max(snackProteinFloor, proteinTarget*snackProteinShare)
		items = append(items, sizedItem(CategoryProtein, protein, MacroProtein, target))
	}
	return items, nil
}

func mainItems(sel *selector, proteinTarget, carbTarget, fatTarget float64) ([]MealItem, error) {
	var items []MealItem

	protein, err := sel.pick(mainProteins)
	if err != nil {
		return nil, err
	}
	items = append(items, sizedItem(CategoryProtein, protein, MacroProtein, proteinTarget))

	carb, err := sel.pick(mainCarbs)
	if err != nil {
		return nil, err
	}
	if item := sizedItem(CategoryCarb, carb, MacroCarbs, carbTarget); item.Grams > 0 {
		items = append(items, item)
	}

	if veg, ok := sel.pickOptional(vegetables); ok {
		items = append(items, MealItem{Category: CategoryVeg, FoodID: veg.ID, Grams: vegetableGrams})
	}

	fat, err := sel.prefer("olive_oil", fats)
	if err != nil {
		return nil, err
	}
	if item := sizedItem(CategoryFat, fat, MacroFat, fatTarget); item.Grams > mainFatMinimumGrams {
		items = append(items, item)
	}
	return items, nil
}

func preferOptional(sel *selector, primary string, candidates []string) (FoodItem, bool) {
	if food, ok := sel.catalog.Food(primary); ok && sel.allowed(food) {
		return food, true
	}
	return sel.pickOptional(candidates)
}

func sizedItem(category Category, food FoodItem, macro Macro, targetGrams float64) MealItem {
	target := math.Round(targetGrams*10) / 10
	item := MealItem{
		Category:         category,
		FoodID:           food.ID,
		Grams:            GramsFor(target, food.Density(macro)),
		TargetMacro:      macro,
		TargetMacroGrams: target,
	}
	if food.ID == EggFoodID {
		applyEggUnits(&item)
	}
	return item
}

func unitItem(category Category, food FoodItem) MealItem {
	return MealItem{Category: category, FoodID: food.ID, Quantity: 1}
}

func applyEggUnits(item *MealItem) {
	item.Quantity = max(1, int(math.Round(float64(item.Grams)/eggUnitGrams)))
	if item.Quantity == 1 {
		item.Label = "1 egg"
	} else {
		item.Label = fmt.Sprintf("%d eggs", item.Quantity)
	}
}

func describeItems(catalog *Catalog, items []MealItem) []string {
	foods := make([]string, 0, len(items))
	for _, item := range items {
		foods = append(foods, describeItem(catalog, item))
	}
	return foods
}

func describeItem(catalog *Catalog, item MealItem) string {
	name := item.FoodID
	if food, ok := catalog.Food(item.FoodID); ok {
		name = food.Name
	}
	switch {
	case item.Label != "":
		return item.Label
	case item.Quantity > 0:
		return fmt.Sprintf("%d %s", item.Quantity, name)
	default:
		return fmt.Sprintf("%dg %s", item.Grams, name)
	}
}

func copyPreferences(preferences DietPreferences) DietPreferences {
	copied := preferences
	copied.Restrictions = append([]Restriction(nil), preferences.Restrictions...)
	copied.FoodsLike = append([]string(nil), preferences.FoodsLike...)
	copied.FoodsDislike = append([]string(nil), preferences.FoodsDislike...)
	return copied
}
