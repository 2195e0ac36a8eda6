package dietplan

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type Restriction string

const (
	RestrictionLactose   Restriction = "lactose"
	RestrictionGluten    Restriction = "gluten"
	RestrictionPeanut    Restriction = "peanut"
	RestrictionShellfish Restriction = "shellfish"
	RestrictionEgg       Restriction = "egg"
	RestrictionOther     Restriction = "other"
)

type DietPreference string

const (
	DietNone        DietPreference = "none"
	DietLowCarb     DietPreference = "low_carb"
	DietVegetarian  DietPreference = "vegetarian"
	DietVegan       DietPreference = "vegan"
	DietPescetarian DietPreference = "pescetarian"
)

type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

type GoalType string

const (
	GoalLose     GoalType = "lose"
	GoalGain     GoalType = "gain"
	GoalMaintain GoalType = "maintain"
)

type Category string

const (
	CategoryProtein Category = "protein"
	CategoryCarb    Category = "carb"
	CategoryFat     Category = "fat"
	CategoryVeg     Category = "veg"
	CategoryFruit   Category = "fruit"
	CategoryOther   Category = "other"
)

type Macro string

const (
	MacroProtein Macro = "protein"
	MacroCarbs   Macro = "carbs"
	MacroFat     Macro = "fat"
)

type SlotType string

const (
	SlotBreakfast SlotType = "breakfast"
	SlotMain      SlotType = "main"
	SlotSnack     SlotType = "snack"
)

// BiometricProfile is the body data a plan is computed from.
type BiometricProfile struct {
	Gender        Gender        `json:"gender"`
	Age           int           `json:"age"`
	HeightCm      float64       `json:"height_cm"`
	WeightKg      float64       `json:"weight_kg"`
	GoalWeightKg  float64       `json:"goal_weight_kg"`
	ActivityLevel ActivityLevel `json:"activity_level"`
}

type DietPreferences struct {
	Restrictions         []Restriction  `json:"restrictions"`
	RestrictionOtherText string         `json:"restriction_other_text,omitempty"`
	DietPreference       DietPreference `json:"diet_preference"`
	FoodsLike            []string       `json:"foods_like"`
	FoodsDislike         []string       `json:"foods_dislike"`
	MealsPerDay          int            `json:"meals_per_day"`
	// Budget is carried through to the plan metadata only.
	Budget Budget `json:"budget,omitempty"`
}

// FoodItem densities are per 100g.
type FoodItem struct {
	ID              string        `yaml:"id" json:"id"`
	Name            string        `yaml:"name" json:"name"`
	Category        Category      `yaml:"category" json:"category"`
	ProteinG        float64       `yaml:"protein_g" json:"protein_g"`
	CarbsG          float64       `yaml:"carbs_g" json:"carbs_g"`
	FatG            float64       `yaml:"fat_g" json:"fat_g"`
	Kcal            float64       `yaml:"kcal" json:"kcal"`
	Tags            []string      `yaml:"tags" json:"tags"`
	Allergens       []Restriction `yaml:"allergens" json:"allergens"`
	IsAnimalProduct bool          `yaml:"animal_product" json:"is_animal_product"`
	IsMeat          bool          `yaml:"meat" json:"is_meat"`
	IsFish          bool          `yaml:"fish" json:"is_fish"`
}

// Density returns grams of the macro per 100g of food.
func (food FoodItem) Density(macro Macro) float64 {
	switch macro {
	case MacroProtein:
		return food.ProteinG
	case MacroCarbs:
		return food.CarbsG
	case MacroFat:
		return food.FatG
	}
	return 0
}

type Macros struct {
	ProteinG int     `json:"protein_g"`
	CarbsG   int     `json:"carbs_g"`
	FatG     int     `json:"fat_g"`
	WaterL   float64 `json:"water_l"`
}

type MealMacros struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
	Calories int `json:"calories"`
}

// MealItem is one food in a meal. Items sized against a macro keep the binding in
// TargetMacro/TargetMacroGrams so a substitution can be resized later.
type MealItem struct {
	Category         Category `json:"category"`
	FoodID           string   `json:"food_id"`
	Grams            int      `json:"grams,omitempty"`
	Quantity         int      `json:"quantity,omitempty"`
	Label            string   `json:"label,omitempty"`
	TargetMacro      Macro    `json:"target_macro,omitempty"`
	TargetMacroGrams float64  `json:"target_macro_grams,omitempty"`
}

type MealPlan struct {
	Name           string     `json:"name"`
	Icon           string     `json:"icon"`
	Type           SlotType   `json:"type"`
	Time           string     `json:"time"`
	Ratio          float64    `json:"ratio"`
	ApproxCalories int        `json:"approx_calories"`
	Macros         MealMacros `json:"macros"`
	Items          []MealItem `json:"items"`
	Foods          []string   `json:"foods"`
}

type Lists struct {
	Prioritize []string `json:"prioritize"`
	Avoid      []string `json:"avoid"`
}

type Meta struct {
	Preferences   DietPreferences `json:"preferences"`
	CreatedAt     time.Time       `json:"created_at"`
	SchemaVersion int             `json:"schema_version"`
}

type DietPlan struct {
	Calories   int        `json:"calories"`
	Macros     Macros     `json:"macros"`
	GoalType   GoalType   `json:"goal_type"`
	TMB        int        `json:"tmb"`
	TDEE       int        `json:"tdee"`
	Meals      []MealPlan `json:"meals"`
	Lists      Lists      `json:"lists"`
	Disclaimer string     `json:"disclaimer"`
	Meta       Meta       `json:"meta"`
}

// FoodOption is an entry offered to a substitution picker.
type FoodOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
