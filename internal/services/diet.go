package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrFoodNotAllowed  = errors.New("food not allowed for this item")
)

// Boundary defaults for fields a client leaves out of its first profile.
const (
	defaultGender        = dietplan.GenderFemale
	defaultAge           = 30
	defaultHeightCm      = 170.0
	defaultWeightKg      = 70.0
	defaultGoalWeightKg  = 60.0
	defaultActivityLevel = dietplan.ActivitySedentary
	defaultDiet          = dietplan.DietNone
)

const maxRestrictionOtherText = 500

// ProfileInput is a partial profile update. Nil fields keep the stored value,
// or the boundary default when there is no stored profile yet.
type ProfileInput struct {
	Gender               *string  `json:"gender"`
	Age                  *int     `json:"age"`
	HeightCm             *float64 `json:"height_cm"`
	WeightKg             *float64 `json:"weight_kg"`
	GoalWeightKg         *float64 `json:"goal_weight_kg"`
	ActivityLevel        *string  `json:"activity_level"`
	Restrictions         []string `json:"restrictions"`
	RestrictionOtherText *string  `json:"restriction_other_text"`
	DietPreference       *string  `json:"diet_preference"`
	FoodsLike            []string `json:"foods_like"`
	FoodsDislike         []string `json:"foods_dislike"`
	Budget               *string  `json:"budget"`
	MealsPerDay          *int     `json:"meals_per_day"`
}

type DietService struct {
	profileRepo repository.ProfileRepository
	planRepo    repository.DietPlanRepository
	calculator  *dietplan.Calculator
}

func NewDietService(
	profileRepo repository.ProfileRepository,
	planRepo repository.DietPlanRepository,
	calculator *dietplan.Calculator,
) *DietService {
	if calculator == nil {
		calculator = dietplan.NewCalculator(nil, nil)
	}
	return &DietService{
		profileRepo: profileRepo,
		planRepo:    planRepo,
		calculator:  calculator,
	}
}

func (service *DietService) Profile(ctx context.Context, userID string) (models.Profile, error) {
	profile, err := service.profileRepo.FindByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	return profile, nil
}

// SaveProfile merges input onto the stored profile and drops the current plan
// so the next read regenerates it.
func (service *DietService) SaveProfile(ctx context.Context, userID string, input ProfileInput) (models.Profile, error) {
	profile, err := service.Profile(ctx, userID)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		profile = defaultProfile(userID)
	case err != nil:
		return models.Profile{}, err
	}

	if err := applyProfileInput(&profile, input); err != nil {
		return models.Profile{}, err
	}

	saved, err := service.profileRepo.Upsert(ctx, profile)
	if err != nil {
		return models.Profile{}, fmt.Errorf("saving profile: %w", err)
	}
	if err := service.planRepo.Delete(ctx, userID); err != nil {
		return models.Profile{}, fmt.Errorf("invalidating plan: %w", err)
	}

	slog.Info("saved profile", "user_id", userID)
	return saved, nil
}

// GeneratePlan computes a fresh plan from the stored profile and persists it.
func (service *DietService) GeneratePlan(ctx context.Context, userID string) (dietplan.DietPlan, error) {
	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return dietplan.DietPlan{}, err
	}

	plan, err := service.calculator.Calculate(BiometricsOf(profile), PreferencesOf(profile))
	if errors.Is(err, dietplan.ErrInvalidProfile) {
		return dietplan.DietPlan{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return dietplan.DietPlan{}, fmt.Errorf("calculating plan: %w", err)
	}

	if err := service.storePlan(ctx, userID, plan); err != nil {
		return dietplan.DietPlan{}, err
	}

	slog.Info("generated diet plan", "user_id", userID, "calories", plan.Calories, "goal", plan.GoalType, "meals", len(plan.Meals))
	return plan, nil
}

// CurrentPlan returns the stored plan, regenerating it when it is missing,
// was produced by an older calculator or no longer matches the profile's
// preferences.
func (service *DietService) CurrentPlan(ctx context.Context, userID string) (dietplan.DietPlan, error) {
	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return dietplan.DietPlan{}, err
	}

	stored, err := service.planRepo.FindByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return service.GeneratePlan(ctx, userID)
	}
	if err != nil {
		return dietplan.DietPlan{}, fmt.Errorf("loading plan: %w", err)
	}

	var plan dietplan.DietPlan
	if err := json.Unmarshal(stored.PlanJSON, &plan); err != nil {
		slog.Warn("discarding unreadable plan", "user_id", userID, "error", err)
		return service.GeneratePlan(ctx, userID)
	}

	if stored.SchemaVersion < dietplan.PlanSchemaVersion || !samePreferences(plan.Meta.Preferences, PreferencesOf(profile)) {
		slog.Info("regenerating stale plan", "user_id", userID, "schema_version", stored.SchemaVersion)
		return service.GeneratePlan(ctx, userID)
	}
	return plan, nil
}

// FoodOptions lists the foods of category the user may choose. Without a
// profile no preferences apply.
func (service *DietService) FoodOptions(ctx context.Context, userID string, category dietplan.Category) ([]dietplan.FoodOption, error) {
	if !validCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	var preferences dietplan.DietPreferences
	profile, err := service.Profile(ctx, userID)
	switch {
	case err == nil:
		preferences = PreferencesOf(profile)
	case !errors.Is(err, ErrProfileNotFound):
		return nil, err
	}
	return service.calculator.Catalog().ListDietFoodOptions(category, preferences), nil
}

// ReplaceItem swaps one item of the current plan. Only foods offered for the
// item's category under the plan's preferences are accepted.
func (service *DietService) ReplaceItem(ctx context.Context, userID string, mealIndex, itemIndex int, foodID string) (dietplan.DietPlan, error) {
	plan, err := service.CurrentPlan(ctx, userID)
	if err != nil {
		return dietplan.DietPlan{}, err
	}

	if mealIndex < 0 || mealIndex >= len(plan.Meals) {
		return dietplan.DietPlan{}, fmt.Errorf("%w: index %d", dietplan.ErrMealNotFound, mealIndex)
	}
	items := plan.Meals[mealIndex].Items
	if itemIndex < 0 || itemIndex >= len(items) {
		return dietplan.DietPlan{}, fmt.Errorf("%w: index %d", dietplan.ErrItemNotFound, itemIndex)
	}

	catalog := service.calculator.Catalog()
	if _, ok := catalog.Food(foodID); !ok {
		return dietplan.DietPlan{}, fmt.Errorf("%w: %q", dietplan.ErrUnknownFood, foodID)
	}

	options := catalog.ListDietFoodOptions(items[itemIndex].Category, plan.Meta.Preferences)
	if !slices.ContainsFunc(options, func(option dietplan.FoodOption) bool { return option.ID == foodID }) {
		return dietplan.DietPlan{}, fmt.Errorf("%w: %q", ErrFoodNotAllowed, foodID)
	}

	replaced, err := catalog.ReplaceMealItem(plan, mealIndex, itemIndex, foodID)
	if err != nil {
		return dietplan.DietPlan{}, err
	}
	if err := service.storePlan(ctx, userID, replaced); err != nil {
		return dietplan.DietPlan{}, err
	}

	slog.Info("replaced meal item", "user_id", userID, "meal", mealIndex, "item", itemIndex, "food", foodID)
	return replaced, nil
}

func (service *DietService) storePlan(ctx context.Context, userID string, plan dietplan.DietPlan) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	err = service.planRepo.Upsert(ctx, models.StoredPlan{
		UserID:        userID,
		Calories:      plan.Calories,
		GoalType:      string(plan.GoalType),
		SchemaVersion: plan.Meta.SchemaVersion,
		PlanJSON:      planJSON,
	})
	if err != nil {
		return fmt.Errorf("storing plan: %w", err)
	}
	return nil
}

func defaultProfile(userID string) models.Profile {
	return models.Profile{
		UserID:         userID,
		Gender:         string(defaultGender),
		Age:            defaultAge,
		HeightCm:       defaultHeightCm,
		WeightKg:       defaultWeightKg,
		GoalWeightKg:   defaultGoalWeightKg,
		ActivityLevel:  string(defaultActivityLevel),
		DietPreference: string(defaultDiet),
		MealsPerDay:    dietplan.DefaultMealsPerDay,
	}
}

func applyProfileInput(profile *models.Profile, input ProfileInput) error {
	if input.Gender != nil {
		if !slices.Contains([]dietplan.Gender{dietplan.GenderMale, dietplan.GenderFemale, dietplan.GenderOther}, dietplan.Gender(*input.Gender)) {
			return fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, *input.Gender)
		}
		profile.Gender = *input.Gender
	}
	if input.Age != nil {
		if *input.Age <= 0 || *input.Age > 120 {
			return fmt.Errorf("%w: age must be between 1 and 120", ErrInvalidInput)
		}
		profile.Age = *input.Age
	}
	for _, field := range []struct {
		name  string
		value *float64
		into  *float64
	}{
		{"height_cm", input.HeightCm, &profile.HeightCm},
		{"weight_kg", input.WeightKg, &profile.WeightKg},
		{"goal_weight_kg", input.GoalWeightKg, &profile.GoalWeightKg},
	} {
		if field.value == nil {
			continue
		}
		if *field.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidInput, field.name)
		}
		*field.into = *field.value
	}
	if input.ActivityLevel != nil {
		if !slices.Contains([]dietplan.ActivityLevel{
			dietplan.ActivitySedentary, dietplan.ActivityLight, dietplan.ActivityModerate,
			dietplan.ActivityActive, dietplan.ActivityVeryActive,
		}, dietplan.ActivityLevel(*input.ActivityLevel)) {
			return fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, *input.ActivityLevel)
		}
		profile.ActivityLevel = *input.ActivityLevel
	}
	if input.Restrictions != nil {
		for _, restriction := range input.Restrictions {
			if !slices.Contains([]dietplan.Restriction{
				dietplan.RestrictionLactose, dietplan.RestrictionGluten, dietplan.RestrictionPeanut,
				dietplan.RestrictionShellfish, dietplan.RestrictionEgg, dietplan.RestrictionOther,
			}, dietplan.Restriction(restriction)) {
				return fmt.Errorf("%w: unknown restriction %q", ErrInvalidInput, restriction)
			}
		}
		profile.Restrictions = input.Restrictions
	}
	if input.RestrictionOtherText != nil {
		text := strings.TrimSpace(*input.RestrictionOtherText)
		if len(text) > maxRestrictionOtherText {
			return fmt.Errorf("%w: restriction_other_text must be at most %d bytes", ErrInvalidInput, maxRestrictionOtherText)
		}
		profile.RestrictionOtherText = text
	}
	if input.DietPreference != nil {
		if !slices.Contains([]dietplan.DietPreference{
			dietplan.DietNone, dietplan.DietLowCarb, dietplan.DietVegetarian,
			dietplan.DietVegan, dietplan.DietPescetarian,
		}, dietplan.DietPreference(*input.DietPreference)) {
			return fmt.Errorf("%w: unknown diet preference %q", ErrInvalidInput, *input.DietPreference)
		}
		profile.DietPreference = *input.DietPreference
	}
	if input.FoodsLike != nil {
		profile.FoodsLike = dietplan.NormalizeTags(input.FoodsLike)
	}
	if input.FoodsDislike != nil {
		profile.FoodsDislike = dietplan.NormalizeTags(input.FoodsDislike)
	}
	if input.Budget != nil {
		if *input.Budget != "" && !slices.Contains([]dietplan.Budget{dietplan.BudgetLow, dietplan.BudgetMedium, dietplan.BudgetHigh}, dietplan.Budget(*input.Budget)) {
			return fmt.Errorf("%w: unknown budget %q", ErrInvalidInput, *input.Budget)
		}
		profile.Budget = *input.Budget
	}
	if input.MealsPerDay != nil {
		if !dietplan.SupportedMealsPerDay(*input.MealsPerDay) {
			return fmt.Errorf("%w: meals_per_day must be between 3 and 6", ErrInvalidInput)
		}
		profile.MealsPerDay = *input.MealsPerDay
	}
	return nil
}

func BiometricsOf(profile models.Profile) dietplan.BiometricProfile {
	return dietplan.BiometricProfile{
		Gender:        dietplan.Gender(profile.Gender),
		Age:           profile.Age,
		HeightCm:      profile.HeightCm,
		WeightKg:      profile.WeightKg,
		GoalWeightKg:  profile.GoalWeightKg,
		ActivityLevel: dietplan.ActivityLevel(profile.ActivityLevel),
	}
}

func PreferencesOf(profile models.Profile) dietplan.DietPreferences {
	restrictions := make([]dietplan.Restriction, 0, len(profile.Restrictions))
	for _, restriction := range profile.Restrictions {
		restrictions = append(restrictions, dietplan.Restriction(restriction))
	}
	return dietplan.DietPreferences{
		Restrictions:         restrictions,
		RestrictionOtherText: profile.RestrictionOtherText,
		DietPreference:       dietplan.DietPreference(profile.DietPreference),
		FoodsLike:            append([]string(nil), profile.FoodsLike...),
		FoodsDislike:         append([]string(nil), profile.FoodsDislike...),
		MealsPerDay:          profile.MealsPerDay,
		Budget:               dietplan.Budget(profile.Budget),
	}
}

// samePreferences compares the fields that shape a plan. Nil and empty lists
// are equal since plans round-trip through JSON.
func samePreferences(left, right dietplan.DietPreferences) bool {
	return left.DietPreference == right.DietPreference &&
		left.MealsPerDay == right.MealsPerDay &&
		left.RestrictionOtherText == right.RestrictionOtherText &&
		slices.Equal(left.Restrictions, right.Restrictions) &&
		slices.Equal(left.FoodsLike, right.FoodsLike) &&
		slices.Equal(left.FoodsDislike, right.FoodsDislike)
}

func validCategory(category dietplan.Category) bool {
	return slices.Contains([]dietplan.Category{
		dietplan.CategoryProtein, dietplan.CategoryCarb, dietplan.CategoryFat,
		dietplan.CategoryVeg, dietplan.CategoryFruit, dietplan.CategoryOther,
	}, category)
}
