package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/services"
	"github.com/glassolution/berry/internal/testutil"
)

var planClock = func() time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
}

type dietFixture struct {
	service     *services.DietService
	profileRepo *repository.SQLiteProfileRepository
	planRepo    *repository.SQLiteDietPlanRepository
	settings    *repository.SQLiteSettingsRepository
	user        models.User
}

func setupDietService(t *testing.T) dietFixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	user := testutil.NewTestUser(t, db, "ana", models.RoleMember)

	profileRepo := repository.NewProfileRepository(db)
	planRepo := repository.NewDietPlanRepository(db)
	service := services.NewDietService(profileRepo, planRepo, dietplan.NewCalculator(nil, planClock))
	return dietFixture{
		service:     service,
		profileRepo: profileRepo,
		planRepo:    planRepo,
		settings:    repository.NewSettingsRepository(db),
		user:        user,
	}
}

func ptr[T any](value T) *T {
	return &value
}

func referenceInput() services.ProfileInput {
	return services.ProfileInput{
		Gender:         ptr("male"),
		Age:            ptr(30),
		HeightCm:       ptr(180.0),
		WeightKg:       ptr(90.0),
		GoalWeightKg:   ptr(80.0),
		ActivityLevel:  ptr("moderate"),
		DietPreference: ptr("none"),
		MealsPerDay:    ptr(4),
	}
}

func TestDietService_SaveProfileAppliesDefaults(t *testing.T) {
	fixture := setupDietService(t)

	profile, err := fixture.service.SaveProfile(context.Background(), fixture.user.ID, services.ProfileInput{})
	if err != nil {
		t.Fatalf("saving profile: %v", err)
	}

	if profile.Gender != "female" || profile.Age != 30 || profile.HeightCm != 170 {
		t.Errorf("unexpected defaults: %+v", profile)
	}
	if profile.WeightKg != 70 || profile.GoalWeightKg != 60 {
		t.Errorf("unexpected weight defaults: %v / %v", profile.WeightKg, profile.GoalWeightKg)
	}
	if profile.ActivityLevel != "sedentary" || profile.DietPreference != "none" || profile.MealsPerDay != 4 {
		t.Errorf("unexpected preference defaults: %+v", profile)
	}
}

func TestDietService_SaveProfileMergesOntoStored(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()

	if _, err := fixture.service.SaveProfile(ctx, fixture.user.ID, referenceInput()); err != nil {
		t.Fatalf("saving profile: %v", err)
	}
	profile, err := fixture.service.SaveProfile(ctx, fixture.user.ID, services.ProfileInput{
		WeightKg:  ptr(85.0),
		FoodsLike: []string{"Frango", "frango "},
	})
	if err != nil {
		t.Fatalf("updating profile: %v", err)
	}

	if profile.WeightKg != 85 || profile.Gender != "male" || profile.HeightCm != 180 {
		t.Errorf("expected merged profile, got %+v", profile)
	}
	if len(profile.FoodsLike) != 1 || profile.FoodsLike[0] != "frango" {
		t.Errorf("expected normalised likes, got %v", profile.FoodsLike)
	}
}

func TestDietService_SaveProfileRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input services.ProfileInput
	}{
		{"gender", services.ProfileInput{Gender: ptr("robot")}},
		{"age", services.ProfileInput{Age: ptr(0)}},
		{"weight", services.ProfileInput{WeightKg: ptr(-3.0)}},
		{"activity", services.ProfileInput{ActivityLevel: ptr("extreme")}},
		{"restriction", services.ProfileInput{Restrictions: []string{"sugar"}}},
		{"diet", services.ProfileInput{DietPreference: ptr("carnivore")}},
		{"budget", services.ProfileInput{Budget: ptr("unlimited")}},
		{"meals", services.ProfileInput{MealsPerDay: ptr(8)}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fixture := setupDietService(t)
			_, err := fixture.service.SaveProfile(context.Background(), fixture.user.ID, test.input)
			if !errors.Is(err, services.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDietService_GeneratePlanRequiresProfile(t *testing.T) {
	fixture := setupDietService(t)

	_, err := fixture.service.GeneratePlan(context.Background(), fixture.user.ID)
	if !errors.Is(err, services.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestDietService_CurrentPlanGeneratesAndStores(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()
	fixture.service.SaveProfile(ctx, fixture.user.ID, referenceInput())

	plan, err := fixture.service.CurrentPlan(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("loading current plan: %v", err)
	}
	if plan.Calories != 2514 {
		t.Errorf("expected 2514 kcal, got %d", plan.Calories)
	}

	stored, err := fixture.planRepo.FindByUserID(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("finding stored plan: %v", err)
	}
	if stored.Calories != 2514 || stored.GoalType != "lose" || stored.SchemaVersion != dietplan.PlanSchemaVersion {
		t.Errorf("unexpected stored plan %+v", stored)
	}
}

func TestDietService_SaveProfileInvalidatesPlan(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()
	fixture.service.SaveProfile(ctx, fixture.user.ID, referenceInput())
	fixture.service.GeneratePlan(ctx, fixture.user.ID)

	fixture.service.SaveProfile(ctx, fixture.user.ID, services.ProfileInput{GoalWeightKg: ptr(90.0)})

	plan, err := fixture.service.CurrentPlan(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("loading current plan: %v", err)
	}
	if plan.GoalType != dietplan.GoalMaintain {
		t.Errorf("expected maintain plan after goal change, got %s", plan.GoalType)
	}
}

func TestDietService_CurrentPlanRegeneratesOldSchema(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()
	fixture.service.SaveProfile(ctx, fixture.user.ID, referenceInput())

	old, _ := json.Marshal(dietplan.DietPlan{Calories: 1})
	fixture.planRepo.Upsert(ctx, models.StoredPlan{
		UserID: fixture.user.ID, Calories: 1, GoalType: "lose", SchemaVersion: 0, PlanJSON: old,
	})

	plan, err := fixture.service.CurrentPlan(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("loading current plan: %v", err)
	}
	if plan.Calories != 2514 {
		t.Errorf("expected regenerated plan, got %d kcal", plan.Calories)
	}
}

func TestDietService_CurrentPlanRegeneratesChangedPreferences(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()
	fixture.service.SaveProfile(ctx, fixture.user.ID, referenceInput())
	fixture.service.GeneratePlan(ctx, fixture.user.ID)

	profile, _ := fixture.profileRepo.FindByUserID(ctx, fixture.user.ID)
	profile.DietPreference = "vegan"
	fixture.profileRepo.Upsert(ctx, profile)

	plan, err := fixture.service.CurrentPlan(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("loading current plan: %v", err)
	}
	if plan.Meta.Preferences.DietPreference != dietplan.DietVegan {
		t.Fatalf("expected vegan plan, got %s", plan.Meta.Preferences.DietPreference)
	}
	for _, meal := range plan.Meals {
		for _, item := range meal.Items {
			if item.FoodID == "chicken" || item.FoodID == dietplan.EggFoodID {
				t.Errorf("vegan plan contains %s in %s", item.FoodID, meal.Name)
			}
		}
	}
}

func TestDietService_RestrictionOtherTextReachesPlan(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()

	input := referenceInput()
	input.Restrictions = []string{"other"}
	input.RestrictionOtherText = ptr("  kiwi ")
	profile, err := fixture.service.SaveProfile(ctx, fixture.user.ID, input)
	if err != nil {
		t.Fatalf("saving profile: %v", err)
	}
	if profile.RestrictionOtherText != "kiwi" {
		t.Errorf("expected trimmed text 'kiwi', got %q", profile.RestrictionOtherText)
	}

	plan, err := fixture.service.CurrentPlan(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("loading current plan: %v", err)
	}
	if plan.Meta.Preferences.RestrictionOtherText != "kiwi" {
		t.Errorf("expected plan preferences to carry 'kiwi', got %q", plan.Meta.Preferences.RestrictionOtherText)
	}

	stored, _ := fixture.profileRepo.FindByUserID(ctx, fixture.user.ID)
	stored.RestrictionOtherText = "mango"
	fixture.profileRepo.Upsert(ctx, stored)

	plan, err = fixture.service.CurrentPlan(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("loading current plan: %v", err)
	}
	if plan.Meta.Preferences.RestrictionOtherText != "mango" {
		t.Errorf("expected regenerated plan to carry 'mango', got %q", plan.Meta.Preferences.RestrictionOtherText)
	}

	tooLong := referenceInput()
	tooLong.RestrictionOtherText = ptr(strings.Repeat("x", 501))
	if _, err := fixture.service.SaveProfile(ctx, fixture.user.ID, tooLong); !errors.Is(err, services.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for oversized text, got %v", err)
	}
}

func TestDietService_FoodOptions(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()

	options, err := fixture.service.FoodOptions(ctx, fixture.user.ID, dietplan.CategoryProtein)
	if err != nil {
		t.Fatalf("listing options without profile: %v", err)
	}
	if len(options) != 7 {
		t.Errorf("expected every protein without a profile, got %d", len(options))
	}

	input := referenceInput()
	input.FoodsLike = []string{"frango"}
	fixture.service.SaveProfile(ctx, fixture.user.ID, input)

	options, err = fixture.service.FoodOptions(ctx, fixture.user.ID, dietplan.CategoryProtein)
	if err != nil {
		t.Fatalf("listing options: %v", err)
	}
	if options[0].ID != "chicken" {
		t.Errorf("expected chicken first, got %s", options[0].ID)
	}

	_, err = fixture.service.FoodOptions(ctx, fixture.user.ID, dietplan.Category("dessert"))
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown category, got %v", err)
	}
}

func TestDietService_ReplaceItemPersists(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()
	fixture.service.SaveProfile(ctx, fixture.user.ID, referenceInput())

	replaced, err := fixture.service.ReplaceItem(ctx, fixture.user.ID, 1, 0, "fish")
	if err != nil {
		t.Fatalf("replacing item: %v", err)
	}
	if replaced.Meals[1].Items[0].Grams != 242 {
		t.Errorf("expected 242g fish, got %d", replaced.Meals[1].Items[0].Grams)
	}

	current, err := fixture.service.CurrentPlan(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("loading current plan: %v", err)
	}
	if current.Meals[1].Items[0].FoodID != "fish" {
		t.Errorf("expected stored replacement, got %s", current.Meals[1].Items[0].FoodID)
	}
}

func TestDietService_ReplaceItemErrors(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()
	input := referenceInput()
	input.DietPreference = ptr("vegetarian")
	fixture.service.SaveProfile(ctx, fixture.user.ID, input)

	tests := []struct {
		name     string
		meal     int
		item     int
		foodID   string
		expected error
	}{
		{"forbidden by diet", 1, 0, "chicken", services.ErrFoodNotAllowed},
		{"wrong category", 1, 0, "rice", services.ErrFoodNotAllowed},
		{"unknown food", 1, 0, "pizza", dietplan.ErrUnknownFood},
		{"meal out of range", 9, 0, "tofu", dietplan.ErrMealNotFound},
		{"item out of range", 1, 9, "tofu", dietplan.ErrItemNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := fixture.service.ReplaceItem(ctx, fixture.user.ID, test.meal, test.item, test.foodID)
			if !errors.Is(err, test.expected) {
				t.Errorf("expected %v, got %v", test.expected, err)
			}
		})
	}
}
