package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/repository"
)

const (
	defaultCalendarName = "Berry"
	mealEventDuration   = 30 * time.Minute
	floatingTimeLayout  = "20060102T150405"
)

// MealCalendar publishes a user's current plan as a daily recurring schedule.
type MealCalendar struct {
	dietService  *DietService
	settingsRepo repository.SettingsRepository
}

func NewMealCalendar(dietService *DietService, settingsRepo repository.SettingsRepository) *MealCalendar {
	return &MealCalendar{
		dietService:  dietService,
		settingsRepo: settingsRepo,
	}
}

func (calendar *MealCalendar) Render(ctx context.Context, userID string) (string, error) {
	plan, err := calendar.dietService.CurrentPlan(ctx, userID)
	if err != nil {
		return "", err
	}

	name, err := calendar.settingsRepo.GetOrDefault(ctx, repository.SettingCalendarName, defaultCalendarName)
	if err != nil {
		return "", fmt.Errorf("loading calendar name: %w", err)
	}

	return BuildMealCalendar(plan, name, userID).Serialize(), nil
}

// BuildMealCalendar creates one VEVENT per meal, starting on the plan's
// creation day and repeating daily. Times are floating so each meal shows at
// its slot time in the subscriber's own zone.
func BuildMealCalendar(plan dietplan.DietPlan, name string, userID string) *ical.Calendar {
	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId(fmt.Sprintf("-//%s//Meal Plan//EN", name))
	calendar.SetXWRCalName(name)

	created := plan.Meta.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, time.UTC)

	for index, meal := range plan.Meals {
		start := day.Add(slotOffset(meal.Time))

		event := calendar.AddEvent(fmt.Sprintf("meal-%d-%s@%s", index, userID, strings.ToLower(name)))
		event.SetDtStampTime(created)
		event.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingTimeLayout))
		event.SetProperty(ical.ComponentPropertyDtEnd, start.Add(mealEventDuration).Format(floatingTimeLayout))
		event.AddProperty(ical.ComponentPropertyRrule, "FREQ=DAILY")
		event.SetSummary(fmt.Sprintf("%s (~%d kcal)", meal.Name, meal.ApproxCalories))
		if len(meal.Foods) > 0 {
			event.SetDescription(strings.Join(meal.Foods, "\n"))
		}
	}
	return calendar
}

func slotOffset(clock string) time.Duration {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return 12 * time.Hour
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute
}
