package services_test

import (
	"context"
	"strings"
	"testing"

	ical "github.com/arran4/golang-ical"
	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/services"
)

func TestBuildMealCalendar(t *testing.T) {
	plan, err := dietplan.NewCalculator(nil, planClock).Calculate(dietplan.BiometricProfile{
		Gender: dietplan.GenderMale, Age: 30, HeightCm: 180, WeightKg: 90, GoalWeightKg: 80,
		ActivityLevel: dietplan.ActivityModerate,
	}, dietplan.DietPreferences{MealsPerDay: 4})
	if err != nil {
		t.Fatalf("calculating plan: %v", err)
	}

	serialized := services.BuildMealCalendar(plan, "Berry", "user-1").Serialize()

	for _, expected := range []string{
		"X-WR-CALNAME:Berry",
		"RRULE:FREQ=DAILY",
		"DTSTART:20250301T073000",
		"DTSTART:20250301T123000",
		"DTEND:20250301T130000",
	} {
		if !strings.Contains(serialized, expected) {
			t.Errorf("expected feed to contain %q", expected)
		}
	}

	parsed, err := ical.ParseCalendar(strings.NewReader(serialized))
	if err != nil {
		t.Fatalf("parsing feed: %v", err)
	}
	events := parsed.Events()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	summary := events[1].GetProperty(ical.ComponentPropertySummary)
	if summary == nil || summary.Value != "Lunch (~880 kcal)" {
		t.Errorf("unexpected lunch summary %v", summary)
	}
}

func TestMealCalendar_RenderUsesCalendarName(t *testing.T) {
	fixture := setupDietService(t)
	ctx := context.Background()
	fixture.service.SaveProfile(ctx, fixture.user.ID, referenceInput())
	fixture.settings.Set(ctx, repository.SettingCalendarName, "Ana's meals")

	calendar := services.NewMealCalendar(fixture.service, fixture.settings)
	feed, err := calendar.Render(ctx, fixture.user.ID)
	if err != nil {
		t.Fatalf("rendering calendar: %v", err)
	}
	if !strings.Contains(feed, "X-WR-CALNAME:Ana's meals") {
		t.Errorf("expected custom calendar name in feed")
	}
	if strings.Count(feed, "BEGIN:VEVENT") != 4 {
		t.Errorf("expected 4 events, got %d", strings.Count(feed, "BEGIN:VEVENT"))
	}
}

func TestMealCalendar_RenderWithoutProfile(t *testing.T) {
	fixture := setupDietService(t)
	calendar := services.NewMealCalendar(fixture.service, fixture.settings)

	_, err := calendar.Render(context.Background(), fixture.user.ID)
	if err != services.ErrProfileNotFound {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}
