package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glassolution/berry/internal/models"
)

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) (models.Profile, error)
}

type SQLiteProfileRepository struct {
	database *sql.DB
}

func NewProfileRepository(database *sql.DB) *SQLiteProfileRepository {
	return &SQLiteProfileRepository{database: database}
}

func (repository *SQLiteProfileRepository) FindByUserID(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	var restrictionsJSON, likesJSON, dislikesJSON string
	err := repository.database.QueryRowContext(ctx,
		`SELECT user_id, gender, age, height_cm, weight_kg, goal_weight_kg, activity_level,
			restrictions, restriction_other_text, diet_preference, foods_like, foods_dislike, budget,
			meals_per_day, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID,
	).Scan(
		&profile.UserID, &profile.Gender, &profile.Age, &profile.HeightCm, &profile.WeightKg,
		&profile.GoalWeightKg, &profile.ActivityLevel, &restrictionsJSON, &profile.RestrictionOtherText,
		&profile.DietPreference,
		&likesJSON, &dislikesJSON, &profile.Budget, &profile.MealsPerDay,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return models.Profile{}, fmt.Errorf("finding profile: %w", err)
	}

	if err := unmarshalList(restrictionsJSON, &profile.Restrictions); err != nil {
		return models.Profile{}, err
	}
	if err := unmarshalList(likesJSON, &profile.FoodsLike); err != nil {
		return models.Profile{}, err
	}
	if err := unmarshalList(dislikesJSON, &profile.FoodsDislike); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (repository *SQLiteProfileRepository) Upsert(ctx context.Context, profile models.Profile) (models.Profile, error) {
	restrictionsJSON, err := marshalList(profile.Restrictions)
	if err != nil {
		return models.Profile{}, err
	}
	likesJSON, err := marshalList(profile.FoodsLike)
	if err != nil {
		return models.Profile{}, err
	}
	dislikesJSON, err := marshalList(profile.FoodsDislike)
	if err != nil {
		return models.Profile{}, err
	}

	now := time.Now()
	_, err = repository.database.ExecContext(ctx,
		`INSERT INTO profiles (user_id, gender, age, height_cm, weight_kg, goal_weight_kg, activity_level,
			restrictions, restriction_other_text, diet_preference, foods_like, foods_dislike, budget, meals_per_day,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			gender = excluded.gender,
			age = excluded.age,
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			goal_weight_kg = excluded.goal_weight_kg,
			activity_level = excluded.activity_level,
			restrictions = excluded.restrictions,
			restriction_other_text = excluded.restriction_other_text,
			diet_preference = excluded.diet_preference,
			foods_like = excluded.foods_like,
			foods_dislike = excluded.foods_dislike,
			budget = excluded.budget,
			meals_per_day = excluded.meals_per_day,
			updated_at = excluded.updated_at`,
		profile.UserID, profile.Gender, profile.Age, profile.HeightCm, profile.WeightKg, profile.GoalWeightKg,
		profile.ActivityLevel, restrictionsJSON, profile.RestrictionOtherText, profile.DietPreference, likesJSON, dislikesJSON,
		profile.Budget, profile.MealsPerDay, now, now,
	)
	if err != nil {
		return models.Profile{}, fmt.Errorf("upserting profile: %w", err)
	}
	return repository.FindByUserID(ctx, profile.UserID)
}

func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding profile list: %w", err)
	}
	return string(data), nil
}

func unmarshalList(data string, target *[]string) error {
	if err := json.Unmarshal([]byte(data), target); err != nil {
		return fmt.Errorf("parsing profile list: %w", err)
	}
	return nil
}
