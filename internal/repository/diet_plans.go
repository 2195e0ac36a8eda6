package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glassolution/berry/internal/models"
)

type DietPlanRepository interface {
	FindByUserID(ctx context.Context, userID string) (models.StoredPlan, error)
	Upsert(ctx context.Context, plan models.StoredPlan) error
	Delete(ctx context.Context, userID string) error
}

type SQLiteDietPlanRepository struct {
	database *sql.DB
}

func NewDietPlanRepository(database *sql.DB) *SQLiteDietPlanRepository {
	return &SQLiteDietPlanRepository{database: database}
}

func (repository *SQLiteDietPlanRepository) FindByUserID(ctx context.Context, userID string) (models.StoredPlan, error) {
	var plan models.StoredPlan
	var planJSON string
	err := repository.database.QueryRowContext(ctx,
		`SELECT user_id, calories, goal_type, schema_version, plan_json, created_at, updated_at
		FROM diet_plans WHERE user_id = ?`, userID,
	).Scan(&plan.UserID, &plan.Calories, &plan.GoalType, &plan.SchemaVersion, &planJSON, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return models.StoredPlan{}, fmt.Errorf("finding diet plan: %w", err)
	}
	plan.PlanJSON = []byte(planJSON)
	return plan, nil
}

// Upsert stores the plan as the user's current one. The first creation time is kept.
func (repository *SQLiteDietPlanRepository) Upsert(ctx context.Context, plan models.StoredPlan) error {
	now := time.Now()
	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO diet_plans (user_id, calories, goal_type, schema_version, plan_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			calories = excluded.calories,
			goal_type = excluded.goal_type,
			schema_version = excluded.schema_version,
			plan_json = excluded.plan_json,
			updated_at = excluded.updated_at`,
		plan.UserID, plan.Calories, plan.GoalType, plan.SchemaVersion, string(plan.PlanJSON), now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting diet plan: %w", err)
	}
	return nil
}

func (repository *SQLiteDietPlanRepository) Delete(ctx context.Context, userID string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM diet_plans WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("deleting diet plan: %w", err)
	}
	return nil
}
