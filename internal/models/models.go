package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type TokenScope string

const (
	TokenScopeAPI  TokenScope = "api"
	TokenScopeICal TokenScope = "ical"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type APIToken struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	TokenHash       string     `json:"-"`
	Scope           TokenScope `json:"scope"`
	CreatedByUserID string     `json:"created_by_user_id"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Profile is the stored form of a user's biometric data and diet preferences.
// Lists are kept as JSON text columns.
type Profile struct {
	UserID               string    `json:"user_id"`
	Gender               string    `json:"gender"`
	Age                  int       `json:"age"`
	HeightCm             float64   `json:"height_cm"`
	WeightKg             float64   `json:"weight_kg"`
	GoalWeightKg         float64   `json:"goal_weight_kg"`
	ActivityLevel        string    `json:"activity_level"`
	Restrictions         []string  `json:"restrictions"`
	RestrictionOtherText string    `json:"restriction_other_text"`
	DietPreference       string    `json:"diet_preference"`
	FoodsLike            []string  `json:"foods_like"`
	FoodsDislike         []string  `json:"foods_dislike"`
	Budget               string    `json:"budget,omitempty"`
	MealsPerDay          int       `json:"meals_per_day"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// StoredPlan is a generated plan as persisted. PlanJSON holds the full
// dietplan.DietPlan document.
type StoredPlan struct {
	UserID        string
	Calories      int
	GoalType      string
	SchemaVersion int
	PlanJSON      []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
