package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Profile ────────────────────────────────────────────────────────── */

const (
	genderMale   = "male"
	genderFemale = "female"
)

// activityLevel is the TDEE multiplier. JSON input may be a number, a
// numeric string, or one of the names in activityMultipliers.
type activityLevel float64

func (a *activityLevel) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*a = activityLevel(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("activity_level must be a number or preset name")
	}
	s = strings.TrimSpace(s)
	if m, ok := activityMultipliers[s]; ok {
		*a = activityLevel(m)
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("unknown activity level %q", s)
	}
	*a = activityLevel(n)
	return nil
}

// profile holds the personal attributes consumed by the metric policy.
// Replaced wholesale on every update.
type profile struct {
	Gender          string        `json:"gender"           validate:"required,oneof=male female"`
	Age             int           `json:"age"              validate:"required,min=15,max=150"`
	HeightCM        int           `json:"height_cm"        validate:"required,min=100,max=250"`
	WeightKG        float64       `json:"weight_kg"        validate:"required,min=30,max=300"`
	ActivityLevel   activityLevel `json:"activity_level"   validate:"min=1.2,max=1.9"`
	HealthCondition string        `json:"health_condition" validate:"oneof=none diabetic heart_patient both"`
}

// withDefaults fills the optional fields the same way the users table does.
func (p profile) withDefaults() profile {
	if p.ActivityLevel == 0 {
		p.ActivityLevel = defaultActivityLevel
	}
	if p.HealthCondition == "" {
		p.HealthCondition = "none"
	}
	return p
}

// calculation is the most recent BMR/TDEE result cached on the user.
type calculation struct {
	BMR  float64 `json:"bmr"`
	TDEE float64 `json:"tdee"`
}

/* ─── Goal ───────────────────────────────────────────────────────────── */

// goal is the single active goal for a user.
type goal struct {
	Type           string  `json:"type"`
	TargetCalories float64 `json:"target_calories" validate:"gt=0,lte=5000"`
	TargetProtein  float64 `json:"target_protein"  validate:"gt=0,lte=400"`
	TargetWeight   float64 `json:"target_weight"   validate:"gt=0,lte=300"`
}

// goalInput is the request body for PUT /api/users/goals. Targets are left
// untyped so numeric strings can be coerced instead of failing JSON binding.
type goalInput struct {
	Type           string `json:"type"`
	TargetCalories any    `json:"target_calories"`
	TargetProtein  any    `json:"target_protein"`
	TargetWeight   any    `json:"target_weight"`
}

// recommendation is the response of POST /api/users/calculate-recommendations.
type recommendation struct {
	BMR                float64 `json:"bmr"`
	TDEE               float64 `json:"tdee"`
	SuggestedAction    string  `json:"suggested_action"`
	TargetCalories     float64 `json:"target_calories"`
	TargetProtein      float64 `json:"target_protein"`
	TargetWeightChange string  `json:"target_weight_change"`
	SuggestedGoal      goal    `json:"suggested_goal"`
}

/* ─── Users ──────────────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userView is the user as returned to its owner: account fields plus the
// profile, goal and calculation sub-records. It never carries secrets.
type userView struct {
	ID           int          `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	CreatedAt    *time.Time   `json:"created_at"`
	PersonalInfo *profile     `json:"personal_info"`
	Goals        *goal        `json:"goals"`
	Calculations *calculation `json:"calculations"`
}

/* ─── Daily entries ──────────────────────────────────────────────────── */

// entry maps to tracking_entries. One row per (user_id, date).
type entry struct {
	ID        int        `json:"id,omitempty" db:"id"`
	UserID    int        `json:"user_id,omitempty" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	Calories  int        `json:"calories" db:"calories"`
	Protein   int        `json:"protein" db:"protein"`
	Weight    float64    `json:"weight" db:"weight"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// historyView drops the internal identifiers for history listings.
func (e entry) historyView() entry {
	e.ID = 0
	e.UserID = 0
	return e
}

// measurement is the part of an entry that an upsert overwrites.
type measurement struct {
	Calories int     `json:"calories" validate:"min=0,max=2000"`
	Protein  int     `json:"protein"  validate:"min=0,max=160"`
	Weight   float64 `json:"weight"   validate:"min=30,max=200"`
}

// entryRequest is the request body for POST /api/tracking/entries. Pointer
// fields distinguish "missing" from a legitimate zero.
type entryRequest struct {
	Date     string   `json:"date"     validate:"required"`
	Calories *int     `json:"calories" validate:"required,min=0,max=2000"`
	Protein  *int     `json:"protein"  validate:"required,min=0,max=160"`
	Weight   *float64 `json:"weight"   validate:"required,min=30,max=200"`
}
