package main

import (
	"fmt"
	"math"
	"time"
)

// activityMultipliers maps named activity presets to their TDEE multiplier.
// Profiles store the number; the names are accepted as input shorthand.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// defaultActivityLevel is used when a profile omits activity_level.
const defaultActivityLevel = 1.55

// Goal type tags produced by suggestGoal.
const (
	goalWeightLoss  = "Weight Loss"
	goalWeightGain  = "Weight Gain"
	goalMaintenance = "Maintenance"
)

// computeBMR returns the Mifflin-St Jeor basal metabolic rate. gender must
// already be validated as "male" or "female".
func computeBMR(weightKG, heightCM float64, age int, gender string) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if gender == genderMale {
		return bmr + 5
	}
	return bmr - 161
}

// computeTDEE scales BMR by the activity multiplier.
func computeTDEE(bmr, activityLevel float64) float64 {
	return bmr * activityLevel
}

// suggestion is the Metric Policy output: the goal to propose plus the
// narrative describing the weight change.
type suggestion struct {
	Goal               goal
	TargetWeightChange string
}

// suggestGoal picks a goal from TDEE and current weight. The loss and gain
// branches cannot both match because their weight thresholds are disjoint.
func suggestGoal(tdee, weightKG float64) suggestion {
	delta := math.Round(weightKG * 0.08)
	switch {
	case tdee > 2500 && weightKG > 80:
		return suggestion{
			Goal: goal{
				Type:           goalWeightLoss,
				TargetCalories: math.Round(tdee * 0.85),
				TargetProtein:  math.Round(weightKG * 2.2),
				TargetWeight:   roundTo(weightKG*0.92, 1),
			},
			TargetWeightChange: fmt.Sprintf("Lose %.0f kg (8%% of current weight)", delta),
		}
	case tdee < 2000 && weightKG < 60:
		return suggestion{
			Goal: goal{
				Type:           goalWeightGain,
				TargetCalories: math.Round(tdee * 1.15),
				TargetProtein:  math.Round(weightKG * 2.0),
				TargetWeight:   roundTo(weightKG*1.08, 1),
			},
			TargetWeightChange: fmt.Sprintf("Gain %.0f kg (8%% of current weight)", delta),
		}
	default:
		return suggestion{
			Goal: goal{
				Type:           goalMaintenance,
				TargetCalories: math.Round(tdee),
				TargetProtein:  math.Round(weightKG * 1.6),
				TargetWeight:   weightKG,
			},
			TargetWeightChange: "Maintain current weight",
		}
	}
}

// roundTo rounds v half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// calendarDay truncates t to midnight in loc. Truncate(24h) only works for
// UTC, so the day is rebuilt from its calendar fields instead.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
