package main

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages are the user-facing messages per JSON field.
var fieldMessages = map[string]string{
	"gender":           "Gender must be male or female",
	"age":              "Age must be between 15 and 150",
	"height_cm":        "Height must be between 100 and 250 cm",
	"weight_kg":        "Weight must be between 30 and 300 kg",
	"activity_level":   "Invalid activity level",
	"health_condition": "Invalid health condition",
	"date":             "Valid date is required",
	"calories":         "Calories must be between 0 and 2000",
	"protein":          "Protein must be between 0 and 160g",
	"weight":           "Weight must be between 30 and 200 kg",
	"target_calories":  "Target calories must be a valid number between 1 and 5000",
	"target_protein":   "Target protein must be a valid number between 1 and 400",
	"target_weight":    "Target weight must be a valid number between 1 and 300",
}

// validateInput runs the struct-tag rules on v and converts the first
// failure into an inputError. Core operations call it before any write.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidInput("invalid input")
	}
	field := verrs[0].Field()
	if msg, ok := fieldMessages[field]; ok {
		return &inputError{msg: msg}
	}
	return invalidInput("%s is invalid", field)
}

// coerceNumber converts a loosely-typed JSON value into a finite float64.
// Numbers and numeric strings are accepted; anything else reports ok=false.
func coerceNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
