package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultGoalType = "Custom Goal"

// setGoal coerces and validates in, then replaces the user's goal. Any
// invalid target fails before the store is touched, so the previous goal
// survives a rejected update.
func (t *tracker) setGoal(ctx context.Context, userID int, in goalInput) (goal, error) {
	g, err := in.toGoal()
	if err != nil {
		return goal{}, err
	}
	if err := validateInput(g); err != nil {
		return goal{}, err
	}
	if err := t.store.ReplaceGoal(ctx, userID, g); err != nil {
		return goal{}, err
	}
	return g, nil
}

// toGoal applies the type default and numeric coercion.
func (in goalInput) toGoal() (goal, error) {
	g := goal{Type: strings.TrimSpace(in.Type)}
	if g.Type == "" {
		g.Type = defaultGoalType
	}
	var ok [3]bool
	g.TargetCalories, ok[0] = coerceNumber(in.TargetCalories)
	g.TargetProtein, ok[1] = coerceNumber(in.TargetProtein)
	g.TargetWeight, ok[2] = coerceNumber(in.TargetWeight)
	if !ok[0] || !ok[1] || !ok[2] {
		return goal{}, invalidInput("Invalid number values provided for goals")
	}
	return g, nil
}

// updateGoals replaces the user's goal.
// PUT /api/users/goals. Body: { "type"?, "target_calories", "target_protein", "target_weight" }.
// Targets may be numbers or numeric strings.
func (h *Handler) updateGoals(c *gin.Context) {
	var body goalInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.tracker.setGoal(c.Request.Context(), c.GetInt("user_id"), body)
	if err != nil {
		h.respondError(c, err, "Server error while updating goals")
		return
	}
	apiOK(c, http.StatusOK, "Goals updated successfully", gin.H{"goals": g})
}
