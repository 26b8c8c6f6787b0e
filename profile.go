package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// updateProfile validates p and replaces the user's profile wholesale.
// Returns the refreshed user view (no password or token).
func (t *tracker) updateProfile(ctx context.Context, userID int, p profile) (userView, error) {
	p = p.withDefaults()
	if err := validateInput(p); err != nil {
		return userView{}, err
	}
	if err := t.store.ReplaceProfile(ctx, userID, p); err != nil {
		return userView{}, err
	}
	return t.store.GetUser(ctx, userID)
}

// recommendGoal runs the metric policy on the supplied attributes (which may
// differ from the stored profile), caches {bmr, tdee} on the user and returns
// the suggestion. It never writes the goal; accepting it is a separate setGoal.
func (t *tracker) recommendGoal(ctx context.Context, userID int, p profile) (recommendation, error) {
	p = p.withDefaults()
	if err := validateInput(p); err != nil {
		return recommendation{}, err
	}

	bmr := computeBMR(p.WeightKG, float64(p.HeightCM), p.Age, p.Gender)
	tdee := computeTDEE(bmr, float64(p.ActivityLevel))
	if err := t.store.SaveCalculation(ctx, userID, calculation{BMR: bmr, TDEE: tdee}); err != nil {
		return recommendation{}, err
	}

	s := suggestGoal(tdee, p.WeightKG)
	return recommendation{
		BMR:                bmr,
		TDEE:               tdee,
		SuggestedAction:    s.Goal.Type,
		TargetCalories:     s.Goal.TargetCalories,
		TargetProtein:      s.Goal.TargetProtein,
		TargetWeightChange: s.TargetWeightChange,
		SuggestedGoal:      s.Goal,
	}, nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getCurrentUser returns the authenticated user's view.
// GET /api/auth/me.
func (h *Handler) getCurrentUser(c *gin.Context) {
	v, err := h.store.GetUser(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		h.respondError(c, err, "Server error while fetching user")
		return
	}
	apiOK(c, http.StatusOK, "", gin.H{"user": v})
}

// updatePersonalInfo replaces the personal-info profile.
// PUT /api/users/personal-info. Body: profile fields (activity_level and
// health_condition are optional).
func (h *Handler) updatePersonalInfo(c *gin.Context) {
	var body profile
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := h.tracker.updateProfile(c.Request.Context(), c.GetInt("user_id"), body)
	if err != nil {
		h.respondError(c, err, "Server error while updating personal information")
		return
	}
	apiOK(c, http.StatusOK, "Personal information updated successfully", gin.H{"user": v})
}

// calculateRecommendations previews BMR, TDEE and a suggested goal.
// POST /api/users/calculate-recommendations. The goal is not saved.
func (h *Handler) calculateRecommendations(c *gin.Context) {
	var body profile
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.tracker.recommendGoal(c.Request.Context(), c.GetInt("user_id"), body)
	if err != nil {
		h.respondError(c, err, "Server error while calculating recommendations")
		return
	}
	apiOK(c, http.StatusOK, "", rec)
}
