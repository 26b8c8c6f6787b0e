package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile_ReplacesAndDefaults(t *testing.T) {
	tr, _, userID := newTestTracker(t)
	ctx := context.Background()

	p := validProfile()
	p.ActivityLevel = 0
	p.HealthCondition = ""

	v, err := tr.updateProfile(ctx, userID, p)
	require.NoError(t, err)
	require.NotNil(t, v.PersonalInfo)
	assert.Equal(t, activityLevel(defaultActivityLevel), v.PersonalInfo.ActivityLevel)
	assert.Equal(t, "none", v.PersonalInfo.HealthCondition)
	assert.Equal(t, "alice", v.Username)

	p2 := validProfile()
	p2.WeightKG = 79
	v, err = tr.updateProfile(ctx, userID, p2)
	require.NoError(t, err)
	assert.Equal(t, 79.0, v.PersonalInfo.WeightKG)
}

func TestUpdateProfile_InvalidLeavesStoreUntouched(t *testing.T) {
	tr, store, userID := newTestTracker(t)
	ctx := context.Background()

	p := validProfile()
	p.Age = 10
	_, err := tr.updateProfile(ctx, userID, p)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.EqualError(t, err, "Age must be between 15 and 150")

	v, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, v.PersonalInfo)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	_, err := tr.updateProfile(context.Background(), 999, validProfile())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendGoal_SavesCalculationOnly(t *testing.T) {
	tr, store, userID := newTestTracker(t)
	ctx := context.Background()

	rec, err := tr.recommendGoal(ctx, userID, validProfile())
	require.NoError(t, err)

	assert.InDelta(t, 1787.5, rec.BMR, 1e-9)
	assert.InDelta(t, 2770.625, rec.TDEE, 1e-6)
	assert.Equal(t, goalWeightLoss, rec.SuggestedAction)
	assert.Equal(t, 2355.0, rec.TargetCalories)
	assert.Equal(t, 180.0, rec.TargetProtein)
	assert.Equal(t, "Lose 7 kg (8% of current weight)", rec.TargetWeightChange)
	assert.Equal(t, 75.4, rec.SuggestedGoal.TargetWeight)

	v, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, v.Calculations)
	assert.Equal(t, rec.BMR, v.Calculations.BMR)
	assert.Equal(t, rec.TDEE, v.Calculations.TDEE)
	assert.Nil(t, v.Goals, "a recommendation is never applied as the goal")
	assert.Nil(t, v.PersonalInfo, "the supplied attributes are not saved as the profile")
}

func TestRecommendGoal_Invalid(t *testing.T) {
	tr, store, userID := newTestTracker(t)
	ctx := context.Background()

	p := validProfile()
	p.Gender = ""
	_, err := tr.recommendGoal(ctx, userID, p)
	require.ErrorIs(t, err, ErrInvalidInput)

	v, err := store.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, v.Calculations)
}

func TestRecommendGoal_UnknownUser(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	_, err := tr.recommendGoal(context.Background(), 999, validProfile())
	assert.ErrorIs(t, err, ErrNotFound)
}
