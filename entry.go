package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// upsertEntry records one day's measurements for userID. The date is reduced
// to its calendar day in the reference timezone and must not be after today.
// An existing row for that day gets its three measurement fields replaced;
// otherwise a new row is created. If another request creates the same day
// first, the store's uniqueness check fails and ErrDuplicateEntry is returned.
func (t *tracker) upsertEntry(ctx context.Context, userID int, date time.Time, m measurement) (entry, error) {
	if err := validateInput(m); err != nil {
		t.metrics.recordEntryWrite(entryRejected)
		return entry{}, err
	}
	day := calendarDay(date, t.loc)
	if day.After(t.today()) {
		t.metrics.recordEntryWrite(entryRejected)
		return entry{}, invalidInput("Cannot add entries for future dates")
	}

	existing, err := t.store.FindEntry(ctx, userID, day)
	switch {
	case err == nil:
		updated, err := t.store.UpdateEntry(ctx, existing.ID, userID, m)
		if err != nil {
			return entry{}, err
		}
		t.metrics.recordEntryWrite(entryUpdated)
		return updated, nil
	case errors.Is(err, ErrNotFound):
		// fall through to create
	default:
		return entry{}, err
	}

	created, err := t.store.CreateEntry(ctx, entry{
		UserID:   userID,
		Date:     DateOnly{day},
		Calories: m.Calories,
		Protein:  m.Protein,
		Weight:   m.Weight,
	})
	if errors.Is(err, ErrDuplicateEntry) {
		t.metrics.recordEntryWrite(entryConflict)
		t.log.Info("duplicate entry create rejected",
			zap.Int("user_id", userID), zap.String("date", dayKey(day)))
		return entry{}, err
	}
	if err != nil {
		return entry{}, err
	}
	t.metrics.recordEntryWrite(entryCreated)
	return created, nil
}

// listEntries returns the user's entries by ascending date with internal ids removed.
func (t *tracker) listEntries(ctx context.Context, userID int) ([]entry, error) {
	entries, err := t.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]entry, len(entries))
	for i, e := range entries {
		out[i] = e.historyView()
	}
	return out, nil
}

// latestEntry returns the entry with the greatest date, or nil when the user
// has none.
func (t *tracker) latestEntry(ctx context.Context, userID int) (*entry, error) {
	return t.store.LatestEntry(ctx, userID)
}

// parseEntryDate accepts a plain YYYY-MM-DD (read as a day in loc) or a full
// RFC 3339 timestamp.
func parseEntryDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalidInput("Valid date is required")
	}
	return t, nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// addEntry creates or updates the entry for the given date.
// POST /api/tracking/entries. Body: { "date", "calories", "protein", "weight" }.
func (h *Handler) addEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body entryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateInput(body); err != nil {
		h.respondError(c, err, "")
		return
	}
	date, err := parseEntryDate(body.Date, h.tracker.loc)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	e, err := h.tracker.upsertEntry(c.Request.Context(), userID, date, measurement{
		Calories: *body.Calories,
		Protein:  *body.Protein,
		Weight:   *body.Weight,
	})
	if err != nil {
		h.respondError(c, err, "Server error while saving tracking entry")
		return
	}
	apiOK(c, http.StatusOK, "Tracking entry saved successfully", gin.H{"entry": e})
}

// getHistory returns all of the user's entries, oldest first.
// GET /api/tracking/entries. Returns an empty array (not null) when there are none.
func (h *Handler) getHistory(c *gin.Context) {
	entries, err := h.tracker.listEntries(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		h.respondError(c, err, "Server error while fetching tracking history")
		return
	}
	apiOK(c, http.StatusOK, "", gin.H{"entries": entries})
}

// getProgressStats returns the most recent entry, or null.
// GET /api/tracking/progress-stats.
func (h *Handler) getProgressStats(c *gin.Context) {
	latest, err := h.tracker.latestEntry(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		h.respondError(c, err, "Server error while fetching progress stats")
		return
	}
	apiOK(c, http.StatusOK, "", gin.H{"latest_entry": latest})
}
