package main

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-process Store used when DB_URL is unset and by tests.
// A single mutex makes CreateEntry's check-and-insert atomic.
type memStore struct {
	mu sync.Mutex

	nextUserID  int
	nextEntryID int

	users        map[int]user
	profiles     map[int]profile
	goals        map[int]goal
	calculations map[int]calculation
	entries      map[int]entry
	// entryIndex is the uniqueness index: userID -> day -> entry id.
	entryIndex map[int]map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[int]user),
		profiles:     make(map[int]profile),
		goals:        make(map[int]goal),
		calculations: make(map[int]calculation),
		entries:      make(map[int]entry),
		entryIndex:   make(map[int]map[string]int),
	}
}

// addUser registers an account and returns its id. Used for seeding.
func (s *memStore) addUser(u user) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	u.ID = s.nextUserID
	if u.CreatedAt == nil {
		now := time.Now().UTC()
		u.CreatedAt = &now
	}
	s.users[u.ID] = u
	return u.ID
}

func (s *memStore) UserByUsername(_ context.Context, username string) (user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user{}, ErrNotFound
}

func (s *memStore) UserIDForToken(_ context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if token != "" && u.AuthToken == token {
			return u.ID, nil
		}
	}
	return 0, ErrNotFound
}

func (s *memStore) GetUser(_ context.Context, userID int) (userView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return userView{}, ErrNotFound
	}
	v := userView{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
	if p, ok := s.profiles[userID]; ok {
		v.PersonalInfo = &p
	}
	if g, ok := s.goals[userID]; ok {
		v.Goals = &g
	}
	if c, ok := s.calculations[userID]; ok {
		v.Calculations = &c
	}
	return v, nil
}

func (s *memStore) ReplaceProfile(_ context.Context, userID int, p profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	s.profiles[userID] = p
	return nil
}

func (s *memStore) SaveCalculation(_ context.Context, userID int, c calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	s.calculations[userID] = c
	return nil
}

func (s *memStore) ReplaceGoal(_ context.Context, userID int, g goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	s.goals[userID] = g
	return nil
}

func (s *memStore) FindEntry(_ context.Context, userID int, day time.Time) (entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entryIndex[userID][dayKey(day)]
	if !ok {
		return entry{}, ErrNotFound
	}
	return s.entries[id], nil
}

func (s *memStore) CreateEntry(_ context.Context, e entry) (entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[e.UserID]; !ok {
		return entry{}, ErrNotFound
	}
	byDay, ok := s.entryIndex[e.UserID]
	if !ok {
		byDay = make(map[string]int)
		s.entryIndex[e.UserID] = byDay
	}
	key := dayKey(e.Date.Time)
	if _, exists := byDay[key]; exists {
		return entry{}, ErrDuplicateEntry
	}
	s.nextEntryID++
	now := time.Now().UTC()
	e.ID = s.nextEntryID
	e.CreatedAt = &now
	e.UpdatedAt = &now
	s.entries[e.ID] = e
	byDay[key] = e.ID
	return e, nil
}

func (s *memStore) UpdateEntry(_ context.Context, id, userID int, m measurement) (entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return entry{}, ErrNotFound
	}
	now := time.Now().UTC()
	e.Calories = m.Calories
	e.Protein = m.Protein
	e.Weight = m.Weight
	e.UpdatedAt = &now
	s.entries[id] = e
	return e, nil
}

func (s *memStore) ListEntries(_ context.Context, userID int) ([]entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entry, 0, len(s.entryIndex[userID]))
	for _, id := range s.entryIndex[userID] {
		out = append(out, s.entries[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *memStore) LatestEntry(ctx context.Context, userID int) (*entry, error) {
	entries, err := s.ListEntries(ctx, userID)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	latest := entries[len(entries)-1]
	return &latest, nil
}

func (s *memStore) Ping(context.Context) error { return nil }
