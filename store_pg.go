package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store on a pgx connection pool.
type pgStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// newPGStore creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func newPGStore(ctx context.Context, dbURL string, log *zap.Logger) (*pgStore, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &pgStore{pool: pool, log: log}, nil
}

func (s *pgStore) Close() { s.pool.Close() }

/* ─── Query helpers ──────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Errors come back already mapped to the store sentinels.
func queryOne[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		return zero, s.storeErr("query", err)
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, s.storeErr("scan", err)
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		return nil, s.storeErr("query", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, s.storeErr("scan", err)
	}
	return results, nil
}

// storeErr maps err and logs it when it is an unexpected failure. Missing
// rows and constraint conflicts are normal outcomes and stay quiet.
func (s *pgStore) storeErr(stage string, err error) error {
	mapped := mapPgError(err)
	if errors.Is(mapped, ErrStoreFailure) {
		s.log.Error("postgres "+stage+" failed", zap.Error(err))
	}
	return mapped
}

// mapPgError translates pgx errors into store sentinels.
// SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &storeError{Sentinel: ErrNotFound, Cause: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &storeError{Sentinel: ErrDuplicateEntry, Cause: err}
		case "23503": // foreign_key_violation: the referenced user is gone
			return &storeError{Sentinel: ErrNotFound, Cause: err}
		}
	}
	return &storeError{Sentinel: ErrStoreFailure, Cause: err}
}

/* ─── Users ──────────────────────────────────────────────────────────── */

func (s *pgStore) UserByUsername(ctx context.Context, username string) (user, error) {
	return queryOne[user](ctx, s,
		`SELECT id, username, email, auth_token, password, created_at
		 FROM users WHERE username = @username`,
		pgx.NamedArgs{"username": username})
}

func (s *pgStore) UserIDForToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if err != nil {
		return 0, s.storeErr("query", err)
	}
	return userID, nil
}

// userRow is the flat shape of the users LEFT JOIN sub-records query.
// Sub-record columns are nil when the row does not exist yet.
type userRow struct {
	ID              int        `db:"id"`
	Username        string     `db:"username"`
	Email           string     `db:"email"`
	CreatedAt       *time.Time `db:"created_at"`
	Gender          *string    `db:"gender"`
	Age             *int       `db:"age"`
	HeightCM        *int       `db:"height_cm"`
	WeightKG        *float64   `db:"weight_kg"`
	ActivityLevel   *float64   `db:"activity_level"`
	HealthCondition *string    `db:"health_condition"`
	GoalType        *string    `db:"goal_type"`
	TargetCalories  *float64   `db:"target_calories"`
	TargetProtein   *float64   `db:"target_protein"`
	TargetWeight    *float64   `db:"target_weight"`
	BMR             *float64   `db:"bmr"`
	TDEE            *float64   `db:"tdee"`
}

func (r userRow) view() userView {
	v := userView{ID: r.ID, Username: r.Username, Email: r.Email, CreatedAt: r.CreatedAt}
	if r.Gender != nil {
		v.PersonalInfo = &profile{
			Gender:          *r.Gender,
			Age:             deref(r.Age),
			HeightCM:        deref(r.HeightCM),
			WeightKG:        deref(r.WeightKG),
			ActivityLevel:   activityLevel(deref(r.ActivityLevel)),
			HealthCondition: deref(r.HealthCondition),
		}
	}
	if r.GoalType != nil {
		v.Goals = &goal{
			Type:           *r.GoalType,
			TargetCalories: deref(r.TargetCalories),
			TargetProtein:  deref(r.TargetProtein),
			TargetWeight:   deref(r.TargetWeight),
		}
	}
	if r.BMR != nil {
		v.Calculations = &calculation{BMR: *r.BMR, TDEE: deref(r.TDEE)}
	}
	return v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (s *pgStore) GetUser(ctx context.Context, userID int) (userView, error) {
	row, err := queryOne[userRow](ctx, s,
		`SELECT u.id, u.username, u.email, u.created_at,
			p.gender, p.age, p.height_cm, p.weight_kg, p.activity_level, p.health_condition,
			g.type AS goal_type, g.target_calories, g.target_protein, g.target_weight,
			c.bmr, c.tdee
		 FROM users u
		 LEFT JOIN user_profiles p     ON p.user_id = u.id
		 LEFT JOIN user_goals g        ON g.user_id = u.id
		 LEFT JOIN user_calculations c ON c.user_id = u.id
		 WHERE u.id = @userID`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return userView{}, err
	}
	return row.view(), nil
}

/* ─── Sub-records ────────────────────────────────────────────────────── */

// exec runs a single-statement write and maps its error.
func (s *pgStore) exec(ctx context.Context, sql string, args pgx.NamedArgs) error {
	if _, err := s.pool.Exec(ctx, sql, args); err != nil {
		return s.storeErr("exec", err)
	}
	return nil
}

func (s *pgStore) ReplaceProfile(ctx context.Context, userID int, p profile) error {
	return s.exec(ctx,
		`INSERT INTO user_profiles (user_id, gender, age, height_cm, weight_kg, activity_level, health_condition)
		 VALUES (@userID, @gender, @age, @heightCM, @weightKG, @activityLevel, @healthCondition)
		 ON CONFLICT (user_id) DO UPDATE SET
			gender           = EXCLUDED.gender,
			age              = EXCLUDED.age,
			height_cm        = EXCLUDED.height_cm,
			weight_kg        = EXCLUDED.weight_kg,
			activity_level   = EXCLUDED.activity_level,
			health_condition = EXCLUDED.health_condition,
			updated_at       = now()`,
		pgx.NamedArgs{
			"userID": userID, "gender": p.Gender, "age": p.Age,
			"heightCM": p.HeightCM, "weightKG": p.WeightKG,
			"activityLevel": float64(p.ActivityLevel), "healthCondition": p.HealthCondition,
		})
}

func (s *pgStore) SaveCalculation(ctx context.Context, userID int, c calculation) error {
	return s.exec(ctx,
		`INSERT INTO user_calculations (user_id, bmr, tdee)
		 VALUES (@userID, @bmr, @tdee)
		 ON CONFLICT (user_id) DO UPDATE SET
			bmr         = EXCLUDED.bmr,
			tdee        = EXCLUDED.tdee,
			computed_at = now()`,
		pgx.NamedArgs{"userID": userID, "bmr": c.BMR, "tdee": c.TDEE})
}

func (s *pgStore) ReplaceGoal(ctx context.Context, userID int, g goal) error {
	return s.exec(ctx,
		`INSERT INTO user_goals (user_id, type, target_calories, target_protein, target_weight)
		 VALUES (@userID, @type, @targetCalories, @targetProtein, @targetWeight)
		 ON CONFLICT (user_id) DO UPDATE SET
			type            = EXCLUDED.type,
			target_calories = EXCLUDED.target_calories,
			target_protein  = EXCLUDED.target_protein,
			target_weight   = EXCLUDED.target_weight,
			updated_at      = now()`,
		pgx.NamedArgs{
			"userID": userID, "type": g.Type, "targetCalories": g.TargetCalories,
			"targetProtein": g.TargetProtein, "targetWeight": g.TargetWeight,
		})
}

/* ─── Tracking entries ───────────────────────────────────────────────── */

func (s *pgStore) FindEntry(ctx context.Context, userID int, day time.Time) (entry, error) {
	return queryOne[entry](ctx, s,
		"SELECT * FROM tracking_entries WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": dayKey(day)})
}

// CreateEntry is a plain INSERT. A concurrent create for the same day fails
// the UNIQUE(user_id, date) constraint with 23505 (ErrDuplicateEntry).
func (s *pgStore) CreateEntry(ctx context.Context, e entry) (entry, error) {
	return queryOne[entry](ctx, s,
		`INSERT INTO tracking_entries (user_id, date, calories, protein, weight)
		 VALUES (@userID, @date, @calories, @protein, @weight)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": e.UserID, "date": dayKey(e.Date.Time),
			"calories": e.Calories, "protein": e.Protein, "weight": e.Weight,
		})
}

func (s *pgStore) UpdateEntry(ctx context.Context, id, userID int, m measurement) (entry, error) {
	return queryOne[entry](ctx, s,
		`UPDATE tracking_entries SET
			calories   = @calories,
			protein    = @protein,
			weight     = @weight,
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"calories": m.Calories, "protein": m.Protein, "weight": m.Weight,
		})
}

func (s *pgStore) ListEntries(ctx context.Context, userID int) ([]entry, error) {
	entries, err := queryMany[entry](ctx, s,
		"SELECT * FROM tracking_entries WHERE user_id = @userID ORDER BY date ASC",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entry{}
	}
	return entries, nil
}

func (s *pgStore) LatestEntry(ctx context.Context, userID int) (*entry, error) {
	e, err := queryOne[entry](ctx, s,
		"SELECT * FROM tracking_entries WHERE user_id = @userID ORDER BY date DESC LIMIT 1",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return s.storeErr("ping", err)
	}
	return nil
}
