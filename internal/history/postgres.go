package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/oops"

	"github.com/m3rciful/yeabuddy/internal/workout"
)

// PostgresStore keeps history in the workouts table created by migrations/.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an already connected and migrated database.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type workoutRow struct {
	ID        string       `db:"id"`
	UserID    int64        `db:"user_id"`
	StartTime time.Time    `db:"start_time"`
	EndTime   sql.NullTime `db:"end_time"`
	TotalSets int          `db:"total_sets"`
	TotalReps int          `db:"total_reps"`
	Exercises string       `db:"exercises"`
}

const insertWorkout = `
INSERT INTO workouts (id, user_id, start_time, end_time, total_sets, total_reps, exercises)
VALUES (:id, :user_id, :start_time, :end_time, :total_sets, :total_reps, CAST(:exercises AS jsonb))`

const selectRecent = `
SELECT id, user_id, start_time, end_time, total_sets, total_reps, exercises
FROM workouts
WHERE user_id = $1
ORDER BY start_time DESC
LIMIT $2`

// Save inserts s and returns the generated id.
func (p *PostgresStore) Save(ctx context.Context, s workout.Session) (string, error) {
	if err := validate(s); err != nil {
		return "", err
	}
	exercises, err := json.Marshal(exercisesOrEmpty(s.Exercises))
	if err != nil {
		return "", oops.In("history").Code("pg_encode").Wrapf(err, "encode exercises")
	}
	row := workoutRow{
		ID:        newID(),
		UserID:    s.Owner,
		StartTime: s.StartTime.UTC(),
		TotalSets: s.TotalSets(),
		TotalReps: s.TotalReps(),
		Exercises: string(exercises),
	}
	if s.EndTime != nil {
		row.EndTime = sql.NullTime{Time: s.EndTime.UTC(), Valid: true}
	}
	if _, err := p.db.NamedExecContext(ctx, insertWorkout, row); err != nil {
		return "", oops.In("history").Code("pg_insert").With("user_id", s.Owner).Wrapf(err, "insert workout")
	}
	return row.ID, nil
}

// Recent lists the owner's newest workouts.
func (p *PostgresStore) Recent(ctx context.Context, owner int64, limit int) ([]Record, error) {
	var rows []workoutRow
	if err := p.db.SelectContext(ctx, &rows, selectRecent, owner, normalizeLimit(limit)); err != nil {
		return nil, oops.In("history").Code("pg_select").With("user_id", owner).Wrapf(err, "select workouts")
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, oops.In("history").Code("pg_decode").With("id", r.ID).Wrapf(err, "decode workout")
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns how many workouts the owner saved.
func (p *PostgresStore) Count(ctx context.Context, owner int64) (int, error) {
	var n int
	if err := p.db.GetContext(ctx, &n, `SELECT count(*) FROM workouts WHERE user_id = $1`, owner); err != nil {
		return 0, oops.In("history").Code("pg_count").Wrapf(err, "count workouts")
	}
	return n, nil
}

// Close is a no-op; the pool belongs to whoever opened it.
func (p *PostgresStore) Close() error { return nil }

func (r workoutRow) record() (Record, error) {
	var exercises []workout.Exercise
	if err := json.Unmarshal([]byte(r.Exercises), &exercises); err != nil {
		return Record{}, err
	}
	rec := Record{
		ID: r.ID,
		Session: workout.Session{
			Owner:     r.UserID,
			StartTime: r.StartTime,
			Exercises: exercises,
		},
	}
	if r.EndTime.Valid {
		end := r.EndTime.Time
		rec.EndTime = &end
	}
	return rec, nil
}

func exercisesOrEmpty(in []workout.Exercise) []workout.Exercise {
	if in == nil {
		return []workout.Exercise{}
	}
	return in
}
