package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/internal/workout"
)

var (
	errEmptyWorkout = errors.New("workout has no start time")
	errInvalidSet   = errors.New("set needs a positive weight and reps")
)

// webAppWorkout is the payload the mini app posts through sendData.
type webAppWorkout struct {
	StartTime time.Time          `json:"startTime"`
	EndTime   *time.Time         `json:"endTime,omitempty"`
	Exercises []workout.Exercise `json:"exercises"`
}

// ParseWebAppData decodes a mini app workout for owner.
func ParseWebAppData(owner int64, raw string) (workout.Session, error) {
	var w webAppWorkout
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &w); err != nil {
		return workout.Session{}, err
	}
	if w.StartTime.IsZero() {
		return workout.Session{}, errEmptyWorkout
	}
	exercises := make([]workout.Exercise, 0, len(w.Exercises))
	for _, e := range w.Exercises {
		for _, set := range e.Sets {
			if !set.Valid() {
				return workout.Session{}, fmt.Errorf("%s: %w", e.Name, errInvalidSet)
			}
		}
		if name := strings.TrimSpace(e.Name); name != "" {
			e.Name = name
			exercises = append(exercises, e)
		}
	}
	return workout.Session{
		Owner:     owner,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		Exercises: exercises,
	}, nil
}

// WebAppData saves a workout logged in the mini app and closes the chat session.
func (c *Controller) WebAppData(ctx context.Context, owner int64, raw string) Reply {
	sess, err := ParseWebAppData(owner, raw)
	if err != nil {
		logger.Warn(ctx, logger.ComponentWorkout, "webapp.invalid",
			slog.Int64("user_id", owner), slog.String("error", err.Error()))
		return text(msgWebAppFailed)
	}
	if c.history == nil {
		return text(msgNoHistory)
	}
	id, err := c.history.Save(ctx, sess)
	if err != nil {
		logger.Error(ctx, logger.ComponentHistory, "save.failed",
			slog.Int64("user_id", owner), slog.String("source", "webapp"), slog.String("error", err.Error()))
		return text(msgWebAppFailed)
	}
	c.store.FinishSession(owner)
	logger.Info(ctx, logger.ComponentHistory, "save.ok",
		slog.Int64("user_id", owner),
		slog.String("workout_id", id),
		slog.String("source", "webapp"),
		slog.Int("exercises", len(sess.Exercises)),
		slog.Int("sets", sess.TotalSets()),
	)
	return text(c.format.WorkoutSaved(sess))
}
