// Package workout tracks in-progress training sessions and renders them as chat messages.
package workout

import (
	"math"
	"time"

	"github.com/elliotchance/pie/v2"
)

// Set is one recorded set of an exercise.
type Set struct {
	Weight float64 `json:"weight" bson:"weight"`
	Reps   int     `json:"reps" bson:"reps"`
}

// Exercise groups sets in the order they were performed.
type Exercise struct {
	Name string `json:"name" bson:"name"`
	Sets []Set  `json:"sets" bson:"sets"`
}

// LastSet returns the most recently logged set.
func (e Exercise) LastSet() (Set, bool) {
	if len(e.Sets) == 0 {
		return Set{}, false
	}
	return e.Sets[len(e.Sets)-1], true
}

// Session is a workout owned by a single chat user.
// EndTime stays nil while the session is active.
type Session struct {
	Owner     int64      `json:"userId" bson:"user_id"`
	Exercises []Exercise `json:"exercises" bson:"exercises"`
	StartTime time.Time  `json:"startTime" bson:"start_time"`
	EndTime   *time.Time `json:"endTime,omitempty" bson:"end_time,omitempty"`
}

// Duration measures the session up to EndTime, or up to now while still active.
func (s Session) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

// Minutes is Duration rounded to whole minutes.
func (s Session) Minutes(now time.Time) int {
	return int(math.Round(s.Duration(now).Minutes()))
}

// TotalSets counts sets across all exercises.
func (s Session) TotalSets() int {
	return pie.Sum(pie.Map(s.Exercises, func(e Exercise) int { return len(e.Sets) }))
}

// TotalReps counts repetitions across all exercises.
func (s Session) TotalReps() int {
	total := 0
	for _, e := range s.Exercises {
		total += pie.Sum(pie.Map(e.Sets, func(set Set) int { return set.Reps }))
	}
	return total
}

// Clone returns a deep copy that shares no slices with s.
func (s Session) Clone() Session {
	out := s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	out.Exercises = make([]Exercise, len(s.Exercises))
	for i, e := range s.Exercises {
		out.Exercises[i] = e.clone()
	}
	return out
}

func (e Exercise) clone() Exercise {
	return Exercise{Name: e.Name, Sets: append([]Set(nil), e.Sets...)}
}
