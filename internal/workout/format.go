package workout

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is the weight unit printed next to every set.
type Unit string

const (
	// UnitKg prints weights in kilograms.
	UnitKg Unit = "kg"
	// UnitLbs prints weights in pounds.
	UnitLbs Unit = "lbs"
)

// ParseUnit maps a config value to a Unit, defaulting to kilograms.
func ParseUnit(raw string) Unit {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lb", "lbs":
		return UnitLbs
	default:
		return UnitKg
	}
}

const (
	historyDateLayout = "2006-01-02"
	historyTimeLayout = "15:04"
)

// Formatter renders sessions into chat replies. It has no state besides its
// configuration, so equal inputs always give equal strings.
type Formatter struct {
	Unit Unit
	// Now is used for sessions that have not been stamped with an end time yet.
	Now func() time.Time
	// Location applies to dates shown in history; UTC when nil.
	Location *time.Location
}

// NewFormatter returns a Formatter with the given unit and the wall clock.
func NewFormatter(unit Unit) Formatter {
	return Formatter{Unit: unit, Now: time.Now}
}

func (f Formatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f Formatter) unit() Unit {
	if f.Unit == "" {
		return UnitKg
	}
	return f.Unit
}

func (f Formatter) loc() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// Weight prints a weight without trailing zeros, e.g. "225kg" or "22.5kg".
func (f Formatter) Weight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + string(f.unit())
}

// Set prints "225kg x 12 reps".
func (f Formatter) Set(s Set) string {
	return fmt.Sprintf("%s x %d reps", f.Weight(s.Weight), s.Reps)
}

// SessionSummary renders the report shown when a workout is finished.
func (f Formatter) SessionSummary(s Session) string {
	var b strings.Builder
	b.WriteString("YEAH BUDDY! Training session completed! 💪\n\n")
	fmt.Fprintf(&b, "Duration: %d minutes\n\n", s.Minutes(f.now()))
	b.WriteString("Exercises:\n")
	for _, e := range s.Exercises {
		fmt.Fprintf(&b, "\n%s:\n", e.Name)
		for i, set := range e.Sets {
			fmt.Fprintf(&b, "Set %d: %s\n", i+1, f.Set(set))
		}
	}
	return b.String()
}

// SetSummary confirms the last set of e and lists every set logged for it so far.
func (f Formatter) SetSummary(e Exercise) string {
	last, _ := e.LastSet()
	var b strings.Builder
	fmt.Fprintf(&b, "LIGHTWEIGHT BABY! Set logged for %s:\n", e.Name)
	fmt.Fprintf(&b, "%s 💪\n\n", f.Set(last))
	b.WriteString("Sets this exercise:\n")
	for i, set := range e.Sets {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Set(set))
	}
	return b.String()
}

// HistoryList renders saved sessions, newest first. total is the number of
// sessions the owner has; extra ones are summarised in a trailing line.
func (f Formatter) HistoryList(sessions []Session, total int) string {
	if len(sessions) == 0 {
		return "No workout history found! 💪\nStart your first workout with /pumpit to build your gym legacy!"
	}
	var b strings.Builder
	b.WriteString("🏋️‍♂️ YOUR WORKOUT HISTORY 🏋️‍♂️\n\n")
	for i, s := range sessions {
		fmt.Fprintf(&b, "%d. %s (%d min)\n", i+1, s.StartTime.In(f.loc()).Format(historyDateLayout), s.Minutes(f.now()))
		fmt.Fprintf(&b, "   %d exercises, %d sets\n\n", len(s.Exercises), s.TotalSets())
	}
	if total > len(sessions) {
		fmt.Fprintf(&b, "... and %d more sessions!\n", total-len(sessions))
	}
	b.WriteString("\nYEAH BUDDY! Keep crushing it! 💪")
	return b.String()
}

// SessionDetails renders one saved session in full.
func (f Formatter) SessionDetails(s Session) string {
	start := s.StartTime.In(f.loc())
	var b strings.Builder
	fmt.Fprintf(&b, "📅 WORKOUT SESSION - %s at %s\n", start.Format(historyDateLayout), start.Format(historyTimeLayout))
	fmt.Fprintf(&b, "⏱️ Duration: %d minutes\n\n", s.Minutes(f.now()))
	if len(s.Exercises) == 0 {
		b.WriteString("No exercises recorded in this session.\n")
	} else {
		b.WriteString("EXERCISES:\n")
		for i, e := range s.Exercises {
			fmt.Fprintf(&b, "\n%d. %s 🎯\n", i+1, strings.ToUpper(e.Name))
			if len(e.Sets) == 0 {
				b.WriteString("   No sets recorded\n")
				continue
			}
			for j, set := range e.Sets {
				fmt.Fprintf(&b, "   Set %d: %s\n", j+1, f.Set(set))
			}
		}
	}
	b.WriteString("\nLIGHTWEIGHT BABY! 🏋️‍♂️💪")
	return b.String()
}

// WorkoutSaved confirms a workout submitted from the mini app.
func (f Formatter) WorkoutSaved(s Session) string {
	return fmt.Sprintf("YEAH BUDDY! 🏋️‍♂️ Workout saved successfully!\n\n💪 %d exercises completed\n🔥 %d total sets\n\nKeep pushing those limits! LIGHT WEIGHT BABY! 💪",
		len(s.Exercises), s.TotalSets())
}
