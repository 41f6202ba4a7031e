package workout

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrSetFormat is returned for input that is not "<weight> <reps>".
var ErrSetFormat = errors.New("workout: set must be \"weight reps\"")

// ParseSet reads "225 12" style input: exactly two whitespace separated tokens,
// a positive weight and a positive whole number of reps.
func ParseSet(text string) (Set, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Set{}, ErrSetFormat
	}
	weight, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Set{}, ErrSetFormat
	}
	reps, err := strconv.Atoi(fields[1])
	if err != nil {
		return Set{}, ErrSetFormat
	}
	set := Set{Weight: weight, Reps: reps}
	if !set.Valid() {
		return Set{}, ErrSetFormat
	}
	return set, nil
}

// Valid reports whether the weight is a positive finite number and reps is positive.
func (s Set) Valid() bool {
	return s.Weight > 0 && !math.IsInf(s.Weight, 0) && s.Reps > 0
}
