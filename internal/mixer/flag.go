// Package mixer checks WIDAR mixer frequency choices against the window
// set by fringe rate and recirculation bandwidth.
package mixer

import "fmt"

// Flag is the outcome of classifying a mixer frequency.
type Flag int

// Flags in the order they are checked; Okay is last.
const (
	Okay Flag = iota + 1
	Below
	Above
	Fail
)

func (f Flag) String() string {
	switch f {
	case Okay:
		return "OKAY"
	case Below:
		return "BELOW"
	case Above:
		return "ABOVE"
	case Fail:
		return "FAIL"
	default:
		return fmt.Sprintf("Flag(%d)", int(f))
	}
}

// Bad reports whether the flag marks an unusable frequency.
func (f Flag) Bad() bool {
	return f == Below || f == Above || f == Fail
}

// InvariantError is returned when a frequency fits none of the four cases:
// a NaN input, or a window collapsed to the point fmin == fmax with f off
// that point.
type InvariantError struct {
	F, FMin, FMax float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("mixer classification: no case covers f=%g fmin=%g fmax=%g", e.F, e.FMin, e.FMax)
}

// Classify places f against the window [fmin, fmax]. The cases are tested
// in order: an empty window fails, then under-shoot, then over-shoot,
// then inclusion.
func Classify(f, fmin, fmax float64) (Flag, error) {
	switch {
	case fmin > fmax:
		return Fail, nil
	case f < fmin && fmin < fmax:
		return Below, nil
	case fmin < fmax && fmax < f:
		return Above, nil
	case fmin <= f && f <= fmax:
		return Okay, nil
	}
	return 0, &InvariantError{F: f, FMin: fmin, FMax: fmax}
}
