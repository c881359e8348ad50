package extender

import (
	"fmt"
	"math"
)

// PlanRepeats returns how many copies of a file of durationSeconds are needed.
// An explicit times > 0 wins; otherwise the result is the smallest count whose
// total length reaches hours:minutes.
func PlanRepeats(durationSeconds float64, hours, minutes, times int) (int, error) {
	if hours < 0 || minutes < 0 || times < 0 {
		return 0, ErrInvalidIntent
	}
	if times > 0 {
		return times, nil
	}

	target := hours*3600 + minutes*60
	if target == 0 {
		return 0, ErrNoRepeatTarget
	}
	if durationSeconds <= 0 || math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, durationSeconds)
	}

	repeat := int(math.Ceil(float64(target) / durationSeconds))
	// Float division can land one off either way
	for float64(repeat)*durationSeconds < float64(target) {
		repeat++
	}
	for repeat > 1 && float64(repeat-1)*durationSeconds >= float64(target) {
		repeat--
	}
	if repeat < 1 {
		repeat = 1
	}
	return repeat, nil
}
