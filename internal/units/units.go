// Package units provides shared constants and validation for time period units
package units

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/banshee-data/stcluster/internal/temporal"
)

// Period unit constants
const (
	Seconds = "seconds"
	Minutes = "minutes"
	Hours   = "hours"
	Days    = "days"
)

// ValidUnits contains all valid period unit values
var ValidUnits = []string{Seconds, Minutes, Hours, Days}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// UnitSeconds returns the length of one unit in seconds, or 0 for an unknown unit
func UnitSeconds(unit string) float64 {
	switch unit {
	case Seconds:
		return 1
	case Minutes:
		return 60
	case Hours:
		return 3600
	case Days:
		return 86400
	default:
		return 0
	}
}

// PeriodSeconds converts value in the given unit to seconds
func PeriodSeconds(value float64, unit string) (float64, error) {
	if !IsValid(unit) {
		return 0, fmt.Errorf("invalid time unit %q, must be one of: %s", unit, GetValidUnitsString())
	}
	return value * UnitSeconds(unit), nil
}

// ToDuration converts value in the given unit to a time.Duration. Values
// beyond the range of time.Duration saturate.
func ToDuration(value float64, unit string) (time.Duration, error) {
	secs, err := PeriodSeconds(value, unit)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(secs) {
		return 0, fmt.Errorf("time value is not a number")
	}
	return temporal.FromSeconds(secs), nil
}

// PercentToRatio converts a percentage in [0,100] to a ratio in [0,1]
func PercentToRatio(percent float64) (float64, error) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return 0, fmt.Errorf("percentage must be between 0 and 100, got %v", percent)
	}
	return percent / 100, nil
}
