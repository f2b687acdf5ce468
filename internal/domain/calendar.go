package domain

import "fmt"

const (
	monthsPerYear = 12
	february      = 2
)

// daysPerMonth holds month lengths for a common (non-leap) year.
var daysPerMonth = [monthsPerYear + 1]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month of year, or 0 if month is out of range.
func DaysIn(month, year int) int {
	if month < 1 || month > monthsPerYear {
		return 0
	}

	if month == february && IsLeapYear(year) {
		return daysPerMonth[month] + 1
	}

	return daysPerMonth[month]
}

// ValidateDate checks that d names a real Gregorian calendar day.
// field prefixes the reported field names (e.g. "birthDate").
//
// ComputeAge never calls this. Callers opt in explicitly.
func ValidateDate(field string, d Date) error {
	if d.Month < 1 || d.Month > monthsPerYear {
		return NewValidationErrorWithValue(field+".month", "must be between 1 and 12", d.Month)
	}

	maxDay := DaysIn(d.Month, d.Year)
	if d.Day < 1 || d.Day > maxDay {
		return NewValidationErrorWithValue(
			field+".day",
			fmt.Sprintf("must be between 1 and %d for %04d-%02d", maxDay, d.Year, d.Month),
			d.Day,
		)
	}

	return nil
}
