package domain

// Date is a calendar date given as separate day, month and year components.
// Values are taken literally; see ValidateDate for the opt-in calendar checks.
type Date struct {
	Day   int
	Month int
	Year  int
}

// ComputeAge returns the number of whole years between a birth date and a
// reference date. The year difference is reduced by one when the reference
// month/day falls earlier in the calendar year than the birth month/day.
//
// The function is total: any six integers yield a result, including negative
// ages when the reference date precedes the birth date. Day and month values
// are compared numerically and are never checked against the calendar.
func ComputeAge(birthDay, birthMonth, birthYear, refDay, refMonth, refYear int) int {
	age := refYear - birthYear

	if refMonth < birthMonth || (refMonth == birthMonth && refDay < birthDay) {
		age--
	}

	return age
}

// AgeBetween is ComputeAge for Date values.
func AgeBetween(birth, ref Date) int {
	return ComputeAge(birth.Day, birth.Month, birth.Year, ref.Day, ref.Month, ref.Year)
}

// Calculation sources.
const (
	// SourceLocal means the age was computed in-process.
	SourceLocal = "local"

	// SourceRemote means the age came from a remote calculator and matched the local rule.
	SourceRemote = "remote"

	// SourceLocalFallback means the remote calculator failed or disagreed and
	// the in-process result was used instead.
	SourceLocalFallback = "local-fallback"
)

// Calculation is the outcome of one age computation.
type Calculation struct {
	// Birth is the birth date as supplied by the caller.
	Birth Date

	// Reference is the date the age is measured against.
	Reference Date

	// Age is the number of whole years elapsed.
	Age int

	// Source identifies which calculator produced Age.
	Source string

	// Strict reports whether calendar validation was applied.
	Strict bool
}
