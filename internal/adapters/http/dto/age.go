package dto

import "github.com/jsamuelsen/age-service/internal/domain"

// DateRequest is a calendar date in a request body. Components are
// pointers so that an omitted field can be told apart from zero; any
// integer is accepted.
type DateRequest struct {
	Day   *int `json:"day"   validate:"required"`
	Month *int `json:"month" validate:"required"`
	Year  *int `json:"year"  validate:"required"`
}

// ToDomain converts a validated request date to a domain date.
func (d *DateRequest) ToDomain() domain.Date {
	return domain.Date{Day: *d.Day, Month: *d.Month, Year: *d.Year}
}

// CalculateAgeRequest is the body of POST /api/v1/ages and of each batch item.
type CalculateAgeRequest struct {
	BirthDate     *DateRequest `json:"birthDate"     validate:"required"`
	ReferenceDate *DateRequest `json:"referenceDate" validate:"required"`
	Strict        bool         `json:"strict"`
}

// AgeQuery is the query string of GET /api/v1/age.
type AgeQuery struct {
	BirthDay   *int `form:"birthDay"   validate:"required"`
	BirthMonth *int `form:"birthMonth" validate:"required"`
	BirthYear  *int `form:"birthYear"  validate:"required"`
	RefDay     *int `form:"refDay"     validate:"required"`
	RefMonth   *int `form:"refMonth"   validate:"required"`
	RefYear    *int `form:"refYear"    validate:"required"`
	Strict     bool `form:"strict"`
}

// Birth returns the birth date carried by the query.
func (q *AgeQuery) Birth() domain.Date {
	return domain.Date{Day: *q.BirthDay, Month: *q.BirthMonth, Year: *q.BirthYear}
}

// Reference returns the reference date carried by the query.
func (q *AgeQuery) Reference() domain.Date {
	return domain.Date{Day: *q.RefDay, Month: *q.RefMonth, Year: *q.RefYear}
}

// BatchAgeRequest is the body of POST /api/v1/ages/batch.
type BatchAgeRequest struct {
	Items []CalculateAgeRequest `json:"items" validate:"required,min=1,dive"`
}

// DateResponse is a calendar date echoed back to the caller.
type DateResponse struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// AgeResponse is the result of a single calculation.
type AgeResponse struct {
	Age           int          `json:"age"`
	BirthDate     DateResponse `json:"birthDate"`
	ReferenceDate DateResponse `json:"referenceDate"`
	Source        string       `json:"source"`
	Strict        bool         `json:"strict"`
}

// BatchAgeResult is one entry of a batch response. Exactly one of Age or
// Error is set.
type BatchAgeResult struct {
	Index  int          `json:"index"`
	Age    *int         `json:"age,omitempty"`
	Source string       `json:"source,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// BatchAgeResponse is the result of a batch calculation, in input order.
type BatchAgeResponse struct {
	Results []BatchAgeResult `json:"results"`
}

// NewAgeResponse converts a domain calculation to its response shape.
func NewAgeResponse(calc *domain.Calculation) *AgeResponse {
	return &AgeResponse{
		Age:           calc.Age,
		BirthDate:     newDateResponse(calc.Birth),
		ReferenceDate: newDateResponse(calc.Reference),
		Source:        calc.Source,
		Strict:        calc.Strict,
	}
}

// NewBatchAgeResult converts one batch outcome. A non-nil err is mapped
// through the same codes as a top-level error response.
func NewBatchAgeResult(index int, calc *domain.Calculation, err error) BatchAgeResult {
	if err != nil {
		_, resp := MapDomainError(err)
		return BatchAgeResult{Index: index, Error: &resp.Error}
	}

	age := calc.Age

	return BatchAgeResult{Index: index, Age: &age, Source: calc.Source}
}

func newDateResponse(d domain.Date) DateResponse {
	return DateResponse{Day: d.Day, Month: d.Month, Year: d.Year}
}
