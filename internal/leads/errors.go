package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrMissingFields is returned when a required field is absent or blank
	ErrMissingFields = errors.New("please provide all required fields")

	// ErrEmailTaken is returned when another lead already owns the email
	ErrEmailTaken = errors.New("a lead with this email already exists")

	// ErrNoUpdateFields is returned when an update payload contains no updatable field
	ErrNoUpdateFields = errors.New("no valid fields provided for update")

	// ErrInvalidSource is returned when source is outside the allowed set
	ErrInvalidSource = errors.New("invalid lead source")

	// ErrInvalidStatus is returned when status is outside the allowed set
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrScoreOutOfRange is returned when score falls outside [0,100]
	ErrScoreOutOfRange = errors.New("score must be between 0 and 100")

	// ErrNegativeLeadValue is returned when lead_value is negative
	ErrNegativeLeadValue = errors.New("lead_value must be non-negative")

	// ErrInvalidField is returned when an update value has the wrong type
	ErrInvalidField = errors.New("invalid field value")
)

// IsValidation reports whether err is a write-time validation failure,
// as opposed to a not-found or infrastructure error.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrMissingFields,
		ErrEmailTaken,
		ErrNoUpdateFields,
		ErrInvalidSource,
		ErrInvalidStatus,
		ErrScoreOutOfRange,
		ErrNegativeLeadValue,
		ErrInvalidField,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
