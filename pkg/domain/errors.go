package domain

import "errors"

var (
	// ErrDuplicateAccount is returned when the email is already registered.
	ErrDuplicateAccount = errors.New("An account with this email already exists. Please log in.")
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("Invalid email or password.")
	// ErrDeviceAccess is returned when a camera or location source refuses access.
	ErrDeviceAccess = errors.New("device access denied")
	// ErrAssistantUnavailable is returned when no AI completion key is configured.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)

// ValidationError reports a missing or malformed field.
// Message is shown inline next to the triggering control.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
