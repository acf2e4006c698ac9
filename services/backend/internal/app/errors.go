package app

import "errors"

var (
	// ErrUserExists is returned when registering an email that is already taken.
	ErrUserExists = errors.New("User already exists")
	// ErrUserNotFound is returned for unknown ids and unknown login emails.
	ErrUserNotFound = errors.New("User not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	ErrRequiredFields   = errors.New("Please fill in all required fields.")
	ErrInvalidUserType  = errors.New("userType must be VISUALLY_IMPAIRED or GUIDE")
	ErrPasswordRequired = errors.New("currentPassword and newPassword are required")

	ErrFaceNameRequired  = errors.New("name is required")
	ErrFaceImageRequired = errors.New("imageUrl is required")

	// ErrForbidden is returned when the caller's role or device does not allow the action.
	ErrForbidden      = errors.New("forbidden")
	ErrNoDevice       = errors.New("account has no paired deviceId")
	ErrAlertsDisabled = errors.New("alerts are not configured")
)
