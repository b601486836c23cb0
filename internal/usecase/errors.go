package usecase

import "errors"

// Failure kinds surfaced to the HTTP boundary. Handlers map these onto
// status codes; the service layer never touches echo.
var (
	ErrFieldsRequired          = errors.New("all fields are required")
	ErrInvalidEmail            = errors.New("invalid email format")
	ErrPasswordTooShort        = errors.New("password must be at least 6 characters")
	ErrPasswordConfirmMismatch = errors.New("password confirmation does not match")
	ErrEmailTaken              = errors.New("email already in use")

	// Both an unknown email and a wrong password collapse into this one
	// error so responses cannot be used to probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("invalid token")
	ErrDiscardedToken = errors.New("discarded token")
	ErrNoUser         = errors.New("no user matches the token")

	ErrResumeNotFound  = errors.New("resume not found")
	ErrRoleForbidden   = errors.New("insufficient role")
	ErrAboutMeTooShort = errors.New("aboutMe must be at least 150 characters")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrInvalidStatus   = errors.New("unknown resume status")
	ErrReasonRequired  = errors.New("reason is required")
)
