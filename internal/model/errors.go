package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNameTaken    = errors.New("user name already exists")
	ErrUserNameRequired = errors.New("user name is required")
	ErrUnknownAvatar    = errors.New("unknown avatar")
	ErrUnknownCategory  = errors.New("unknown point category")
	ErrNegativeDebt     = errors.New("debt cannot be negative")
	ErrEmptyPointDelta  = errors.New("no point changes given")

	// Registration errors
	ErrRegistrationNotFound   = errors.New("registration not found")
	ErrInvalidWeek            = errors.New("invalid week")
	ErrEmptyRegistration      = errors.New("registration has no point changes")
	ErrDojosAlreadyRegistered = errors.New("dojos already registered for this user and week")

	// Wager errors
	ErrWagerNotFound        = errors.New("wager not found")
	ErrWagerNotPending      = errors.New("wager is not pending")
	ErrWinnerNotParticipant = errors.New("winner is not a participant")
	ErrTooFewParticipants   = errors.New("a wager needs at least two participants")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrInvalidStake         = errors.New("stake must be greater than zero")

	// Bank errors
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// Highscore errors
	ErrUnknownGame       = errors.New("unknown game")
	ErrHighscoreNotFound = errors.New("highscore not found")
	ErrInvalidScore      = errors.New("score cannot be negative")

	// Rifa errors
	ErrRifaNotFound    = errors.New("rifa not found")
	ErrEmptyRifa       = errors.New("rifa has no assignments")
	ErrInvalidRifaItem = errors.New("rifa items and players must not be empty")
)

// ValidationError reports a malformed or missing request field
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
