package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

// APIError is the body of every error response
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Common error codes
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeValidation             = "VALIDATION_ERROR"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeAuthDisabled           = "AUTH_DISABLED"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeUserNameTaken          = "USER_NAME_TAKEN"
	CodeUnknownAvatar          = "UNKNOWN_AVATAR"
	CodeUnknownCategory        = "UNKNOWN_CATEGORY"
	CodeRegistrationNotFound   = "REGISTRATION_NOT_FOUND"
	CodeInvalidWeek            = "INVALID_WEEK"
	CodeDojosAlreadyRegistered = "DOJOS_ALREADY_REGISTERED"
	CodeWagerNotFound          = "WAGER_NOT_FOUND"
	CodeWagerNotPending        = "WAGER_NOT_PENDING"
	CodeUnknownGame            = "UNKNOWN_GAME"
	CodeHighscoreNotFound      = "HIGHSCORE_NOT_FOUND"
	CodeRifaNotFound           = "RIFA_NOT_FOUND"
	CodeConflict               = "CONFLICT"
	CodeNotFound               = "NOT_FOUND"
	CodeInternalError          = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// mapping ties a sentinel to a status and code. The error text is the message.
type mapping struct {
	err    error
	status int
	code   string
}

var mappings = []mapping{
	// Not found
	{model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
	{model.ErrRegistrationNotFound, http.StatusNotFound, CodeRegistrationNotFound},
	{model.ErrWagerNotFound, http.StatusNotFound, CodeWagerNotFound},
	{model.ErrHighscoreNotFound, http.StatusNotFound, CodeHighscoreNotFound},
	{model.ErrRifaNotFound, http.StatusNotFound, CodeRifaNotFound},

	// State and uniqueness conflicts
	{model.ErrUserNameTaken, http.StatusConflict, CodeUserNameTaken},
	{model.ErrDojosAlreadyRegistered, http.StatusConflict, CodeDojosAlreadyRegistered},
	{model.ErrWagerNotPending, http.StatusConflict, CodeWagerNotPending},
	{storage.ErrConflict, http.StatusConflict, CodeConflict},

	// Validation
	{model.ErrUnknownAvatar, http.StatusBadRequest, CodeUnknownAvatar},
	{model.ErrUnknownCategory, http.StatusBadRequest, CodeUnknownCategory},
	{model.ErrInvalidWeek, http.StatusBadRequest, CodeInvalidWeek},
	{model.ErrUnknownGame, http.StatusBadRequest, CodeUnknownGame},
	{model.ErrUserNameRequired, http.StatusBadRequest, CodeValidation},
	{model.ErrNegativeDebt, http.StatusBadRequest, CodeValidation},
	{model.ErrEmptyPointDelta, http.StatusBadRequest, CodeValidation},
	{model.ErrEmptyRegistration, http.StatusBadRequest, CodeValidation},
	{model.ErrWinnerNotParticipant, http.StatusBadRequest, CodeValidation},
	{model.ErrTooFewParticipants, http.StatusBadRequest, CodeValidation},
	{model.ErrDuplicateParticipant, http.StatusBadRequest, CodeValidation},
	{model.ErrInvalidStake, http.StatusBadRequest, CodeValidation},
	{model.ErrInvalidAmount, http.StatusBadRequest, CodeValidation},
	{model.ErrInvalidScore, http.StatusBadRequest, CodeValidation},
	{model.ErrEmptyRifa, http.StatusBadRequest, CodeValidation},
	{model.ErrInvalidRifaItem, http.StatusBadRequest, CodeValidation},

	// Auth
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
	{auth.ErrDisabled, http.StatusBadRequest, CodeAuthDisabled},
}

// WriteError writes an error response. Unmapped errors become a 500 and are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	he := toHTTPError(err)
	if he.status == http.StatusInternalServerError {
		slog.Default().Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.apiError)
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, APIError{ve.Error(), CodeValidation}}
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{err.Error(), m.code}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{"Internal server error", CodeInternalError}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{message, CodeInvalidRequest}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{"Authentication required", CodeUnauthorized}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{"Route not found", CodeNotFound}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{"Internal server error", CodeInternalError}}
}
