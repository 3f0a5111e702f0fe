package web

import (
	"errors"
	"net/http"

	"meal-manager/internal"
	"meal-manager/internal/auth"
	"meal-manager/internal/meals"
	"meal-manager/internal/users"
)

// apiError is returned by route funcs that already know the status and message.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

func badRequest(message string) error {
	return &apiError{Status: http.StatusBadRequest, Message: message}
}

func notFound(message string) error {
	return &apiError{Status: http.StatusNotFound, Message: message}
}

var sentinels = []struct {
	err     error
	status  int
	message string
}{
	{internal.ErrInvalidID, http.StatusBadRequest, "Invalid id"},
	{internal.ErrInvalidMonth, http.StatusBadRequest, "Invalid month, expected YYYY-MM"},
	{internal.ErrInvalidDate, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD"},
	{internal.ErrInvalidAmount, http.StatusBadRequest, "Invalid amount, expected a number"},
	{auth.ErrMissingCredentials, http.StatusBadRequest, "Missing fields"},
	{auth.ErrPasswordTooLong, http.StatusBadRequest, "Password is too long"},
	{meals.ErrMissingFields, http.StatusBadRequest, "Missing fields"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{users.ErrNotFound, http.StatusNotFound, "User not found"},
	{meals.ErrNotFound, http.StatusNotFound, "Meal not found"},
	{users.ErrUserExists, http.StatusConflict, "User already exists"},
}

func statusFor(err error) (int, string) {
	var api *apiError
	if errors.As(err, &api) {
		return api.Status, api.Message
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status, s.message
		}
	}

	return http.StatusInternalServerError, "Internal Server Error"
}
