package http

import (
	"errors"
	"net/http"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/security"
	"toolshed-backend/internal/service"
)

func logError(r *http.Request, err error) {
	logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "uri", r.URL.RequestURI(), "error", err)
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	if err := writeJSON(w, status, envelope{"error": message}, nil); err != nil {
		logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logError(r, err)
	errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	errorResponse(w, r, http.StatusBadRequest, fields)
}

// readErrorResponse reports a body that failed to decode or validate.
func readErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		failedValidationResponse(w, r, validationErr.Fields)
		return
	}
	badRequestResponse(w, r, err)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// serviceErrorResponse maps service and domain errors onto HTTP statuses.
func serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		failedValidationResponse(w, r, validationErr.Fields)
	case errors.Is(err, domain.ErrNotFound):
		errorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		errorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrWrongTokenType):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, service.ErrAccountInactive):
		forbiddenResponse(w, r, err.Error())
	default:
		serverErrorResponse(w, r, err)
	}
}
