package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lmoren/taskdeck-be/internal/services"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// writeJSON writes a JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}

// writeSuccess writes the uniform success envelope with extra fields merged in.
func writeSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError writes the uniform error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeServiceError maps a store error onto the HTTP status taxonomy.
// Unclassified errors are logged and surfaced as a generic message only.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		// Deliberately generic so accounts cannot be enumerated.
		writeError(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("Unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// checkPayload validates a decoded payload and, on failure, writes a 400
// with the first offending field. Returns false when the payload is invalid.
func checkPayload(w http.ResponseWriter, payload any) bool {
	err := validate.Struct(payload)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, fieldErrs[0].Field()+": "+validationMessage(fieldErrs[0]))
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request data")
	return false
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "min":
		return "value is too short"
	case "oneof":
		return "must be one of: " + err.Param()
	default:
		return "invalid value"
	}
}
