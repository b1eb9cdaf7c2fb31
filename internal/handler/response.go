package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"medrecord/internal/model"
	"medrecord/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError turns any error into the flat {success, message, code} shape.
// Store sentinels get their own mapping; everything unclassified is a 500
// with a generic message so datastore detail never reaches the client.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	env := model.Envelope{
		Success: false,
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		env.Code = apiErr.Code
		env.Message = apiErr.Message
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		env.Code = "NOT_FOUND"
		env.Message = "User not found"
	case errors.Is(err, model.ErrDuplicateUsername):
		status = http.StatusBadRequest
		env.Code = "DUPLICATE_USERNAME"
		env.Message = "Username already exists"
	case errors.Is(err, model.ErrPatientNotFound):
		status = http.StatusNotFound
		env.Code = "NOT_FOUND"
		env.Message = "Patient not found"
	case errors.Is(err, model.ErrMedicationNotFound):
		status = http.StatusNotFound
		env.Code = "NOT_FOUND"
		env.Message = "Medication not found"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, env)
}
