package model

import "errors"

// Store-level sentinels. Repositories return these; services translate them
// into client-facing API errors so datastore details never leak outward.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")

	ErrPatientNotFound    = errors.New("patient not found")
	ErrMedicationNotFound = errors.New("medication not found")
)
