package service

import (
	"context"
	"time"

	"medrecord/internal/model"
)

// Store interfaces are defined where they are consumed so services can be
// exercised against in-memory fakes. The pgx repositories satisfy them.

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	TouchLastLogin(ctx context.Context, userID string) error
	SaveResetToken(ctx context.Context, userID string, token string, expiry time.Time) error
	FindActiveByResetToken(ctx context.Context, username string, token string) (model.User, error)
}

type PatientStore interface {
	List(ctx context.Context) ([]model.Patient, error)
	FindByID(ctx context.Context, id string) (model.Patient, error)
	Create(ctx context.Context, p model.Patient, createdBy string) error
	Update(ctx context.Context, p model.Patient) error
	Delete(ctx context.Context, id string) error
	Options(ctx context.Context) ([]model.PatientOption, error)
}

type MedicationStore interface {
	List(ctx context.Context) ([]model.Medication, error)
	FindByID(ctx context.Context, id string) (model.Medication, error)
	Create(ctx context.Context, m model.Medication, prescribedBy string) error
	Update(ctx context.Context, m model.Medication) error
	Delete(ctx context.Context, id string) error
	AutocompleteNames(ctx context.Context, term string, limit int) ([]string, error)
}

type LookupStore interface {
	Countries(ctx context.Context) ([]model.Country, error)
	Genders(ctx context.Context) ([]model.Gender, error)
	Towns(ctx context.Context, countryID string) ([]model.Town, error)
}
