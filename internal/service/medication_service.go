package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"medrecord/internal/model"
	"medrecord/pkg/apierror"
)

const (
	autocompleteMinTermLen = 2
	autocompleteLimit      = 10
)

type MedicationInput struct {
	PatientID  string
	Name       string
	SystemDate string
	Remarks    string
}

type MedicationService struct {
	medications MedicationStore
}

func NewMedicationService(medications MedicationStore) *MedicationService {
	return &MedicationService{medications: medications}
}

func (s *MedicationService) List(ctx context.Context) ([]model.Medication, error) {
	return s.medications.List(ctx)
}

func (s *MedicationService) Get(ctx context.Context, id string) (model.Medication, error) {
	if strings.TrimSpace(id) == "" {
		return model.Medication{}, apierror.New("VALIDATION", "Invalid medication ID", "id", http.StatusBadRequest)
	}
	return s.medications.FindByID(ctx, id)
}

// Create records a prescription. The caller has already passed the role
// gate; prescribedBy is the session identity for the audit trail.
func (s *MedicationService) Create(ctx context.Context, in MedicationInput, prescribedBy string) (model.Medication, error) {
	if err := validateMedicationInput(in); err != nil {
		return model.Medication{}, err
	}

	m := medicationFromInput(in)
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()

	if err := s.medications.Create(ctx, m, prescribedBy); err != nil {
		return model.Medication{}, err
	}
	return m, nil
}

func (s *MedicationService) Update(ctx context.Context, id string, in MedicationInput) error {
	if strings.TrimSpace(id) == "" {
		return apierror.New("VALIDATION", "Invalid medication ID", "id", http.StatusBadRequest)
	}
	if err := validateMedicationInput(in); err != nil {
		return err
	}

	m := medicationFromInput(in)
	m.ID = id
	return s.medications.Update(ctx, m)
}

func (s *MedicationService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apierror.New("VALIDATION", "Invalid medication ID", "id", http.StatusBadRequest)
	}
	return s.medications.Delete(ctx, id)
}

// Autocomplete returns up to ten distinct medication names matching term.
// Terms shorter than two characters yield no suggestions.
func (s *MedicationService) Autocomplete(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if len(term) < autocompleteMinTermLen {
		return []string{}, nil
	}
	return s.medications.AutocompleteNames(ctx, term, autocompleteLimit)
}

func validateMedicationInput(in MedicationInput) error {
	if strings.TrimSpace(in.PatientID) == "" || strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.SystemDate) == "" || strings.TrimSpace(in.Remarks) == "" {
		return apierror.New("VALIDATION", "All fields required", "", http.StatusBadRequest)
	}

	if _, err := time.Parse(dateLayout, strings.TrimSpace(in.SystemDate)); err != nil {
		return apierror.New("VALIDATION", "System date must be YYYY-MM-DD", "system_date", http.StatusBadRequest)
	}

	return nil
}

func medicationFromInput(in MedicationInput) model.Medication {
	return model.Medication{
		PatientID:  strings.TrimSpace(in.PatientID),
		Name:       strings.TrimSpace(in.Name),
		SystemDate: strings.TrimSpace(in.SystemDate),
		Remarks:    strings.TrimSpace(in.Remarks),
	}
}
