package service

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"medrecord/internal/model"
	"medrecord/pkg/apierror"
)

// Patient numbers are seven digits followed by an uppercase letter,
// e.g. 1234567A. The field itself is optional.
var patientNumberPattern = regexp.MustCompile(`^[0-9]{7}[A-Z]$`)

const dateLayout = "2006-01-02"

type PatientInput struct {
	Number    string
	Name      string
	Surname   string
	DOB       string
	Address1  string
	Address2  string
	Address3  string
	TownID    string
	CountryID string
	GenderID  string
}

type PatientService struct {
	patients PatientStore
	lookups  LookupStore
}

func NewPatientService(patients PatientStore, lookups LookupStore) *PatientService {
	return &PatientService{patients: patients, lookups: lookups}
}

func (s *PatientService) List(ctx context.Context) ([]model.Patient, error) {
	return s.patients.List(ctx)
}

func (s *PatientService) Get(ctx context.Context, id string) (model.Patient, error) {
	if strings.TrimSpace(id) == "" {
		return model.Patient{}, apierror.New("VALIDATION", "Invalid patient ID", "id", http.StatusBadRequest)
	}
	return s.patients.FindByID(ctx, id)
}

func (s *PatientService) Create(ctx context.Context, in PatientInput, createdBy string) (model.Patient, error) {
	if err := validatePatientInput(in); err != nil {
		return model.Patient{}, err
	}

	p := patientFromInput(in)
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()

	if err := s.patients.Create(ctx, p, createdBy); err != nil {
		return model.Patient{}, err
	}
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, id string, in PatientInput) error {
	if strings.TrimSpace(id) == "" {
		return apierror.New("VALIDATION", "Invalid patient ID", "id", http.StatusBadRequest)
	}
	if err := validatePatientInput(in); err != nil {
		return err
	}

	p := patientFromInput(in)
	p.ID = id
	return s.patients.Update(ctx, p)
}

func (s *PatientService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apierror.New("VALIDATION", "Invalid patient ID", "id", http.StatusBadRequest)
	}
	return s.patients.Delete(ctx, id)
}

// Dropdowns bundles the reference data every patient form needs.
func (s *PatientService) Dropdowns(ctx context.Context) ([]model.Country, []model.Gender, []model.PatientOption, error) {
	countries, err := s.lookups.Countries(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	genders, err := s.lookups.Genders(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	options, err := s.patients.Options(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	return countries, genders, options, nil
}

func (s *PatientService) Towns(ctx context.Context, countryID string) ([]model.Town, error) {
	if strings.TrimSpace(countryID) == "" {
		return []model.Town{}, nil
	}
	return s.lookups.Towns(ctx, countryID)
}

func validatePatientInput(in PatientInput) error {
	missing := []string{}
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Surname) == "" {
		missing = append(missing, "surname")
	}
	if strings.TrimSpace(in.CountryID) == "" {
		missing = append(missing, "country_id")
	}
	if strings.TrimSpace(in.TownID) == "" {
		missing = append(missing, "town_id")
	}
	if strings.TrimSpace(in.GenderID) == "" {
		missing = append(missing, "gender_id")
	}
	if len(missing) > 0 {
		return apierror.New("VALIDATION", "Required fields missing: "+strings.Join(missing, ", "), "", http.StatusBadRequest)
	}

	if number := strings.TrimSpace(in.Number); number != "" && !patientNumberPattern.MatchString(number) {
		return apierror.New("VALIDATION", "Patient number must be 7 digits followed by a letter (e.g. 1234567A)", "patient_number", http.StatusBadRequest)
	}

	if dob := strings.TrimSpace(in.DOB); dob != "" {
		if _, err := time.Parse(dateLayout, dob); err != nil {
			return apierror.New("VALIDATION", "Date of birth must be YYYY-MM-DD", "dob", http.StatusBadRequest)
		}
	}

	return nil
}

func patientFromInput(in PatientInput) model.Patient {
	return model.Patient{
		Number:    strings.TrimSpace(in.Number),
		Name:      strings.TrimSpace(in.Name),
		Surname:   strings.TrimSpace(in.Surname),
		DOB:       strings.TrimSpace(in.DOB),
		Address1:  strings.TrimSpace(in.Address1),
		Address2:  strings.TrimSpace(in.Address2),
		Address3:  strings.TrimSpace(in.Address3),
		TownID:    strings.TrimSpace(in.TownID),
		CountryID: strings.TrimSpace(in.CountryID),
		GenderID:  strings.TrimSpace(in.GenderID),
	}
}
