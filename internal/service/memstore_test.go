package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"medrecord/internal/model"
)

// memUserStore mirrors the repository contract closely enough to exercise
// the services without a database, including the expiry comparison the SQL
// layer performs. The clock is injectable so token expiry can be tested.
type memUserStore struct {
	mu   sync.Mutex
	byID map[string]model.User
	now  func() time.Time
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byID: map[string]model.User{},
		now:  time.Now,
	}
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	return err == nil, nil
}

func (s *memUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if strings.EqualFold(existing.Username, u.Username) {
			return model.ErrDuplicateUsername
		}
	}
	s.byID[u.ID] = u
	return nil
}

func (s *memUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.byID[userID]
	if !exists {
		return model.ErrUserNotFound
	}

	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
	u.UpdatedAt = s.now()
	s.byID[userID] = u
	return nil
}

func (s *memUserStore) TouchLastLogin(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.byID[userID]
	if !exists {
		return model.ErrUserNotFound
	}

	now := s.now()
	u.LastLogin = &now
	s.byID[userID] = u
	return nil
}

func (s *memUserStore) SaveResetToken(_ context.Context, userID string, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.byID[userID]
	if !exists {
		return model.ErrUserNotFound
	}

	u.ResetToken = &token
	u.ResetTokenExpiry = &expiry
	s.byID[userID] = u
	return nil
}

func (s *memUserStore) FindActiveByResetToken(_ context.Context, username string, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) &&
			u.IsActive &&
			u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(s.now()) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

// memPatientStore records calls; validation is what the service tests care
// about, not persistence.
type memPatientStore struct {
	mu       sync.Mutex
	patients map[string]model.Patient
	deleted  []string
}

func newMemPatientStore() *memPatientStore {
	return &memPatientStore{patients: map[string]model.Patient{}}
}

func (s *memPatientStore) List(_ context.Context) ([]model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p)
	}
	return out, nil
}

func (s *memPatientStore) FindByID(_ context.Context, id string) (model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.patients[id]
	if !exists {
		return model.Patient{}, model.ErrPatientNotFound
	}
	return p, nil
}

func (s *memPatientStore) Create(_ context.Context, p model.Patient, createdBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.CreatedBy = createdBy
	s.patients[p.ID] = p
	return nil
}

func (s *memPatientStore) Update(_ context.Context, p model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.patients[p.ID]; !exists {
		return model.ErrPatientNotFound
	}
	s.patients[p.ID] = p
	return nil
}

func (s *memPatientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.patients[id]; !exists {
		return model.ErrPatientNotFound
	}
	delete(s.patients, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memPatientStore) Options(_ context.Context) ([]model.PatientOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.PatientOption, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, model.PatientOption{ID: p.ID, Name: p.Name, Surname: p.Surname})
	}
	return out, nil
}

type memMedicationStore struct {
	mu          sync.Mutex
	medications map[string]model.Medication
	names       []string
}

func newMemMedicationStore() *memMedicationStore {
	return &memMedicationStore{medications: map[string]model.Medication{}}
}

func (s *memMedicationStore) List(_ context.Context) ([]model.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Medication, 0, len(s.medications))
	for _, m := range s.medications {
		out = append(out, m)
	}
	return out, nil
}

func (s *memMedicationStore) FindByID(_ context.Context, id string) (model.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.medications[id]
	if !exists {
		return model.Medication{}, model.ErrMedicationNotFound
	}
	return m, nil
}

func (s *memMedicationStore) Create(_ context.Context, m model.Medication, prescribedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.PrescribedBy = prescribedBy
	s.medications[m.ID] = m
	return nil
}

func (s *memMedicationStore) Update(_ context.Context, m model.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.medications[m.ID]; !exists {
		return model.ErrMedicationNotFound
	}
	s.medications[m.ID] = m
	return nil
}

func (s *memMedicationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.medications[id]; !exists {
		return model.ErrMedicationNotFound
	}
	delete(s.medications, id)
	return nil
}

func (s *memMedicationStore) AutocompleteNames(_ context.Context, term string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{}
	for _, name := range s.names {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(name), strings.ToLower(term)) {
			out = append(out, name)
		}
	}
	return out, nil
}

type memLookupStore struct {
	countries []model.Country
	genders   []model.Gender
	towns     map[string][]model.Town
}

func (s *memLookupStore) Countries(_ context.Context) ([]model.Country, error) {
	return s.countries, nil
}

func (s *memLookupStore) Genders(_ context.Context) ([]model.Gender, error) {
	return s.genders, nil
}

func (s *memLookupStore) Towns(_ context.Context, countryID string) ([]model.Town, error) {
	return s.towns[countryID], nil
}
