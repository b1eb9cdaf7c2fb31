package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"medrecord/internal/model"
)

// In-memory stores backing the gateway tests. They mirror the behavior the
// pgx repositories promise: case-insensitive usernames, sentinel errors for
// missing rows, and reset tokens cleared by a password write.

type fakeUserStore struct {
	mu   sync.Mutex
	byID map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]model.User{}}
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (s *fakeUserStore) Create(_ context.Context, u model.User) error {
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

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.byID[userID]
	if !exists {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
	s.byID[userID] = u
	return nil
}

func (s *fakeUserStore) TouchLastLogin(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.byID[userID]
	if !exists {
		return model.ErrUserNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	s.byID[userID] = u
	return nil
}

func (s *fakeUserStore) SaveResetToken(_ context.Context, userID string, token string, expiry time.Time) error {
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

func (s *fakeUserStore) FindActiveByResetToken(_ context.Context, username string, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if !strings.EqualFold(u.Username, username) || !u.IsActive {
			continue
		}
		if u.ResetToken == nil || u.ResetTokenExpiry == nil {
			continue
		}
		if *u.ResetToken != token || !u.ResetTokenExpiry.After(time.Now()) {
			continue
		}
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

type fakePatientStore struct {
	mu   sync.Mutex
	byID map[string]model.Patient
}

func newFakePatientStore() *fakePatientStore {
	return &fakePatientStore{byID: map[string]model.Patient{}}
}

func (s *fakePatientStore) List(_ context.Context) ([]model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Patient, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakePatientStore) FindByID(_ context.Context, id string) (model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.byID[id]
	if !exists {
		return model.Patient{}, model.ErrPatientNotFound
	}
	return p, nil
}

func (s *fakePatientStore) Create(_ context.Context, p model.Patient, createdBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.CreatedBy = createdBy
	s.byID[p.ID] = p
	return nil
}

func (s *fakePatientStore) Update(_ context.Context, p model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.byID[p.ID]
	if !exists {
		return model.ErrPatientNotFound
	}
	p.CreatedBy = existing.CreatedBy
	s.byID[p.ID] = p
	return nil
}

func (s *fakePatientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return model.ErrPatientNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *fakePatientStore) Options(_ context.Context) ([]model.PatientOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.PatientOption, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, model.PatientOption{ID: p.ID, Name: p.Name, Surname: p.Surname})
	}
	return out, nil
}

type fakeMedicationStore struct {
	mu    sync.Mutex
	byID  map[string]model.Medication
	names []string
}

func newFakeMedicationStore() *fakeMedicationStore {
	return &fakeMedicationStore{byID: map[string]model.Medication{}}
}

func (s *fakeMedicationStore) List(_ context.Context) ([]model.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Medication, 0, len(s.byID))
	for _, m := range s.byID {
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeMedicationStore) FindByID(_ context.Context, id string) (model.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.byID[id]
	if !exists {
		return model.Medication{}, model.ErrMedicationNotFound
	}
	return m, nil
}

func (s *fakeMedicationStore) Create(_ context.Context, m model.Medication, prescribedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.PrescribedBy = prescribedBy
	s.byID[m.ID] = m
	return nil
}

func (s *fakeMedicationStore) Update(_ context.Context, m model.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[m.ID]; !exists {
		return model.ErrMedicationNotFound
	}
	s.byID[m.ID] = m
	return nil
}

func (s *fakeMedicationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return model.ErrMedicationNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *fakeMedicationStore) AutocompleteNames(_ context.Context, term string, limit int) ([]string, error) {
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

type fakeLookupStore struct{}

func (fakeLookupStore) Countries(_ context.Context) ([]model.Country, error) {
	return []model.Country{{ID: "c-1", Name: "Ireland"}}, nil
}

func (fakeLookupStore) Genders(_ context.Context) ([]model.Gender, error) {
	return []model.Gender{{ID: "g-1", Name: "Female"}}, nil
}

func (fakeLookupStore) Towns(_ context.Context, countryID string) ([]model.Town, error) {
	if countryID != "c-1" {
		return []model.Town{}, nil
	}
	return []model.Town{{ID: "t-1", Name: "Dublin"}}, nil
}
