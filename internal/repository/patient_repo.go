package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medrecord/internal/model"
)

type PatientRepository struct {
	pool *pgxpool.Pool
}

func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

func (r *PatientRepository) List(ctx context.Context) ([]model.Patient, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, COALESCE(p.patient_number, ''), p.name, p.surname,
		        COALESCE(to_char(p.dob, 'YYYY-MM-DD'), ''),
		        COALESCE(p.address1, ''), COALESCE(p.address2, ''), COALESCE(p.address3, ''),
		        p.town_id, p.country_id, p.gender_id, p.created_at,
		        COALESCE(c.name, ''), COALESCE(t.name, ''), COALESCE(g.name, ''),
		        COALESCE(u.username, '')
		 FROM patients p
		 LEFT JOIN countries c ON p.country_id = c.id
		 LEFT JOIN towns t ON p.town_id = t.id
		 LEFT JOIN genders g ON p.gender_id = g.id
		 LEFT JOIN users u ON p.created_by = u.id
		 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	patients := make([]model.Patient, 0)
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.ID, &p.Number, &p.Name, &p.Surname, &p.DOB,
			&p.Address1, &p.Address2, &p.Address3,
			&p.TownID, &p.CountryID, &p.GenderID, &p.CreatedAt,
			&p.Country, &p.Town, &p.Gender, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *PatientRepository) FindByID(ctx context.Context, id string) (model.Patient, error) {
	var p model.Patient
	err := r.pool.QueryRow(ctx,
		`SELECT id, COALESCE(patient_number, ''), name, surname,
		        COALESCE(to_char(dob, 'YYYY-MM-DD'), ''),
		        COALESCE(address1, ''), COALESCE(address2, ''), COALESCE(address3, ''),
		        town_id, country_id, gender_id, created_at
		 FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Number, &p.Name, &p.Surname, &p.DOB,
			&p.Address1, &p.Address2, &p.Address3,
			&p.TownID, &p.CountryID, &p.GenderID, &p.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Patient{}, model.ErrPatientNotFound
	}
	if err != nil {
		return model.Patient{}, fmt.Errorf("find patient: %w", err)
	}
	return p, nil
}

func (r *PatientRepository) Create(ctx context.Context, p model.Patient, createdBy string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO patients (id, patient_number, name, surname, dob,
		                       address1, address2, address3,
		                       town_id, country_id, gender_id, created_by, created_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, '')::date,
		         NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
		         $9, $10, $11, $12, $13)`,
		p.ID, p.Number, p.Name, p.Surname, p.DOB,
		p.Address1, p.Address2, p.Address3,
		p.TownID, p.CountryID, p.GenderID, createdBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) Update(ctx context.Context, p model.Patient) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE patients
		 SET patient_number = NULLIF($2, ''), name = $3, surname = $4,
		     dob = NULLIF($5, '')::date,
		     address1 = NULLIF($6, ''), address2 = NULLIF($7, ''), address3 = NULLIF($8, ''),
		     town_id = $9, country_id = $10, gender_id = $11
		 WHERE id = $1`,
		p.ID, p.Number, p.Name, p.Surname, p.DOB,
		p.Address1, p.Address2, p.Address3,
		p.TownID, p.CountryID, p.GenderID)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPatientNotFound
	}
	return nil
}

// Delete removes the patient and every dependent medication in one
// transaction, so a failure cannot leave orphaned rows behind.
func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete patient: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM medications WHERE patient_id = $1`, id); err != nil {
		return fmt.Errorf("delete patient medications: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPatientNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) Options(ctx context.Context) ([]model.PatientOption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, surname FROM patients ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list patient options: %w", err)
	}
	defer rows.Close()

	options := make([]model.PatientOption, 0)
	for rows.Next() {
		var o model.PatientOption
		if err := rows.Scan(&o.ID, &o.Name, &o.Surname); err != nil {
			return nil, fmt.Errorf("scan patient option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
