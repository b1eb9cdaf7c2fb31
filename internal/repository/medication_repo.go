package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medrecord/internal/model"
)

type MedicationRepository struct {
	pool *pgxpool.Pool
}

func NewMedicationRepository(pool *pgxpool.Pool) *MedicationRepository {
	return &MedicationRepository{pool: pool}
}

func (r *MedicationRepository) List(ctx context.Context) ([]model.Medication, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.patient_id, m.name, to_char(m.system_date, 'YYYY-MM-DD'),
		        m.remarks, m.created_at,
		        COALESCE(p.patient_number, ''), p.name, p.surname,
		        COALESCE(u.username, '')
		 FROM medications m
		 INNER JOIN patients p ON m.patient_id = p.id
		 LEFT JOIN users u ON m.prescribed_by = u.id
		 ORDER BY m.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	medications := make([]model.Medication, 0)
	for rows.Next() {
		var m model.Medication
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Name, &m.SystemDate,
			&m.Remarks, &m.CreatedAt,
			&m.PatientNumber, &m.PatientName, &m.PatientSurname,
			&m.PrescribedBy); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		medications = append(medications, m)
	}
	return medications, rows.Err()
}

func (r *MedicationRepository) FindByID(ctx context.Context, id string) (model.Medication, error) {
	var m model.Medication
	err := r.pool.QueryRow(ctx,
		`SELECT m.id, m.patient_id, m.name, to_char(m.system_date, 'YYYY-MM-DD'),
		        m.remarks, m.created_at,
		        COALESCE(p.patient_number, ''), p.name, p.surname
		 FROM medications m
		 INNER JOIN patients p ON m.patient_id = p.id
		 WHERE m.id = $1`, id).
		Scan(&m.ID, &m.PatientID, &m.Name, &m.SystemDate,
			&m.Remarks, &m.CreatedAt,
			&m.PatientNumber, &m.PatientName, &m.PatientSurname)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Medication{}, model.ErrMedicationNotFound
	}
	if err != nil {
		return model.Medication{}, fmt.Errorf("find medication: %w", err)
	}
	return m, nil
}

func (r *MedicationRepository) Create(ctx context.Context, m model.Medication, prescribedBy string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO medications (id, patient_id, name, system_date, remarks, prescribed_by, created_at)
		 VALUES ($1, $2, $3, $4::date, $5, $6, $7)`,
		m.ID, m.PatientID, m.Name, m.SystemDate, m.Remarks, prescribedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

func (r *MedicationRepository) Update(ctx context.Context, m model.Medication) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE medications
		 SET patient_id = $2, name = $3, system_date = $4::date, remarks = $5
		 WHERE id = $1`,
		m.ID, m.PatientID, m.Name, m.SystemDate, m.Remarks)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMedicationNotFound
	}
	return nil
}

func (r *MedicationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMedicationNotFound
	}
	return nil
}

// AutocompleteNames returns distinct medication names containing term,
// case-insensitively, capped at limit.
func (r *MedicationRepository) AutocompleteNames(ctx context.Context, term string, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT name FROM medications
		 WHERE name ILIKE '%' || $1 || '%'
		 ORDER BY name
		 LIMIT $2`, term, limit)
	if err != nil {
		return nil, fmt.Errorf("autocomplete medications: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan medication name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
