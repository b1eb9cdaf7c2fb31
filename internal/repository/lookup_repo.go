package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"medrecord/internal/model"
)

// LookupRepository serves the reference tables behind the form dropdowns.
type LookupRepository struct {
	pool *pgxpool.Pool
}

func NewLookupRepository(pool *pgxpool.Pool) *LookupRepository {
	return &LookupRepository{pool: pool}
}

func (r *LookupRepository) Countries(ctx context.Context) ([]model.Country, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM countries WHERE in_use ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	countries := make([]model.Country, 0)
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *LookupRepository) Genders(ctx context.Context) ([]model.Gender, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM genders WHERE in_use ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list genders: %w", err)
	}
	defer rows.Close()

	genders := make([]model.Gender, 0)
	for rows.Next() {
		var g model.Gender
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan gender: %w", err)
		}
		genders = append(genders, g)
	}
	return genders, rows.Err()
}

func (r *LookupRepository) Towns(ctx context.Context, countryID string) ([]model.Town, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM towns WHERE country_id = $1 AND in_use ORDER BY name`,
		countryID)
	if err != nil {
		return nil, fmt.Errorf("list towns: %w", err)
	}
	defer rows.Close()

	towns := make([]model.Town, 0)
	for rows.Next() {
		var t model.Town
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan town: %w", err)
		}
		towns = append(towns, t)
	}
	return towns, rows.Err()
}
