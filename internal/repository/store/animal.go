package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// AnimalStore implements repository.AnimalRepository. The table is fed by
// an external crawler; this service only reads it.
type AnimalStore struct {
	conn *sql.DB
}

var _ repository.AnimalRepository = (*AnimalStore)(nil)

// List retrieves shelter animals, most recently rescued first.
func (s *AnimalStore) List(ctx context.Context, opts repository.ListOptions) ([]model.ShelterAnimal, error) {
	limit, offset := clampList(opts)

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, desertion_no, species, breed, sex, rescue_date, rescue_location,
		        shelter_name, shelter_phone, image_url, created_at
		 FROM shelter_animals
		 ORDER BY rescue_date DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing shelter animals: %w", err)
	}
	defer rows.Close()

	animals := make([]model.ShelterAnimal, 0, limit)
	for rows.Next() {
		var a model.ShelterAnimal
		if err := rows.Scan(
			&a.ID, &a.DesertionNo, &a.Species, &a.Breed, &a.Sex, &a.RescueDate,
			&a.RescueLocation, &a.ShelterName, &a.ShelterPhone, &a.ImageURL, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: scanning shelter animal row: %w", err)
		}
		animals = append(animals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating shelter animal rows: %w", err)
	}

	return animals, nil
}
