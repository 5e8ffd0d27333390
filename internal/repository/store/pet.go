package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// LostPetStore implements repository.LostPetRepository.
type LostPetStore struct {
	conn *sql.DB
}

var _ repository.LostPetRepository = (*LostPetStore)(nil)

const lostPetColumns = `id, user_num, pet_name, species, gender, age, features,
	lost_date, lost_location, lat, lon, contact, photo_url, status, notify_on_seen, created_at`

// Create inserts a lost-pet post and fills in the generated id.
func (s *LostPetStore) Create(ctx context.Context, post *model.LostPetPost) error {
	post.CreatedAt = time.Now()

	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO lost_pets (user_num, pet_name, species, gender, age, features,
			lost_date, lost_location, lat, lon, contact, photo_url, status, notify_on_seen, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id`,
		post.UserNum,
		post.PetName,
		post.Species,
		post.Gender,
		post.Age,
		post.Features,
		post.LostDate,
		post.LostLocation,
		post.Lat,
		post.Lon,
		post.Contact,
		post.PhotoURL,
		post.Status,
		post.NotifyOnSeen,
		post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("store: creating lost-pet post: %w", err)
	}

	return nil
}

// GetByID retrieves a single lost-pet post.
func (s *LostPetStore) GetByID(ctx context.Context, id int64) (*model.LostPetPost, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+lostPetColumns+` FROM lost_pets WHERE id = $1`, id)

	post, err := scanLostPet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("lost-pet post", id)
		}
		return nil, fmt.Errorf("store: getting lost-pet post %d: %w", id, err)
	}
	return post, nil
}

// List retrieves lost-pet posts, newest first.
func (s *LostPetStore) List(ctx context.Context, opts repository.ListOptions) ([]model.LostPetPost, error) {
	limit, offset := clampList(opts)

	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+lostPetColumns+` FROM lost_pets
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing lost-pet posts: %w", err)
	}
	defer rows.Close()

	return collectLostPets(rows, limit)
}

// ListByOwner retrieves every post belonging to one user (the /mypets view).
func (s *LostPetStore) ListByOwner(ctx context.Context, userNum int64) ([]model.LostPetPost, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+lostPetColumns+` FROM lost_pets
		 WHERE user_num = $1
		 ORDER BY created_at DESC, id DESC`,
		userNum,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing lost-pet posts for user %d: %w", userNum, err)
	}
	defer rows.Close()

	return collectLostPets(rows, 16)
}

// Update rewrites the mutable fields of a post. Ownership is the service
// layer's concern; the store only reports not-found.
func (s *LostPetStore) Update(ctx context.Context, post *model.LostPetPost) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE lost_pets
		 SET pet_name = $1, species = $2, gender = $3, age = $4, features = $5,
		     lost_date = $6, lost_location = $7, lat = $8, lon = $9, contact = $10,
		     photo_url = $11, status = $12, notify_on_seen = $13
		 WHERE id = $14`,
		post.PetName,
		post.Species,
		post.Gender,
		post.Age,
		post.Features,
		post.LostDate,
		post.LostLocation,
		post.Lat,
		post.Lon,
		post.Contact,
		post.PhotoURL,
		post.Status,
		post.NotifyOnSeen,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("store: updating lost-pet post %d: %w", post.ID, err)
	}

	return checkAffected(result, "lost-pet post", post.ID)
}

// Delete removes a lost-pet post.
func (s *LostPetStore) Delete(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM lost_pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: deleting lost-pet post %d: %w", id, err)
	}
	return checkAffected(result, "lost-pet post", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLostPet(row rowScanner) (*model.LostPetPost, error) {
	var p model.LostPetPost
	err := row.Scan(
		&p.ID,
		&p.UserNum,
		&p.PetName,
		&p.Species,
		&p.Gender,
		&p.Age,
		&p.Features,
		&p.LostDate,
		&p.LostLocation,
		&p.Lat,
		&p.Lon,
		&p.Contact,
		&p.PhotoURL,
		&p.Status,
		&p.NotifyOnSeen,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectLostPets(rows *sql.Rows, capacity int) ([]model.LostPetPost, error) {
	posts := make([]model.LostPetPost, 0, capacity)
	for rows.Next() {
		p, err := scanLostPet(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scanning lost-pet row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating lost-pet rows: %w", err)
	}
	return posts, nil
}

// clampList applies the default and maximum page sizes shared by every list
// query in this package.
func clampList(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// checkAffected turns a zero-row UPDATE/DELETE into a not-found error.
func checkAffected(result sql.Result, resource string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
