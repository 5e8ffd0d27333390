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

// SightingStore implements repository.SightingRepository.
type SightingStore struct {
	conn *sql.DB
}

var _ repository.SightingRepository = (*SightingStore)(nil)

const sightingColumns = `id, user_num, title, species, report_date, report_location,
	lat, lon, content, contact, photo_url, created_at`

// Create inserts a sighting report and fills in the generated id.
func (s *SightingStore) Create(ctx context.Context, report *model.SightingReport) error {
	report.CreatedAt = time.Now()

	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO sighting_reports (user_num, title, species, report_date, report_location,
			lat, lon, content, contact, photo_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		report.UserNum,
		report.Title,
		report.Species,
		report.ReportDate,
		report.ReportLocation,
		report.Lat,
		report.Lon,
		report.Content,
		report.Contact,
		report.PhotoURL,
		report.CreatedAt,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("store: creating sighting report: %w", err)
	}

	return nil
}

// GetByID retrieves a single sighting report.
func (s *SightingStore) GetByID(ctx context.Context, id int64) (*model.SightingReport, error) {
	var r model.SightingReport

	err := s.conn.QueryRowContext(ctx,
		`SELECT `+sightingColumns+` FROM sighting_reports WHERE id = $1`, id,
	).Scan(
		&r.ID,
		&r.UserNum,
		&r.Title,
		&r.Species,
		&r.ReportDate,
		&r.ReportLocation,
		&r.Lat,
		&r.Lon,
		&r.Content,
		&r.Contact,
		&r.PhotoURL,
		&r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("sighting report", id)
		}
		return nil, fmt.Errorf("store: getting sighting report %d: %w", id, err)
	}

	return &r, nil
}

// List retrieves sighting reports, newest first.
func (s *SightingStore) List(ctx context.Context, opts repository.ListOptions) ([]model.SightingReport, error) {
	limit, offset := clampList(opts)

	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+sightingColumns+` FROM sighting_reports
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing sighting reports: %w", err)
	}
	defer rows.Close()

	reports := make([]model.SightingReport, 0, limit)
	for rows.Next() {
		var r model.SightingReport
		if err := rows.Scan(
			&r.ID, &r.UserNum, &r.Title, &r.Species, &r.ReportDate, &r.ReportLocation,
			&r.Lat, &r.Lon, &r.Content, &r.Contact, &r.PhotoURL, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: scanning sighting row: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating sighting rows: %w", err)
	}

	return reports, nil
}

// Delete removes a sighting report.
func (s *SightingStore) Delete(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM sighting_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: deleting sighting report %d: %w", id, err)
	}
	return checkAffected(result, "sighting report", id)
}
