package service

import (
	"context"
	"log/slog"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
	"github.com/petlink/petlink/internal/storage"
)

// ReportService manages sighting reports. Unlike lost-pet posts a report is
// useless without its photo, so here an upload failure fails the whole
// request instead of degrading.
type ReportService struct {
	reports repository.SightingRepository
	storage ObjectStorage
	logger  *slog.Logger
}

func NewReportService(reports repository.SightingRepository, store ObjectStorage, logger *slog.Logger) *ReportService {
	return &ReportService{reports: reports, storage: store, logger: logger}
}

const photoPrefixSighting = "sightings"

// Create validates and stores a sighting report for the caller.
func (s *ReportService) Create(ctx context.Context, claims *auth.Claims, report *model.SightingReport, photo *PhotoUpload) (*model.SightingReport, error) {
	switch {
	case report.Title == "":
		return nil, apperror.ValidationFailed("title", "title is required")
	case report.ReportDate == "":
		return nil, apperror.ValidationFailed("reportDate", "report date is required")
	case report.ReportLocation == "":
		return nil, apperror.ValidationFailed("reportLocation", "report location is required")
	case report.Contact == "":
		return nil, apperror.ValidationFailed("contact", "contact is required")
	case photo == nil:
		return nil, apperror.ValidationFailed("photo", "a photo is required for a sighting report")
	}
	report.UserNum = claims.UserNum

	key, contentType, err := storage.BuildKey(photoPrefixSighting, claims.UserNum, photo.Filename)
	if err != nil {
		return nil, apperror.ValidationFailed("photo", err.Error())
	}
	url, err := s.storage.Upload(ctx, key, photo.Content, contentType)
	if err != nil {
		return nil, apperror.Upstream("photo upload", err)
	}
	report.PhotoURL = url

	if err := s.reports.Create(ctx, report); err != nil {
		// The row failed after the object landed; clean the object up.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned report photo could not be removed",
				slog.String("key", key), slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	s.logger.Info("sighting report created", slog.Int64("id", report.ID), slog.Int64("userNum", report.UserNum))
	return report, nil
}

// List returns sighting reports for the public map and board, newest first.
func (s *ReportService) List(ctx context.Context, opts repository.ListOptions) ([]model.SightingReport, error) {
	return s.reports.List(ctx, opts)
}

// Get returns one report by id.
func (s *ReportService) Get(ctx context.Context, id int64) (*model.SightingReport, error) {
	return s.reports.GetByID(ctx, id)
}

// Delete removes a report (owner or admin) and its stored photo.
func (s *ReportService) Delete(ctx context.Context, claims *auth.Claims, id int64) error {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !claims.CanModify(report.UserNum) {
		return apperror.Forbidden("you can only delete your own reports")
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		return err
	}
	if key := s.storage.KeyFromURL(report.PhotoURL); key != "" {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("deleting stored photo failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	s.logger.Info("sighting report deleted", slog.Int64("id", id), slog.Int64("by", claims.UserNum))
	return nil
}
