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

// PetService manages lost-pet posts: creation with an optional photo,
// the public listing, and owner-scoped mutation.
type PetService struct {
	pets    repository.LostPetRepository
	storage ObjectStorage
	logger  *slog.Logger
}

func NewPetService(pets repository.LostPetRepository, store ObjectStorage, logger *slog.Logger) *PetService {
	return &PetService{pets: pets, storage: store, logger: logger}
}

// photoPrefixLost groups lost-pet photos under one object-storage folder.
const photoPrefixLost = "lost-pets"

// Create validates and stores a new lost-pet post for the caller.
//
// The photo is optional, and so is its upload: if object storage rejects
// the file the post is still created with an empty PhotoURL — losing a
// missing-pet announcement over a hiccup in the image pipeline would be
// worse than a missing thumbnail. A photo with a non-image extension is
// still a validation error, since that is the caller's mistake.
func (s *PetService) Create(ctx context.Context, claims *auth.Claims, post *model.LostPetPost, photo *PhotoUpload) (*model.LostPetPost, error) {
	if err := validateLostPet(post); err != nil {
		return nil, err
	}
	post.UserNum = claims.UserNum
	post.Status = model.StatusOpen
	post.PhotoURL = ""

	if photo != nil {
		key, contentType, err := storage.BuildKey(photoPrefixLost, claims.UserNum, photo.Filename)
		if err != nil {
			return nil, apperror.ValidationFailed("photo", err.Error())
		}
		url, err := s.storage.Upload(ctx, key, photo.Content, contentType)
		if err != nil {
			s.logger.Warn("lost-pet photo upload failed, creating post without photo",
				slog.Int64("userNum", claims.UserNum),
				slog.String("error", err.Error()),
			)
		} else {
			post.PhotoURL = url
		}
	}

	if err := s.pets.Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("lost-pet post created", slog.Int64("id", post.ID), slog.Int64("userNum", post.UserNum))
	return post, nil
}

// List returns the public board, newest first.
func (s *PetService) List(ctx context.Context, opts repository.ListOptions) ([]model.LostPetPost, error) {
	return s.pets.List(ctx, opts)
}

// Get returns one post by id.
func (s *PetService) Get(ctx context.Context, id int64) (*model.LostPetPost, error) {
	return s.pets.GetByID(ctx, id)
}

// ListMine returns the caller's own posts for the my-page screen.
func (s *PetService) ListMine(ctx context.Context, claims *auth.Claims) ([]model.LostPetPost, error) {
	return s.pets.ListByOwner(ctx, claims.UserNum)
}

// UpdateInput carries the editable fields of a lost-pet post. Ownership
// and the photo travel separately.
type UpdateInput struct {
	PetName      string
	Species      string
	Gender       string
	Age          string
	Features     string
	LostDate     string
	LostLocation string
	Lat          float64
	Lon          float64
	Contact      string
	Status       int
	NotifyOnSeen bool
}

// Update edits an existing post. Only the owner or an admin may do so.
// A new photo replaces the old one; the old object is removed best-effort.
func (s *PetService) Update(ctx context.Context, claims *auth.Claims, id int64, in UpdateInput, photo *PhotoUpload) (*model.LostPetPost, error) {
	post, err := s.pets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claims.CanModify(post.UserNum) {
		return nil, apperror.Forbidden("you can only modify your own posts")
	}
	if in.Status != model.StatusOpen && in.Status != model.StatusClosed {
		return nil, apperror.ValidationFailed("status", "status must be 0 (open) or 1 (closed)")
	}

	oldPhotoURL := post.PhotoURL
	post.PetName = in.PetName
	post.Species = in.Species
	post.Gender = in.Gender
	post.Age = in.Age
	post.Features = in.Features
	post.LostDate = in.LostDate
	post.LostLocation = in.LostLocation
	post.Lat = in.Lat
	post.Lon = in.Lon
	post.Contact = in.Contact
	post.Status = in.Status
	post.NotifyOnSeen = in.NotifyOnSeen
	if err := validateLostPet(post); err != nil {
		return nil, err
	}

	if photo != nil {
		key, contentType, err := storage.BuildKey(photoPrefixLost, post.UserNum, photo.Filename)
		if err != nil {
			return nil, apperror.ValidationFailed("photo", err.Error())
		}
		url, err := s.storage.Upload(ctx, key, photo.Content, contentType)
		if err != nil {
			s.logger.Warn("replacement photo upload failed, keeping existing photo",
				slog.Int64("id", id), slog.String("error", err.Error()))
		} else {
			post.PhotoURL = url
		}
	}

	if err := s.pets.Update(ctx, post); err != nil {
		return nil, err
	}
	if post.PhotoURL != oldPhotoURL {
		s.removePhoto(ctx, oldPhotoURL)
	}
	return post, nil
}

// Delete removes a post (owner or admin) and its stored photo.
func (s *PetService) Delete(ctx context.Context, claims *auth.Claims, id int64) error {
	post, err := s.pets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !claims.CanModify(post.UserNum) {
		return apperror.Forbidden("you can only delete your own posts")
	}
	if err := s.pets.Delete(ctx, id); err != nil {
		return err
	}
	s.removePhoto(ctx, post.PhotoURL)
	s.logger.Info("lost-pet post deleted", slog.Int64("id", id), slog.Int64("by", claims.UserNum))
	return nil
}

// removePhoto deletes a stored photo, best-effort. The row is already gone;
// an orphaned object is only storage cost.
func (s *PetService) removePhoto(ctx context.Context, photoURL string) {
	key := s.storage.KeyFromURL(photoURL)
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("deleting stored photo failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func validateLostPet(post *model.LostPetPost) error {
	switch {
	case post.PetName == "":
		return apperror.ValidationFailed("petName", "pet name is required")
	case post.LostDate == "":
		return apperror.ValidationFailed("lostDate", "lost date is required")
	case post.LostLocation == "":
		return apperror.ValidationFailed("lostLocation", "lost location is required")
	}
	return nil
}
