package service

import (
	"context"

	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// AnimalService exposes the shelter-animal listing. The rows come from an
// external crawler, so this is read-only.
type AnimalService struct {
	animals repository.AnimalRepository
}

func NewAnimalService(animals repository.AnimalRepository) *AnimalService {
	return &AnimalService{animals: animals}
}

func (s *AnimalService) List(ctx context.Context, opts repository.ListOptions) ([]model.ShelterAnimal, error) {
	return s.animals.List(ctx, opts)
}
