package handler

import (
	"net/http"

	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/service"
)

// AnimalHandler serves the public shelter-animal listing.
type AnimalHandler struct {
	animals *service.AnimalService
}

func NewAnimalHandler(animals *service.AnimalService) *AnimalHandler {
	return &AnimalHandler{animals: animals}
}

type animalListResponse struct {
	envelope
	Animals []model.ShelterAnimal `json:"animals"`
}

// List handles GET /stray-dogs.
func (h *AnimalHandler) List(w http.ResponseWriter, r *http.Request) {
	animals, err := h.animals.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, animalListResponse{envelope: success("ok"), Animals: animals})
}
