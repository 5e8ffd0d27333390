package handler

import (
	"context"
	"net/http"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/service"
)

// AdminHandler serves the moderation endpoints. It reuses the services'
// delete paths — an admin passes every ownership check — so moderation and
// owner deletion cannot drift apart.
type AdminHandler struct {
	pets    *service.PetService
	reports *service.ReportService
	board   *service.CommunityService
}

func NewAdminHandler(pets *service.PetService, reports *service.ReportService, board *service.CommunityService) *AdminHandler {
	return &AdminHandler{pets: pets, reports: reports, board: board}
}

// DeleteLostPet handles DELETE /api/admin/delete/missing/{id}.
func (h *AdminHandler) DeleteLostPet(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "lost-pet post deleted", h.pets.Delete)
}

// DeleteReport handles DELETE /api/admin/delete/reports/{id}.
func (h *AdminHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "sighting report deleted", h.reports.Delete)
}

// DeleteCommunityPost handles DELETE /api/admin/delete/community/{id}.
func (h *AdminHandler) DeleteCommunityPost(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "community post deleted", h.board.DeletePost)
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request, message string, del func(ctx context.Context, claims *auth.Claims, id int64) error) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := del(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success(message))
}
