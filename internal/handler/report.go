package handler

import (
	"net/http"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/service"
	"github.com/petlink/petlink/internal/storage"
)

// ReportHandler serves the sighting-report endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportResponse struct {
	envelope
	Report *model.SightingReport `json:"report"`
}

type reportListResponse struct {
	envelope
	Reports []model.SightingReport `json:"reports"`
}

// Create handles POST /reports (multipart form).
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid multipart form"))
		return
	}
	report := &model.SightingReport{
		Title:          r.FormValue("title"),
		Species:        r.FormValue("species"),
		ReportDate:     r.FormValue("reportDate"),
		ReportLocation: r.FormValue("reportLocation"),
		Lat:            formFloat(r, "lat"),
		Lon:            formFloat(r, "lon"),
		Content:        r.FormValue("content"),
		Contact:        r.FormValue("contact"),
	}
	photo, err := formPhoto(r, "photo")
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.reports.Create(r.Context(), claims, report, photo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportResponse{envelope: success("sighting report created"), Report: created})
}

// List handles GET /reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportListResponse{envelope: success("ok"), Reports: reports})
}

// Get handles GET /reports/{id}.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{envelope: success("ok"), Report: report})
}

// Board handles GET /witness-posts, the card shape the board page renders.
func (h *ReportHandler) Board(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]boardItem, 0, len(reports))
	for _, rep := range reports {
		items = append(items, boardItem{
			ID:       rep.ID,
			Title:    rep.Title,
			Date:     rep.ReportDate,
			Location: rep.ReportLocation,
			ImageURL: rep.PhotoURL,
		})
	}
	writeJSON(w, http.StatusOK, boardResponse{envelope: success("ok"), Posts: items})
}
