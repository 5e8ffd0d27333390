package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/service"
	"github.com/petlink/petlink/internal/storage"
)

// PetHandler serves the lost-pet endpoints: the public board, the owner's
// my-page list, and multipart create/update.
type PetHandler struct {
	pets *service.PetService
}

func NewPetHandler(pets *service.PetService) *PetHandler {
	return &PetHandler{pets: pets}
}

type petResponse struct {
	envelope
	Post *model.LostPetPost `json:"post"`
}

type petListResponse struct {
	envelope
	Posts []model.LostPetPost `json:"posts"`
}

// boardItem is the flattened card shape the board pages render.
type boardItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Location string `json:"location"`
	ImageURL string `json:"imageUrl"`
	Status   int    `json:"status"`
}

type boardResponse struct {
	envelope
	Posts []boardItem `json:"posts"`
}

// Create handles POST /lost-pets (multipart form).
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	post, photo, err := parseLostPetForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.pets.Create(r.Context(), claims, post, photo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, petResponse{envelope: success("lost-pet post created"), Post: created})
}

// List handles GET /lost-pets.
func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.pets.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, petListResponse{envelope: success("ok"), Posts: posts})
}

// Get handles GET /lost-pets/{id}.
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := h.pets.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, petResponse{envelope: success("ok"), Post: post})
}

// Board handles GET /missing-posts, the card shape the board page renders.
func (h *PetHandler) Board(w http.ResponseWriter, r *http.Request) {
	posts, err := h.pets.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]boardItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, boardItem{
			ID:       p.ID,
			Title:    p.PetName,
			Date:     p.LostDate,
			Location: p.LostLocation,
			ImageURL: p.PhotoURL,
			Status:   p.Status,
		})
	}
	writeJSON(w, http.StatusOK, boardResponse{envelope: success("ok"), Posts: items})
}

// ListMine handles GET /mypets.
func (h *PetHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}
	posts, err := h.pets.ListMine(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, petListResponse{envelope: success("ok"), Posts: posts})
}

// Update handles PUT /mypets/{id} (multipart form).
func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	post, photo, err := parseLostPetForm(r)
	if err != nil {
		writeError(w, err)
		return
	}
	in := service.UpdateInput{
		PetName:      post.PetName,
		Species:      post.Species,
		Gender:       post.Gender,
		Age:          post.Age,
		Features:     post.Features,
		LostDate:     post.LostDate,
		LostLocation: post.LostLocation,
		Lat:          post.Lat,
		Lon:          post.Lon,
		Contact:      post.Contact,
		Status:       post.Status,
		NotifyOnSeen: post.NotifyOnSeen,
	}

	updated, err := h.pets.Update(r.Context(), claims, id, in, photo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, petResponse{envelope: success("lost-pet post updated"), Post: updated})
}

// Delete handles DELETE /mypets/{id}.
func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.pets.Delete(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success("lost-pet post deleted"))
}

// parseLostPetForm decodes the multipart create/update form. The photo part
// is optional here; services decide whether its absence matters.
func parseLostPetForm(r *http.Request) (*model.LostPetPost, *service.PhotoUpload, error) {
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		return nil, nil, apperror.ValidationFailed("body", "invalid multipart form")
	}

	post := &model.LostPetPost{
		PetName:      r.FormValue("petName"),
		Species:      r.FormValue("species"),
		Gender:       r.FormValue("petGender"),
		Age:          r.FormValue("petAge"),
		Features:     r.FormValue("features"),
		LostDate:     r.FormValue("lostDate"),
		LostLocation: r.FormValue("lostLocation"),
		Lat:          formFloat(r, "lat"),
		Lon:          formFloat(r, "lon"),
		Contact:      r.FormValue("contactNumber"),
		Status:       formInt(r, "status"),
		NotifyOnSeen: r.FormValue("notifyOnSeen") == "true",
	}

	photo, err := formPhoto(r, "photo")
	if err != nil {
		return nil, nil, err
	}
	return post, photo, nil
}

// formPhoto reads an optional image part from the parsed multipart form.
// Returns (nil, nil) when the part is absent.
func formPhoto(r *http.Request, field string) (*service.PhotoUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperror.ValidationFailed(field, "could not read uploaded file")
	}
	defer file.Close()

	if header.Size > storage.MaxUploadBytes {
		return nil, apperror.ValidationFailed(field, "file exceeds the 10MB limit")
	}
	content, err := readAllLimited(file, storage.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	return &service.PhotoUpload{Filename: header.Filename, Content: content}, nil
}

// readAllLimited reads at most limit bytes and errors when the stream has
// more. Size headers are client-supplied, so the limit is enforced on the
// actual bytes too.
func readAllLimited(file multipart.File, limit int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, apperror.ValidationFailed("photo", "could not read uploaded file")
	}
	if int64(len(content)) > limit {
		return nil, apperror.ValidationFailed("photo", "file exceeds the 10MB limit")
	}
	return content, nil
}

func formFloat(r *http.Request, field string) float64 {
	v, _ := strconv.ParseFloat(r.FormValue(field), 64)
	return v
}

func formInt(r *http.Request, field string) int {
	v, _ := strconv.Atoi(r.FormValue(field))
	return v
}
