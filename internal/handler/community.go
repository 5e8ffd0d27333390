package handler

import (
	"net/http"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/service"
)

// CommunityHandler serves the free-board endpoints.
type CommunityHandler struct {
	board *service.CommunityService
}

func NewCommunityHandler(board *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{board: board}
}

type communityPostResponse struct {
	envelope
	Post *model.CommunityPost `json:"post"`
}

type communityDetailResponse struct {
	envelope
	Post     *model.CommunityPost `json:"post"`
	Comments []model.Comment      `json:"comments"`
}

type communityListResponse struct {
	envelope
	Posts []model.CommunityPost `json:"posts"`
}

type commentResponse struct {
	envelope
	Comment *model.Comment `json:"comment"`
}

// CreatePost handles POST /community.
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}
	var in struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		Content  string `json:"content"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.board.CreatePost(r.Context(), claims, &model.CommunityPost{
		Title:    in.Title,
		Category: in.Category,
		Content:  in.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, communityPostResponse{envelope: success("post created"), Post: post})
}

// ListPosts handles GET /community.
func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.board.ListPosts(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communityListResponse{envelope: success("ok"), Posts: posts})
}

// GetPost handles GET /community/{id}, returning the post with its comments.
func (h *CommunityHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	post, comments, err := h.board.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communityDetailResponse{envelope: success("ok"), Post: post, Comments: comments})
}

// DeletePost handles DELETE /community/{id}.
func (h *CommunityHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
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
	if err := h.board.DeletePost(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success("post deleted"))
}

// CreateComment handles POST /community/{id}/comments.
func (h *CommunityHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.board.CreateComment(r.Context(), claims, postID, in.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, commentResponse{envelope: success("comment created"), Comment: comment})
}

// DeleteComment handles DELETE /community/{id}/comments/{commentID}.
func (h *CommunityHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFromContext(r.Context())
	if !found {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	commentID, err := pathID(r, "commentID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.board.DeleteComment(r.Context(), claims, postID, commentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, success("comment deleted"))
}
