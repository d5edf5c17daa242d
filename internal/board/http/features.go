package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/uplist/uplist/internal/board/domain"
	"github.com/uplist/uplist/internal/board/service"
	"github.com/uplist/uplist/pkg/httpx"
)

// FeaturesHandler serves the public board surface under /v1/features.
type FeaturesHandler struct {
	FeatureService *service.FeatureService
}

type featureResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AuthorName  string    `json:"authorName"`
	Votes       int       `json:"votes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toFeatureResponse(f domain.Feature) featureResponse {
	return featureResponse{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		AuthorName:  f.AuthorName,
		Votes:       f.Votes,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

type createFeatureRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorName  string `json:"authorName"`
}

// HandleCreate serves POST /v1/features.
func (h *FeaturesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createFeatureRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	f, err := h.FeatureService.CreateFeature(r.Context(), req.Title, req.Description, req.AuthorName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toFeatureResponse(f))
}

// HandleList serves GET /v1/features with q, status, sort, page, perPage
// query parameters.
func (h *FeaturesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.FeatureFilter{
		Query:  q.Get("q"),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("perPage"))

	page, err := h.FeatureService.ListFeatures(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	features := make([]featureResponse, 0, len(page.Features))
	for _, f := range page.Features {
		features = append(features, toFeatureResponse(f))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"features": features,
		"total":    page.Total,
		"page":     page.Page,
		"perPage":  page.PerPage,
	})
}

// HandleGet serves GET /v1/features/{id}.
func (h *FeaturesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.FeatureService.GetFeature(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFeatureResponse(f))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus serves PATCH /v1/features/{id}/status (admin only).
func (h *FeaturesHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	id := r.PathValue("id")
	if err := h.FeatureService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}

	f, err := h.FeatureService.GetFeature(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFeatureResponse(f))
}

// HandleDelete serves DELETE /v1/features/{id} (admin only).
func (h *FeaturesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.FeatureService.DeleteFeature(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type commentResponse struct {
	ID         string    `json:"id"`
	FeatureID  string    `json:"featureId"`
	ParentID   *string   `json:"parentId,omitempty"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toCommentResponse(c domain.Comment) commentResponse {
	return commentResponse{
		ID:         c.ID,
		FeatureID:  c.FeatureID,
		ParentID:   c.ParentID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

type createCommentRequest struct {
	ParentID   *string `json:"parentId"`
	AuthorName string  `json:"authorName"`
	Body       string  `json:"body"`
}

// HandleCreateComment serves POST /v1/features/{id}/comments.
func (h *FeaturesHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	c, err := h.FeatureService.AddComment(r.Context(), r.PathValue("id"), req.ParentID, req.AuthorName, req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCommentResponse(c))
}

// HandleListComments serves GET /v1/features/{id}/comments.
func (h *FeaturesHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.FeatureService.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"comments": out})
}

type voteRequest struct {
	VoterKey string `json:"voterKey"`
}

// HandleVote serves POST /v1/features/{id}/votes. One vote per voter key per
// feature; a repeat vote is a 409.
func (h *FeaturesHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	count, err := h.FeatureService.Vote(r.Context(), r.PathValue("id"), req.VoterKey)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"votes": count})
}
