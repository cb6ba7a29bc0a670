package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yushan-platform/analytics-api/internal/gateway"
	"github.com/yushan-platform/analytics-api/internal/ranking"
)

// rankingPageQuery carries the validated query parameters shared by the
// leaderboard list endpoints.
type rankingPageQuery struct {
	Page     int    `validate:"gte=0"`
	Size     int    `validate:"gt=0,lte=100"`
	SortType string `validate:"omitempty,oneof=view vote novelNum"`
	Category int    `validate:"gte=0"`
}

func (h *Handler) pageQuery(r *http.Request, defaultSort string) (rankingPageQuery, error) {
	q := rankingPageQuery{Page: 0, Size: 50, SortType: defaultSort}
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return q, fmt.Errorf("parse page: %w", err)
		}
		q.Page = parsed
	}
	if s := r.URL.Query().Get("size"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("parse size: %w", err)
		}
		q.Size = parsed
	}
	if st := r.URL.Query().Get("sortType"); st != "" {
		q.SortType = st
	}
	if c := r.URL.Query().Get("category"); c != "" {
		parsed, err := strconv.Atoi(c)
		if err != nil {
			return q, fmt.Errorf("parse category: %w", err)
		}
		q.Category = parsed
	}
	return q, nil
}

// GetNovelRanking returns a page of the novel leaderboard
// @Summary Novel Ranking
// @Tags Ranking
// @Produce json
// @Param page query int false "Page (0-based)" default(0)
// @Param size query int false "Page size" default(50)
// @Param sortType query string false "view or vote" default(view)
// @Param category query int false "Category filter, 0 = all" default(0)
// @Success 200 {object} map[string]interface{} "Novel page"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /ranking/novel [get]
func (h *Handler) GetNovelRanking(w http.ResponseWriter, r *http.Request) {
	q, err := h.pageQuery(r, "view")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if q.SortType == "novelNum" {
		h.errorResponse(w, http.StatusBadRequest, "Invalid sortType")
		return
	}
	if err := h.validator.Struct(q); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := h.ranking.NovelPage(r.Context(), q.Page, q.Size, q.SortType, q.Category)
	if err != nil {
		h.rankingError(w, err, "novel ranking")
		return
	}
	h.jsonResponse(w, http.StatusOK, page)
}

// GetUserRanking returns a page of the user leaderboard ordered by level
// and experience
// @Summary User Ranking
// @Tags Ranking
// @Produce json
// @Param page query int false "Page (0-based)" default(0)
// @Param size query int false "Page size" default(50)
// @Success 200 {object} map[string]interface{} "User page"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /ranking/user [get]
func (h *Handler) GetUserRanking(w http.ResponseWriter, r *http.Request) {
	q, err := h.pageQuery(r, "")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if err := h.validator.Struct(q); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := h.ranking.UserPage(r.Context(), q.Page, q.Size)
	if err != nil {
		h.rankingError(w, err, "user ranking")
		return
	}
	h.jsonResponse(w, http.StatusOK, page)
}

// GetAuthorRanking returns a page of the author leaderboard
// @Summary Author Ranking
// @Tags Ranking
// @Produce json
// @Param page query int false "Page (0-based)" default(0)
// @Param size query int false "Page size" default(50)
// @Param sortType query string false "vote, view or novelNum" default(vote)
// @Success 200 {object} map[string]interface{} "Author page"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /ranking/author [get]
func (h *Handler) GetAuthorRanking(w http.ResponseWriter, r *http.Request) {
	q, err := h.pageQuery(r, "vote")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if err := h.validator.Struct(q); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := h.ranking.AuthorPage(r.Context(), q.Page, q.Size, q.SortType)
	if err != nil {
		h.rankingError(w, err, "author ranking")
		return
	}
	h.jsonResponse(w, http.StatusOK, page)
}

// GetNovelRank returns the best rank a novel holds across all boards it
// appears on
// @Summary Best Novel Rank
// @Tags Ranking
// @Produce json
// @Param novelId path int true "Novel ID"
// @Success 200 {object} models.NovelRank "Best rank"
// @Failure 404 {object} map[string]string "Novel Not Found"
// @Failure 503 {object} map[string]string "Store Unavailable"
// @Router /ranking/novel/{novelId}/rank [get]
func (h *Handler) GetNovelRank(w http.ResponseWriter, r *http.Request) {
	novelID, err := strconv.Atoi(chi.URLParam(r, "novelId"))
	if err != nil || novelID <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid novel id")
		return
	}

	rank, err := h.ranking.BestNovelRank(r.Context(), novelID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Novel not found")
			return
		}
		h.rankingError(w, err, "novel rank")
		return
	}
	h.jsonResponse(w, http.StatusOK, rank)
}

// TriggerRebuild starts a full leaderboard rebuild in the background
// @Summary Trigger Ranking Rebuild
// @Tags Admin
// @Produce json
// @Success 202 {object} map[string]interface{} "Rebuild started"
// @Failure 409 {object} map[string]string "Rebuild already running"
// @Router /admin/ranking/rebuild [post]
func (h *Handler) TriggerRebuild(w http.ResponseWriter, r *http.Request) {
	if h.rebuilder.Running() {
		h.errorResponse(w, http.StatusConflict, "Rebuild already in progress")
		return
	}

	// Detach from the request so the rebuild survives the client hanging up.
	go func() {
		if err := h.rebuilder.RebuildAll(context.Background()); err != nil {
			if errors.Is(err, ranking.ErrRebuildInProgress) {
				h.logger.Warnw("Manual rebuild lost the race to another run")
				return
			}
			h.logger.Errorw("Manual rebuild finished with errors", "error", err)
		}
	}()

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"started": true,
	})
}

func (h *Handler) rankingError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ranking.ErrStoreUnavailable) || errors.Is(err, gateway.ErrUnavailable) {
		h.logger.Errorw("Ranking store unavailable", "op", op, "error", err)
		h.errorResponse(w, http.StatusServiceUnavailable, "Ranking temporarily unavailable")
		return
	}
	h.logger.Errorw("Ranking query failed", "op", op, "error", err)
	h.errorResponse(w, http.StatusInternalServerError, "Query failed")
}
