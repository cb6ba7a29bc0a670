package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yushan-platform/analytics-api/internal/gateway"
	"github.com/yushan-platform/analytics-api/internal/models"
	"github.com/yushan-platform/analytics-api/internal/ranking"
)

func TestGetNovelRanking_DefaultsAndPassthrough(t *testing.T) {
	var gotPage, gotSize, gotCategory int
	var gotSort string
	mock := &MockRankingService{
		NovelPageFunc: func(ctx context.Context, page, size int, sortType string, categoryID int) (models.Page[models.Novel], error) {
			gotPage, gotSize, gotSort, gotCategory = page, size, sortType, categoryID
			return models.PageOf([]models.Novel{{ID: 7, Title: "Ashes of the Fallen Star"}}, 3, page, size), nil
		},
	}
	h := newTestHandler(mock, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/novel", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotPage != 0 || gotSize != 50 || gotSort != "view" || gotCategory != 0 {
		t.Errorf("defaults = (%d, %d, %q, %d), want (0, 50, view, 0)", gotPage, gotSize, gotSort, gotCategory)
	}

	var page models.Page[models.Novel]
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if page.TotalElements != 3 || len(page.Content) != 1 {
		t.Errorf("page = total %d / %d items, want 3 / 1", page.TotalElements, len(page.Content))
	}
}

func TestGetNovelRanking_ForwardsQueryParams(t *testing.T) {
	var gotPage, gotSize, gotCategory int
	var gotSort string
	mock := &MockRankingService{
		NovelPageFunc: func(ctx context.Context, page, size int, sortType string, categoryID int) (models.Page[models.Novel], error) {
			gotPage, gotSize, gotSort, gotCategory = page, size, sortType, categoryID
			return models.PageOf[models.Novel](nil, 0, page, size), nil
		},
	}
	h := newTestHandler(mock, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/novel?page=2&size=10&sortType=vote&category=5", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotPage != 2 || gotSize != 10 || gotSort != "vote" || gotCategory != 5 {
		t.Errorf("params = (%d, %d, %q, %d), want (2, 10, vote, 5)", gotPage, gotSize, gotSort, gotCategory)
	}
}

func TestGetNovelRanking_RejectsBadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"negative page", "?page=-1"},
		{"zero size", "?size=0"},
		{"oversized page", "?size=500"},
		{"unknown sort", "?sortType=bogus"},
		{"author-only sort", "?sortType=novelNum"},
		{"non-numeric page", "?page=abc"},
		{"non-numeric size", "?size=xyz"},
		{"non-numeric category", "?category=fantasy"},
	}

	h := newTestHandler(nil, nil, nil)
	router := h.Routes(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/novel"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetNovelRanking_StoreDownReturns503(t *testing.T) {
	mock := &MockRankingService{
		NovelPageFunc: func(ctx context.Context, page, size int, sortType string, categoryID int) (models.Page[models.Novel], error) {
			return models.Page[models.Novel]{}, ranking.ErrStoreUnavailable
		},
	}
	h := newTestHandler(mock, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/novel", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGetAuthorRanking_AcceptsNovelNumSort(t *testing.T) {
	var gotSort string
	mock := &MockRankingService{
		AuthorPageFunc: func(ctx context.Context, page, size int, sortType string) (models.Page[models.Author], error) {
			gotSort = sortType
			return models.PageOf[models.Author](nil, 0, page, size), nil
		},
	}
	h := newTestHandler(mock, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/author?sortType=novelNum", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotSort != "novelNum" {
		t.Errorf("sortType = %q, want novelNum", gotSort)
	}
}

func TestGetNovelRank_UnknownNovelReturns404(t *testing.T) {
	mock := &MockRankingService{
		BestNovelRankFunc: func(ctx context.Context, novelID int) (*models.NovelRank, error) {
			return nil, gateway.ErrNotFound
		},
	}
	h := newTestHandler(mock, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/novel/999/rank", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetNovelRank_UnrankedIsStillOK(t *testing.T) {
	mock := &MockRankingService{
		BestNovelRankFunc: func(ctx context.Context, novelID int) (*models.NovelRank, error) {
			return &models.NovelRank{NovelID: novelID, Ranked: false}, nil
		},
	}
	h := newTestHandler(mock, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/novel/42/rank", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rank models.NovelRank
	if err := json.NewDecoder(rec.Body).Decode(&rank); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rank.NovelID != 42 || rank.Ranked {
		t.Errorf("rank = %+v, want novelId 42 unranked", rank)
	}
}

func TestGetNovelRank_BadIDReturns400(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking/novel/abc/rank", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTriggerRebuild_StartsInBackground(t *testing.T) {
	rb := &MockRebuildRunner{Started: make(chan struct{})}
	h := newTestHandler(nil, rb, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/ranking/rebuild", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	select {
	case <-rb.Started:
	case <-time.After(time.Second):
		t.Fatal("rebuild was never started")
	}
}

func TestTriggerRebuild_ConflictWhenRunning(t *testing.T) {
	rb := &MockRebuildRunner{RunningValue: true}
	h := newTestHandler(nil, rb, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/ranking/rebuild", nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
