package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// ContentClient talks to the content catalog service.
type ContentClient struct {
	c *client
}

func NewContentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ContentClient {
	return &ContentClient{c: newClient(baseURL, timeout, logger)}
}

// GetNovels lists one page of the catalog.
func (g *ContentClient) GetNovels(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.Novel], error) {
	query := url.Values{
		"page":      {strconv.Itoa(page)},
		"size":      {strconv.Itoa(size)},
		"sortBy":    {sortBy},
		"sortOrder": {sortOrder},
	}
	var out models.Page[models.Novel]
	if err := g.c.getJSON(ctx, "/api/v1/novels", query, &out); err != nil {
		return models.Page[models.Novel]{}, err
	}
	return out, nil
}

// GetNovelByID does an authoritative single-novel lookup.
func (g *ContentClient) GetNovelByID(ctx context.Context, id int) (*models.Novel, error) {
	var out models.Novel
	if err := g.c.getJSON(ctx, fmt.Sprintf("/api/v1/novels/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetNovelsBatch resolves a set of novel ids. Ids the catalog no longer
// knows are silently absent from the result.
func (g *ContentClient) GetNovelsBatch(ctx context.Context, ids []int) ([]models.Novel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Novel
	if err := g.c.postJSON(ctx, "/api/v1/novels/batch/get", ids, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNovelCount returns the catalog-wide novel count.
func (g *ContentClient) GetNovelCount(ctx context.Context) (int64, error) {
	var out int64
	if err := g.c.getJSON(ctx, "/api/v1/novels/count", nil, &out); err != nil {
		return 0, err
	}
	return out, nil
}
