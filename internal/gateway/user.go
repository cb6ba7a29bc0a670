package gateway

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// UserClient talks to the user directory service.
type UserClient struct {
	c *client
}

func NewUserClient(baseURL string, timeout time.Duration, logger *zap.Logger) *UserClient {
	return &UserClient{c: newClient(baseURL, timeout, logger)}
}

// GetUsers lists one page of the full user directory.
func (g *UserClient) GetUsers(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.UserProfile], error) {
	query := url.Values{
		"page":      {strconv.Itoa(page)},
		"size":      {strconv.Itoa(size)},
		"sortBy":    {sortBy},
		"sortOrder": {sortOrder},
	}
	var out models.Page[models.UserProfile]
	if err := g.c.getJSON(ctx, "/api/v1/admin/users", query, &out); err != nil {
		return models.Page[models.UserProfile]{}, err
	}
	return out, nil
}

// GetUsersBatch resolves a set of user uuids. Unknown ids are silently
// absent from the result.
func (g *UserClient) GetUsersBatch(ctx context.Context, ids []uuid.UUID) ([]models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.UserProfile
	if err := g.c.postJSON(ctx, "/api/v1/users/batch/get", ids, &out); err != nil {
		return nil, err
	}
	return out, nil
}
