package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// EngagementClient talks to the engagement (comments/reviews) service.
type EngagementClient struct {
	c *client
}

func NewEngagementClient(baseURL string, timeout time.Duration, logger *zap.Logger) *EngagementClient {
	return &EngagementClient{c: newClient(baseURL, timeout, logger)}
}

// GetCommentStatistics returns platform-wide comment and review totals.
func (g *EngagementClient) GetCommentStatistics(ctx context.Context) (*models.EngagementStatistics, error) {
	var out models.EngagementStatistics
	if err := g.c.getJSON(ctx, "/api/v1/comments/admin/statistics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
