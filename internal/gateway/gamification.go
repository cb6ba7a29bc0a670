package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// GamificationClient talks to the gamification service.
type GamificationClient struct {
	c *client
}

func NewGamificationClient(baseURL string, timeout time.Duration, logger *zap.Logger) *GamificationClient {
	return &GamificationClient{c: newClient(baseURL, timeout, logger)}
}

// GetBatchUserStats fetches level/exp snapshots for a batch of users.
// Users without gamification data are absent from the result.
func (g *GamificationClient) GetBatchUserStats(ctx context.Context, userIDs []string) ([]models.GamificationStats, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var out []models.GamificationStats
	if err := g.c.postJSON(ctx, "/api/v1/gamification/stats/batch", userIDs, &out); err != nil {
		return nil, err
	}
	return out, nil
}
