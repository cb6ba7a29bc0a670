package ranking

import (
	"context"

	"github.com/google/uuid"

	"github.com/yushan-platform/analytics-api/internal/models"
)

// ContentGateway is the slice of the content catalog service the ranking
// subsystem needs.
type ContentGateway interface {
	GetNovels(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.Novel], error)
	GetNovelByID(ctx context.Context, id int) (*models.Novel, error)
	GetNovelsBatch(ctx context.Context, ids []int) ([]models.Novel, error)
}

// UserGateway is the slice of the user directory service the ranking
// subsystem needs.
type UserGateway interface {
	GetUsers(ctx context.Context, page, size int, sortBy, sortOrder string) (models.Page[models.UserProfile], error)
	GetUsersBatch(ctx context.Context, ids []uuid.UUID) ([]models.UserProfile, error)
}

// GamificationGateway fetches level/exp snapshots in batches.
type GamificationGateway interface {
	GetBatchUserStats(ctx context.Context, userIDs []string) ([]models.GamificationStats, error)
}
