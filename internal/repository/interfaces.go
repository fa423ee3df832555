package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/stockpilot/internal/models"
)

// RunRepository defines backtest run persistence
type RunRepository interface {
	Save(ctx context.Context, record *models.RunRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RunRecord, error)
	GetByStrategy(ctx context.Context, strategyName string, limit int) ([]*models.RunRecord, error)
	GetLatest(ctx context.Context, limit int) ([]*models.RunRecord, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.RunRecord, error)
	GetTopByReturn(ctx context.Context, limit int) ([]*models.RunRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
