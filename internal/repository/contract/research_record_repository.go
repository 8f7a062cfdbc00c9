package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ResearchRecordRepository interface {
	Create(ctx context.Context, record *entity.ResearchRecord) error
	Update(ctx context.Context, record *entity.ResearchRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
