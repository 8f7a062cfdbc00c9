package implementation

import (
	"context"
	"errors"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/mapper"
	"ai-research-be/internal/model"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResearchRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewResearchRecordRepository(db *gorm.DB) contract.ResearchRecordRepository {
	return &ResearchRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchMapper(),
	}
}

func (r *ResearchRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ResearchRecordRepositoryImpl) Create(ctx context.Context, record *entity.ResearchRecord) error {
	m := r.mapper.RecordToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.RecordToEntity(m)
	return nil
}

func (r *ResearchRecordRepositoryImpl) Update(ctx context.Context, record *entity.ResearchRecord) error {
	m := r.mapper.RecordToModel(record)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.RecordToEntity(m)
	return nil
}

func (r *ResearchRecordRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ResearchRecord{}, id).Error
}

func (r *ResearchRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchRecord, error) {
	var m model.ResearchRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RecordToEntity(&m), nil
}

func (r *ResearchRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchRecord, error) {
	var models []*model.ResearchRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]*entity.ResearchRecord, 0, len(models))
	for _, m := range models {
		records = append(records, r.mapper.RecordToEntity(m))
	}
	return records, nil
}

func (r *ResearchRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ResearchRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
