package mapper

import (
	"encoding/json"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"
	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/store"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResearchMapper struct{}

func NewResearchMapper() *ResearchMapper {
	return &ResearchMapper{}
}

func (m *ResearchMapper) RecordToEntity(r *model.ResearchRecord) *entity.ResearchRecord {
	if r == nil {
		return nil
	}

	var deletedAt *time.Time
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	var strategies []string
	if len(r.TriedStrategies) > 0 {
		// Ignore malformed rows rather than failing the read
		_ = json.Unmarshal(r.TriedStrategies, &strategies)
	}

	return &entity.ResearchRecord{
		Id:              r.Id,
		SessionId:       r.SessionId,
		Query:           r.Query,
		Summary:         r.Summary,
		Decision:        r.Decision,
		LoopCount:       r.LoopCount,
		ResearchCount:   r.ResearchCount,
		SummarizeCount:  r.SummarizeCount,
		TriedStrategies: strategies,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       r.DeletedAt.Valid,
	}
}

func (m *ResearchMapper) RecordToModel(r *entity.ResearchRecord) *model.ResearchRecord {
	if r == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if r.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *r.DeletedAt, Valid: true}
	} else if r.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	var strategies datatypes.JSON
	if len(r.TriedStrategies) > 0 {
		if b, err := json.Marshal(r.TriedStrategies); err == nil {
			strategies = datatypes.JSON(b)
		}
	}

	return &model.ResearchRecord{
		Id:              r.Id,
		SessionId:       r.SessionId,
		Query:           r.Query,
		Summary:         r.Summary,
		Decision:        r.Decision,
		LoopCount:       r.LoopCount,
		ResearchCount:   r.ResearchCount,
		SummarizeCount:  r.SummarizeCount,
		TriedStrategies: strategies,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

// SessionToRecord snapshots a finished in-memory session for archiving.
func (m *ResearchMapper) SessionToRecord(s *store.ResearchSession) *entity.ResearchRecord {
	if s == nil {
		return nil
	}
	return &entity.ResearchRecord{
		SessionId:       s.ID,
		Query:           s.Query,
		Summary:         s.Summary,
		Decision:        s.Decision,
		LoopCount:       s.LoopCount,
		ResearchCount:   s.ResearchCount,
		SummarizeCount:  s.SummarizeCount,
		TriedStrategies: s.TriedStrategies,
	}
}

func (m *ResearchMapper) SessionToResponse(s *store.ResearchSession, cfg agent.Config) *dto.SessionResponse {
	if s == nil {
		return nil
	}
	return &dto.SessionResponse{
		Id:               s.ID,
		Query:            s.Query,
		Summary:          s.Summary,
		PreviousSummary:  s.PreviousSummary,
		Decision:         s.Decision,
		Recommendation:   s.LastRecommendation,
		LoopCount:        s.LoopCount,
		ResearchCount:    s.ResearchCount,
		SummarizeCount:   s.SummarizeCount,
		TriedStrategies:  s.TriedStrategies,
		ResearchAllowed:  s.ResearchCount < cfg.ResearchCap,
		SummarizeAllowed: s.SummarizeCount < cfg.SummarizeCap,
	}
}

func (m *ResearchMapper) RecordToHistoryResponse(r *entity.ResearchRecord) *dto.HistoryResponse {
	if r == nil {
		return nil
	}
	return &dto.HistoryResponse{
		Id:             r.Id,
		SessionId:      r.SessionId,
		Query:          r.Query,
		Summary:        r.Summary,
		Decision:       r.Decision,
		LoopCount:      r.LoopCount,
		ResearchCount:  r.ResearchCount,
		SummarizeCount: r.SummarizeCount,
		CreatedAt:      r.CreatedAt,
	}
}
