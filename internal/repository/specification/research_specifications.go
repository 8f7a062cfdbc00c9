package specification

import (
	"ai-research-be/internal/repository/scope"

	"gorm.io/gorm"
)

// BySessionId filters research records by their pipeline session id.
type BySessionId struct {
	SessionId string
}

func (s BySessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByDecision filters records by their terminal decision.
type ByDecision struct {
	Decision string
}

func (s ByDecision) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("decision = ?", s.Decision)
}

// IncludeDeleted widens a query to soft-deleted rows. The archiver needs it
// so a re-archived session revives its old row instead of colliding with the
// session_id unique index.
type IncludeDeleted struct{}

func (s IncludeDeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.WithSoftDelete)
}
