package entity

import (
	"time"

	"github.com/google/uuid"
)

// ResearchRecord is the archived form of a finished research session.
type ResearchRecord struct {
	Id              uuid.UUID
	SessionId       string
	Query           string
	Summary         string
	Decision        string
	LoopCount       int
	ResearchCount   int
	SummarizeCount  int
	TriedStrategies []string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}
