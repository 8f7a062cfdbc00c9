package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResearchRecord struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId       string         `gorm:"type:text;not null;uniqueIndex"`
	Query           string         `gorm:"type:text;not null"`
	Summary         string         `gorm:"type:text"`
	Decision        string         `gorm:"type:text;not null"`
	LoopCount       int            `gorm:"not null;default:0"`
	ResearchCount   int            `gorm:"not null;default:0"`
	SummarizeCount  int            `gorm:"not null;default:0"`
	TriedStrategies datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (ResearchRecord) TableName() string {
	return "research_records"
}
