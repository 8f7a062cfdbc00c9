package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartResearchRequest struct {
	Query string `json:"query" validate:"required,min=3"`
}

type SessionResponse struct {
	Id              string   `json:"id"`
	Query           string   `json:"query"`
	Summary         string   `json:"summary"`
	PreviousSummary string   `json:"previous_summary,omitempty"`
	Decision        string   `json:"decision"`
	Recommendation  string   `json:"recommendation,omitempty"`
	LoopCount       int      `json:"loop_count"`
	ResearchCount   int      `json:"research_count"`
	SummarizeCount  int      `json:"summarize_count"`
	TriedStrategies []string `json:"tried_strategies,omitempty"`

	// Remaining budget, for cap-aware UI controls
	ResearchAllowed  bool `json:"research_allowed"`
	SummarizeAllowed bool `json:"summarize_allowed"`
}

type FeedbackRequest struct {
	Action        string `json:"action" validate:"required,oneof=accept more-research improve-summary manual"`
	ManualSummary string `json:"manual_summary,omitempty"`
}

type StepEvent struct {
	SessionId string `json:"session_id"`
	Phase     string `json:"phase"`
	Decision  string `json:"decision"`
	LoopCount int    `json:"loop_count"`
	Summary   string `json:"summary,omitempty"`
}

type HistoryResponse struct {
	Id             uuid.UUID `json:"id"`
	SessionId      string    `json:"session_id"`
	Query          string    `json:"query"`
	Summary        string    `json:"summary"`
	Decision       string    `json:"decision"`
	LoopCount      int       `json:"loop_count"`
	ResearchCount  int       `json:"research_count"`
	SummarizeCount int       `json:"summarize_count"`
	CreatedAt      time.Time `json:"created_at"`
}
