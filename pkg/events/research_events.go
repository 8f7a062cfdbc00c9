package events

import "time"

// Event type codes used on the bus. NATS subjects are derived from these
// ("events.<type>"), so keep them lowercase and dot-free.
const (
	TypeResearchStarted   = "research_started"
	TypeResearchStep      = "research_step"
	TypeResearchCompleted = "research_completed"
	TypeResearchEscalated = "research_escalated"
)

// NewResearchStarted is emitted when a new session begins processing.
func NewResearchStarted(sessionID, query string) Event {
	return BaseEvent{
		Type: TypeResearchStarted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"query":      query,
		},
		OccurredAt: time.Now(),
	}
}

// NewResearchStep is emitted after each pipeline phase completes.
func NewResearchStep(sessionID, phase, decision string, loopCount int) Event {
	return BaseEvent{
		Type: TypeResearchStep,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"phase":      phase,
			"decision":   decision,
			"loop_count": loopCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewResearchEscalated is emitted when the loop pauses for operator review.
func NewResearchEscalated(sessionID, recommendation string) Event {
	return BaseEvent{
		Type: TypeResearchEscalated,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"recommendation": recommendation,
		},
		OccurredAt: time.Now(),
	}
}

// NewResearchCompleted is emitted once a session reaches a terminal state.
func NewResearchCompleted(sessionID, query, summary string, loopCount int) Event {
	return BaseEvent{
		Type: TypeResearchCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"query":      query,
			"summary":    summary,
			"loop_count": loopCount,
		},
		OccurredAt: time.Now(),
	}
}
