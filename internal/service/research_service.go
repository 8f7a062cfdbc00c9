package service

import (
	"context"
	"encoding/json"
	"sync"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/mapper"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/agent/executor"
	"ai-research-be/pkg/agent/feedback"
	"ai-research-be/pkg/events"
	"ai-research-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// EventPublisher pushes domain events to the cross-process bus.
// Implemented by pkg/nats.Publisher. May be nil when NATS is not configured.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// StepDelivery pushes per-phase updates to live watchers.
// Implemented by the WebSocket Hub. May be nil in CLI deployments.
type StepDelivery interface {
	Send(sessionID string, event dto.StepEvent)
}

type IResearchService interface {
	StartSession(ctx context.Context, req *dto.StartResearchRequest) (*dto.SessionResponse, error)
	Step(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	Feedback(ctx context.Context, sessionID string, req *dto.FeedbackRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	GetHistory(ctx context.Context, limit, offset int) ([]*dto.HistoryResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type researchService struct {
	exec             *executor.Executor
	cfg              agent.Config
	sessions         *memory.SessionRepository
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   EventPublisher
	delivery         StepDelivery
	mapper           *mapper.ResearchMapper
	logger           logger.ILogger

	// Serializes pipeline steps per session so concurrent dashboard clicks
	// cannot interleave half-finished cycles.
	stepLocks sync.Map
}

func NewResearchService(
	exec *executor.Executor,
	cfg agent.Config,
	sessions *memory.SessionRepository,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	delivery StepDelivery,
	log logger.ILogger,
) IResearchService {
	return &researchService{
		exec:             exec,
		cfg:              cfg,
		sessions:         sessions,
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		delivery:         delivery,
		mapper:           mapper.NewResearchMapper(),
		logger:           log,
	}
}

func (s *researchService) StartSession(ctx context.Context, req *dto.StartResearchRequest) (*dto.SessionResponse, error) {
	session := store.NewResearchSession(uuid.NewString(), req.Query)
	s.sessions.Save(session)

	s.logger.Info("ResearchService", "Session started", map[string]interface{}{
		"session_id": session.ID,
		"query":      session.Query,
	})

	s.publishEvent(ctx, events.NewResearchStarted(session.ID, session.Query))

	return s.mapper.SessionToResponse(session, s.cfg), nil
}

func (s *researchService) Step(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	switch session.Decision {
	case store.DecisionStop:
		return nil, fiber.NewError(fiber.StatusConflict, "session already finished")
	case store.DecisionEscalate:
		return nil, fiber.NewError(fiber.StatusConflict, "session is waiting for feedback")
	}

	s.exec.Step(ctx, session)
	s.sessions.Save(session)
	s.afterTransition(ctx, session, "step")

	return s.mapper.SessionToResponse(session, s.cfg), nil
}

func (s *researchService) Feedback(ctx context.Context, sessionID string, req *dto.FeedbackRequest) (*dto.SessionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if session.Decision != store.DecisionEscalate {
		return nil, fiber.NewError(fiber.StatusConflict, "session is not waiting for feedback")
	}

	choice := feedback.Choice{
		Action:        feedback.Action(req.Action),
		ManualSummary: req.ManualSummary,
	}

	switch err := feedback.Apply(session, choice, s.cfg); err {
	case nil:
	case feedback.ErrResearchExhausted, feedback.ErrSummarizeExhausted:
		return nil, fiber.NewError(fiber.StatusConflict, err.Error())
	case feedback.ErrUnknownAction:
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return nil, err
	}

	s.sessions.Save(session)
	s.afterTransition(ctx, session, "feedback")

	return s.mapper.SessionToResponse(session, s.cfg), nil
}

func (s *researchService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	if session, ok := s.sessions.Get(sessionID); ok {
		return s.mapper.SessionToResponse(session, s.cfg), nil
	}

	// Fall back to the archive for finished sessions
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ResearchRecordRepository().FindOne(ctx, specification.BySessionId{SessionId: sessionID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	return &dto.SessionResponse{
		Id:              record.SessionId,
		Query:           record.Query,
		Summary:         record.Summary,
		Decision:        record.Decision,
		LoopCount:       record.LoopCount,
		ResearchCount:   record.ResearchCount,
		SummarizeCount:  record.SummarizeCount,
		TriedStrategies: record.TriedStrategies,
	}, nil
}

func (s *researchService) GetHistory(ctx context.Context, limit, offset int) ([]*dto.HistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.ResearchRecordRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.HistoryResponse, 0, len(records))
	for _, r := range records {
		res = append(res, s.mapper.RecordToHistoryResponse(r))
	}
	return res, nil
}

func (s *researchService) DeleteSession(ctx context.Context, sessionID string) error {
	s.sessions.Delete(sessionID)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ResearchRecordRepository().FindOne(ctx, specification.BySessionId{SessionId: sessionID})
	if err != nil {
		return err
	}
	if record != nil {
		return uow.ResearchRecordRepository().Delete(ctx, record.Id)
	}
	return nil
}

// afterTransition fans out the session's new state: live watchers, the event
// bus, and the archive queue when the session just finished.
func (s *researchService) afterTransition(ctx context.Context, session *store.ResearchSession, origin string) {
	if s.delivery != nil {
		s.delivery.Send(session.ID, dto.StepEvent{
			SessionId: session.ID,
			Phase:     origin,
			Decision:  session.Decision,
			LoopCount: session.LoopCount,
			Summary:   session.Summary,
		})
	}

	switch session.Decision {
	case store.DecisionEscalate:
		s.publishEvent(ctx, events.NewResearchEscalated(session.ID, session.LastRecommendation))
	case store.DecisionStop:
		s.publishEvent(ctx, events.NewResearchCompleted(session.ID, session.Query, session.Summary, session.LoopCount))
		s.archive(ctx, session)
	default:
		s.publishEvent(ctx, events.NewResearchStep(session.ID, origin, session.Decision, session.LoopCount))
	}
}

func (s *researchService) archive(ctx context.Context, session *store.ResearchSession) {
	if s.publisherService == nil {
		return
	}

	payload, err := json.Marshal(session)
	if err != nil {
		s.logger.Error("ResearchService", "Failed to marshal session for archiving", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Error("ResearchService", "Failed to queue session for archiving", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
}

func (s *researchService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ResearchService", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *researchService) lockFor(sessionID string) *sync.Mutex {
	v, _ := s.stepLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
