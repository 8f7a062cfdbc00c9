package service

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/agent/critic"
	"ai-research-be/pkg/agent/executor"
	"ai-research-be/pkg/agent/researcher"
	"ai-research-be/pkg/agent/summarizer"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// scriptedLLM serves all three pipeline roles from canned responses.
type scriptedLLM struct {
	summary string
	verdict string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "Reply ONLY with one word"):
		return s.verdict, nil
	case strings.Contains(prompt, "<source>"):
		return s.summary, nil
	default:
		return strings.Repeat("Model explanation of the topic. ", 10), nil
	}
}

func newTestService(t *testing.T, verdict string) IResearchService {
	t.Helper()

	cfg := agent.DefaultConfig() // ReviewAfterLoops=1: first critique escalates
	model := &scriptedLLM{
		summary: strings.Repeat("Structured summary. ", 15),
		verdict: verdict,
	}
	logger := log.New(io.Discard, "", 0)

	exec := executor.New(
		researcher.NewResearcher(nil, model, cfg, logger),
		summarizer.NewSummarizer(model, cfg, logger),
		critic.NewCritic(model, cfg, logger),
		cfg,
		logger,
	)

	return NewResearchService(exec, cfg, memory.NewSessionRepository(), nil, nil, nil, nil, noopLogger{})
}

func TestStartAndStepFlow(t *testing.T) {
	svc := newTestService(t, "end")
	ctx := context.Background()

	created, err := svc.StartSession(ctx, &dto.StartResearchRequest{Query: "solar power"})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.Id)
	assert.Equal(t, store.DecisionNone, created.Decision)

	stepped, err := svc.Step(ctx, created.Id)
	assert.NoError(t, err)
	assert.Equal(t, store.DecisionEscalate, stepped.Decision)
	assert.Equal(t, 1, stepped.LoopCount)
	assert.Equal(t, 1, stepped.ResearchCount)
	assert.Equal(t, 1, stepped.SummarizeCount)
	assert.Equal(t, store.RecommendEnd, stepped.Recommendation)

	// Stepping while escalated is refused
	_, err = svc.Step(ctx, created.Id)
	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusConflict, fiberErr.Code)
}

func TestStepUnknownSession(t *testing.T) {
	svc := newTestService(t, "end")

	_, err := svc.Step(context.Background(), "missing")
	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
}

func TestFeedbackFlow(t *testing.T) {
	svc := newTestService(t, "end")
	ctx := context.Background()

	created, _ := svc.StartSession(ctx, &dto.StartResearchRequest{Query: "solar power"})

	// Feedback before escalation is refused
	_, err := svc.Feedback(ctx, created.Id, &dto.FeedbackRequest{Action: "accept"})
	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusConflict, fiberErr.Code)

	_, err = svc.Step(ctx, created.Id)
	assert.NoError(t, err)

	res, err := svc.Feedback(ctx, created.Id, &dto.FeedbackRequest{
		Action:        "manual",
		ManualSummary: "Operator summary.",
	})
	assert.NoError(t, err)
	assert.Equal(t, store.DecisionStop, res.Decision)
	assert.Equal(t, "Operator summary.", res.Summary)
	assert.Equal(t, 2, res.LoopCount)
}

func TestFeedbackRefusesExhaustedAction(t *testing.T) {
	svc := newTestService(t, "end")
	ctx := context.Background()

	created, _ := svc.StartSession(ctx, &dto.StartResearchRequest{Query: "solar power"})
	_, err := svc.Step(ctx, created.Id)
	assert.NoError(t, err)

	// Spend the remaining research budget through the escalation loop
	cfg := agent.DefaultConfig()
	for i := 1; i < cfg.ResearchCap; i++ {
		res, err := svc.Feedback(ctx, created.Id, &dto.FeedbackRequest{Action: "more-research"})
		assert.NoError(t, err)
		assert.Equal(t, store.DecisionResearch, res.Decision)

		res, err = svc.Step(ctx, created.Id)
		assert.NoError(t, err)
		assert.Equal(t, store.DecisionEscalate, res.Decision)
	}

	before, err := svc.GetSession(ctx, created.Id)
	assert.NoError(t, err)
	assert.Equal(t, cfg.ResearchCap, before.ResearchCount)
	assert.False(t, before.ResearchAllowed)

	// The exhausted action is refused with 409 and no state change
	_, err = svc.Feedback(ctx, created.Id, &dto.FeedbackRequest{Action: "more-research"})
	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusConflict, fiberErr.Code)

	after, err := svc.GetSession(ctx, created.Id)
	assert.NoError(t, err)
	assert.Equal(t, before.ResearchCount, after.ResearchCount)
	assert.Equal(t, before.LoopCount, after.LoopCount)
	assert.Equal(t, store.DecisionEscalate, after.Decision)
}
