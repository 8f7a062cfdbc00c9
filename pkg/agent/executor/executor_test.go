package executor

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/agent/critic"
	"ai-research-be/pkg/agent/feedback"
	"ai-research-be/pkg/agent/researcher"
	"ai-research-be/pkg/agent/summarizer"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/store"
)

// scriptedLLM returns canned responses keyed by a substring of the prompt, so
// one stub can serve the researcher, summarizer and critic at once.
type scriptedLLM struct {
	summary   string
	verdict   string
	generated string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty history")
	}
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "Reply ONLY with one word"):
		return s.verdict, nil
	case strings.Contains(prompt, "<source>"):
		return s.summary, nil
	default:
		return s.generated, nil
	}
}

// scriptedReviewer replays a fixed sequence of choices.
type scriptedReviewer struct {
	choices []feedback.Choice
	reviews []feedback.Review
}

func (r *scriptedReviewer) Review(ctx context.Context, review feedback.Review) (feedback.Choice, error) {
	r.reviews = append(r.reviews, review)
	if len(r.choices) == 0 {
		return feedback.Choice{Action: feedback.ActionAccept}, nil
	}
	choice := r.choices[0]
	r.choices = r.choices[1:]
	return choice, nil
}

func newExecutor(model llm.LLMProvider, cfg agent.Config) *Executor {
	logger := log.New(io.Discard, "", 0)
	return New(
		researcher.NewResearcher(nil, model, cfg, logger),
		summarizer.NewSummarizer(model, cfg, logger),
		critic.NewCritic(model, cfg, logger),
		cfg,
		logger,
	)
}

func TestRunSingleCycleWithoutSearch(t *testing.T) {
	cfg := agent.DefaultConfig()
	cfg.ReviewAfterLoops = 0

	model := &scriptedLLM{
		generated: strings.Repeat("Explanation of the topic from model knowledge. ", 10),
		summary:   strings.Repeat("Condensed summary of the findings. ", 12),
		verdict:   "end",
	}

	exec := newExecutor(model, cfg)
	session := store.NewResearchSession("s1", "solar power")

	if err := exec.Run(context.Background(), session, nil); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if session.Decision != store.DecisionStop {
		t.Errorf("Decision = %q, want stop", session.Decision)
	}
	if session.ResearchCount != 1 || session.SummarizeCount != 1 || session.LoopCount != 1 {
		t.Errorf("counters = research %d, summarize %d, loop %d; want 1/1/1",
			session.ResearchCount, session.SummarizeCount, session.LoopCount)
	}
	if !strings.HasPrefix(session.Summary, "Condensed summary") {
		t.Errorf("Summary = %q", session.Summary)
	}
}

func TestRunAlwaysTerminates(t *testing.T) {
	cfg := agent.DefaultConfig()
	cfg.ReviewAfterLoops = 0

	// A verdict that always asks for more summarizing, over a model that
	// keeps emitting identical summaries, exercises the stagnation override
	// and the budget ceilings together.
	model := &scriptedLLM{
		generated: strings.Repeat("Explanation text. ", 20),
		summary:   strings.Repeat("Summary attempt. ", 15),
		verdict:   "resummarize",
	}

	exec := newExecutor(model, cfg)
	session := store.NewResearchSession("s1", "solar power")

	if err := exec.Run(context.Background(), session, nil); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if session.Decision != store.DecisionStop {
		t.Errorf("Decision = %q, want stop", session.Decision)
	}
	if session.LoopCount > cfg.LoopCeiling {
		t.Errorf("LoopCount = %d exceeded ceiling %d", session.LoopCount, cfg.LoopCeiling)
	}
	if session.SummarizeCount > cfg.SummarizeCap {
		t.Errorf("SummarizeCount = %d exceeded cap %d", session.SummarizeCount, cfg.SummarizeCap)
	}
	if session.ResearchCount > cfg.ResearchCap {
		t.Errorf("ResearchCount = %d exceeded cap %d", session.ResearchCount, cfg.ResearchCap)
	}
}

func TestRunEscalatesToReviewer(t *testing.T) {
	cfg := agent.DefaultConfig() // ReviewAfterLoops = 1: first critique escalates

	model := &scriptedLLM{
		generated: strings.Repeat("Explanation text. ", 20),
		summary:   strings.Repeat("Summary attempt. ", 15),
		verdict:   "end",
	}

	exec := newExecutor(model, cfg)
	session := store.NewResearchSession("s1", "solar power")
	reviewer := &scriptedReviewer{choices: []feedback.Choice{{Action: feedback.ActionAccept}}}

	if err := exec.Run(context.Background(), session, reviewer); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if len(reviewer.reviews) != 1 {
		t.Fatalf("reviewer consulted %d times, want 1", len(reviewer.reviews))
	}
	if reviewer.reviews[0].Recommendation != store.RecommendEnd {
		t.Errorf("review recommendation = %q", reviewer.reviews[0].Recommendation)
	}
	if session.Decision != store.DecisionStop {
		t.Errorf("Decision = %q, want stop", session.Decision)
	}
}

func TestRunRepromptsOnRefusedChoice(t *testing.T) {
	cfg := agent.DefaultConfig()

	model := &scriptedLLM{
		generated: strings.Repeat("Explanation text. ", 20),
		summary:   strings.Repeat("Summary attempt. ", 15),
		verdict:   "end",
	}

	exec := newExecutor(model, cfg)
	session := store.NewResearchSession("s1", "solar power")
	session.ResearchCount = cfg.ResearchCap - 1 // first cycle spends the last attempt

	reviewer := &scriptedReviewer{choices: []feedback.Choice{
		{Action: feedback.ActionMoreResearch}, // refused: budget spent
		{Action: feedback.ActionManualSummary, ManualSummary: "Operator summary."},
	}}

	if err := exec.Run(context.Background(), session, reviewer); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if len(reviewer.reviews) != 2 {
		t.Fatalf("reviewer consulted %d times, want 2 (refusal then retry)", len(reviewer.reviews))
	}
	if session.Summary != "Operator summary." {
		t.Errorf("Summary = %q, want operator text", session.Summary)
	}
	if session.ResearchCount != cfg.ResearchCap {
		t.Errorf("ResearchCount = %d, want %d untouched by refusal", session.ResearchCount, cfg.ResearchCap)
	}
}

func TestStepRespectsPendingDecision(t *testing.T) {
	cfg := agent.DefaultConfig()
	cfg.ReviewAfterLoops = 0

	model := &scriptedLLM{
		generated: strings.Repeat("Explanation text. ", 20),
		summary:   strings.Repeat("Summary attempt. ", 15),
		verdict:   "end",
	}

	exec := newExecutor(model, cfg)

	t.Run("summarize-only entry skips research", func(t *testing.T) {
		session := store.NewResearchSession("s1", "solar power")
		session.RawContent = strings.Repeat("Existing raw content. ", 10)
		session.Summary = "Old summary."
		session.Decision = store.DecisionSummarize

		exec.Step(context.Background(), session)

		if session.ResearchCount != 0 {
			t.Errorf("ResearchCount = %d, want 0", session.ResearchCount)
		}
		if session.SummarizeCount != 1 {
			t.Errorf("SummarizeCount = %d, want 1", session.SummarizeCount)
		}
	})

	t.Run("exhausted research decision stops", func(t *testing.T) {
		session := store.NewResearchSession("s2", "solar power")
		session.Decision = store.DecisionResearch
		session.ResearchCount = cfg.ResearchCap

		exec.Step(context.Background(), session)

		if session.Decision != store.DecisionStop {
			t.Errorf("Decision = %q, want stop", session.Decision)
		}
		if session.ResearchCount != cfg.ResearchCap {
			t.Errorf("ResearchCount = %d, want unchanged", session.ResearchCount)
		}
	})

	t.Run("escalated session is left to the operator", func(t *testing.T) {
		session := store.NewResearchSession("s4", "solar power")
		session.Decision = store.DecisionEscalate
		session.Summary = "Awaiting feedback."
		session.LoopCount = 1
		session.ResearchCount = 1
		session.SummarizeCount = 1

		exec.Step(context.Background(), session)

		if session.Decision != store.DecisionEscalate {
			t.Errorf("Decision = %q, want escalate", session.Decision)
		}
		if session.LoopCount != 1 || session.ResearchCount != 1 || session.SummarizeCount != 1 {
			t.Errorf("escalated session mutated: %+v", session)
		}
	})

	t.Run("stopped session is inert", func(t *testing.T) {
		session := store.NewResearchSession("s3", "solar power")
		session.Decision = store.DecisionStop
		session.Summary = "Done."

		exec.Step(context.Background(), session)

		if session.LoopCount != 0 || session.Summary != "Done." {
			t.Errorf("stopped session mutated: %+v", session)
		}
	})
}

func TestPhaseCallbackOrder(t *testing.T) {
	cfg := agent.DefaultConfig()
	cfg.ReviewAfterLoops = 0

	model := &scriptedLLM{
		generated: strings.Repeat("Explanation text. ", 20),
		summary:   strings.Repeat("Summary attempt. ", 15),
		verdict:   "end",
	}

	exec := newExecutor(model, cfg)

	var phases []string
	exec.SetPhaseCallback(func(phase string, _ *store.ResearchSession) {
		phases = append(phases, phase)
	})

	session := store.NewResearchSession("s1", "solar power")
	exec.Step(context.Background(), session)

	want := []string{PhaseResearch, PhaseSummarize, PhaseCritique}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase[%d] = %q, want %q", i, phases[i], want[i])
		}
	}
}

// alternatingLLM flips its critique verdict on every evaluation call and
// produces a different summary on every synthesis call, so neither the
// stagnation override nor the attempt caps can end the loop.
type alternatingLLM struct {
	criticCalls    int
	summarizeCalls int
}

func (s *alternatingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty history")
	}
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

func (s *alternatingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "Reply ONLY with one word"):
		s.criticCalls++
		if s.criticCalls%2 == 1 {
			return "reresearch", nil
		}
		return "resummarize", nil
	case strings.Contains(prompt, "<source>"):
		s.summarizeCalls++
		if s.summarizeCalls%2 == 1 {
			return strings.Repeat("aaaa bbbb cccc dddd. ", 10), nil
		}
		return strings.Repeat("zzzz yyyy xxxx wwww. ", 10), nil
	default:
		return strings.Repeat("Model text about the topic. ", 10), nil
	}
}

func TestRunIterationCeilingStopsAdversarialAlternation(t *testing.T) {
	// Inflate every per-step limit so only the global iteration ceiling can
	// end a loop whose verdicts alternate between more research and more
	// summarizing forever.
	cfg := agent.DefaultConfig()
	cfg.ReviewAfterLoops = 0
	cfg.ResearchCap = 100
	cfg.SummarizeCap = 100
	cfg.LoopCeiling = 100
	cfg.MaxIterations = 12

	exec := newExecutor(&alternatingLLM{}, cfg)
	session := store.NewResearchSession("s1", "solar power")

	if err := exec.Run(context.Background(), session, nil); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if session.Decision != store.DecisionStop {
		t.Errorf("Decision = %q, want stop", session.Decision)
	}
	if session.LoopCount != cfg.MaxIterations {
		t.Errorf("LoopCount = %d, want %d critique passes before the ceiling", session.LoopCount, cfg.MaxIterations)
	}
	if session.ResearchCount >= cfg.ResearchCap || session.SummarizeCount >= cfg.SummarizeCap {
		t.Errorf("counters research %d / summarize %d reached a cap; termination must come from the iteration ceiling",
			session.ResearchCount, session.SummarizeCount)
	}
	if session.Summary == "" {
		t.Error("Summary is empty after implicit completion")
	}
}
