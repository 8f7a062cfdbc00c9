package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ai-research-be/internal/config"
	"ai-research-be/pkg/agent/critic"
	"ai-research-be/pkg/agent/executor"
	"ai-research-be/pkg/agent/feedback"
	"ai-research-be/pkg/agent/researcher"
	"ai-research-be/pkg/agent/summarizer"
	"ai-research-be/pkg/llm/factory"
	"ai-research-be/pkg/search"
	"ai-research-be/pkg/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	cfg := config.Load()

	query := strings.Join(os.Args[1:], " ")
	reader := bufio.NewReader(os.Stdin)
	if query == "" {
		color.Cyan("Enter a research query:")
		line, _ := reader.ReadString('\n')
		query = strings.TrimSpace(line)
	}
	if query == "" {
		color.Red("No query given.")
		os.Exit(1)
	}

	// Build the pipeline directly; the CLI needs no database or server.
	var searchProvider search.Provider
	if cfg.Ai.SearchProvider == "duckduckgo" || cfg.Keys.Tavily == "" {
		searchProvider = search.NewDuckDuckGo()
	} else {
		searchProvider = search.NewTavily(cfg.Keys.Tavily, "basic")
	}
	cachedSearch := search.NewCached(searchProvider, 30*time.Minute)

	apiKey := cfg.Keys.Groq
	if cfg.Ai.LLMProvider == "openai" {
		apiKey = cfg.Keys.OpenAI
	}
	baseURL := cfg.Ai.OpenAIBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}

	summarizerLLM, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
	if err != nil {
		log.Fatalf("LLM provider: %v", err)
	}
	criticLLM, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.CriticModel, baseURL, apiKey)
	if err != nil {
		log.Fatalf("Critic LLM provider: %v", err)
	}

	color.HiBlack("Checking LLM connectivity...")
	if err := factory.SelfTest(context.Background(), summarizerLLM, 3); err != nil {
		log.Fatalf("LLM provider unreachable: %v", err)
	}
	if err := factory.SelfTest(context.Background(), criticLLM, 3); err != nil {
		log.Fatalf("Critic LLM provider unreachable: %v", err)
	}

	agentCfg := cfg.Pipeline.Agent()
	pipelineLog := log.New(os.Stderr, "", log.LstdFlags)

	exec := executor.New(
		researcher.NewResearcher(cachedSearch, summarizerLLM, agentCfg, pipelineLog),
		summarizer.NewSummarizer(summarizerLLM, agentCfg, pipelineLog),
		critic.NewCritic(criticLLM, agentCfg, pipelineLog),
		agentCfg,
		pipelineLog,
	)
	exec.SetPhaseCallback(func(phase string, session *store.ResearchSession) {
		color.HiBlack("  [%s] loop=%d research=%d summarize=%d decision=%s",
			phase, session.LoopCount, session.ResearchCount, session.SummarizeCount, session.Decision)
	})

	session := store.NewResearchSession(uuid.NewString(), query)

	color.Cyan("Researching: %s", query)
	if err := exec.Run(context.Background(), session, &terminalReviewer{reader: reader}); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	color.Green("\n=== Final Summary ===")
	fmt.Println(session.Summary)
	color.HiBlack("(loops: %d, research attempts: %d, summarize attempts: %d)",
		session.LoopCount, session.ResearchCount, session.SummarizeCount)
}

// terminalReviewer prompts the operator on stdin when the loop escalates.
type terminalReviewer struct {
	reader *bufio.Reader
}

func (r *terminalReviewer) Review(ctx context.Context, review feedback.Review) (feedback.Choice, error) {
	color.Yellow("\n=== Review Needed (loop %d) ===", review.LoopCount)
	if review.Recommendation != "" {
		color.Yellow("Critic suggests: %s", review.Recommendation)
	}
	fmt.Println("\nCurrent summary:")
	fmt.Println(review.Summary)

	fmt.Println("\nOptions:")
	fmt.Println("  1) Accept summary")
	if review.ResearchAllowed {
		fmt.Printf("  2) More research (%d attempts used)\n", review.ResearchCount)
	} else {
		color.HiBlack("  2) More research (exhausted)")
	}
	if review.SummarizeAllowed {
		fmt.Printf("  3) Improve summary (%d attempts used)\n", review.SummarizeCount)
	} else {
		color.HiBlack("  3) Improve summary (exhausted)")
	}
	fmt.Println("  4) Write summary manually")

	for {
		fmt.Print("> ")
		line, err := r.reader.ReadString('\n')
		if err != nil {
			return feedback.Choice{}, err
		}

		switch strings.TrimSpace(line) {
		case "1":
			return feedback.Choice{Action: feedback.ActionAccept}, nil
		case "2":
			return feedback.Choice{Action: feedback.ActionMoreResearch}, nil
		case "3":
			return feedback.Choice{Action: feedback.ActionImproveSummary}, nil
		case "4":
			manual, err := r.readManualSummary()
			if err != nil {
				return feedback.Choice{}, err
			}
			return feedback.Choice{Action: feedback.ActionManualSummary, ManualSummary: manual}, nil
		default:
			color.Red("Enter 1, 2, 3 or 4.")
		}
	}
}

// readManualSummary collects lines until two consecutive empty ones.
func (r *terminalReviewer) readManualSummary() (string, error) {
	color.Cyan("Enter your summary. Finish with two empty lines.")

	var lines []string
	emptyStreak := 0
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			emptyStreak++
			if emptyStreak >= 2 {
				break
			}
		} else {
			emptyStreak = 0
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
