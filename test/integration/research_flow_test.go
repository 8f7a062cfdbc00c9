package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"ai-research-be/internal/bootstrap"
	"ai-research-be/internal/config"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/internal/server"
	"ai-research-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ResearchRecordRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Research Record Repository", func(t *testing.T) {
		// Count implies the table and its columns exist
		count, err := uow.ResearchRecordRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Research record count: %d", count)
	})
}

// TestResearchSessionLifecycle drives the full HTTP surface: create a
// session, step it until the pipeline escalates, resolve it with a manual
// summary, then read it back and delete it.
func TestResearchSessionLifecycle(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	srv := server.New(cfg, container)
	app := srv.GetApp()

	type envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	type sessionBody struct {
		Id             string `json:"id"`
		Query          string `json:"query"`
		Summary        string `json:"summary"`
		Decision       string `json:"decision"`
		LoopCount      int    `json:"loop_count"`
		ResearchCount  int    `json:"research_count"`
		SummarizeCount int    `json:"summarize_count"`
	}

	doJSON := func(method, path, body string) (*envelope, int) {
		t.Helper()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, 120000)
		if err != nil {
			t.Fatalf("request %s %s failed: %v", method, path, err)
		}
		defer resp.Body.Close()

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
		return &env, resp.StatusCode
	}

	// 1. Create a session
	env, code := doJSON("POST", "/api/research/v1/sessions", `{"query": "history of the transistor"}`)
	assert.Equal(t, 201, code)

	var session sessionBody
	assert.NoError(t, json.Unmarshal(env.Data, &session))
	assert.NotEmpty(t, session.Id)
	assert.Equal(t, "history of the transistor", session.Query)

	sessionPath := fmt.Sprintf("/api/research/v1/sessions/%s", session.Id)

	// 2. Step until the pipeline asks for feedback or finishes
	for i := 0; i < 10; i++ {
		env, code = doJSON("POST", sessionPath+"/step", "")
		if code != 200 {
			t.Fatalf("step %d returned %d: %s", i+1, code, env.Message)
		}
		assert.NoError(t, json.Unmarshal(env.Data, &session))
		t.Logf("step %d: decision=%s loops=%d", i+1, session.Decision, session.LoopCount)

		if session.Decision == "escalate" || session.Decision == "stop" {
			break
		}
	}
	assert.NotEmpty(t, session.Summary)
	assert.Contains(t, []string{"escalate", "stop"}, session.Decision)

	// 3. Resolve escalation with a manual summary
	if session.Decision == "escalate" {
		env, code = doJSON("POST", sessionPath+"/feedback",
			`{"action": "manual", "manual_summary": "Reviewed and closed by operator."}`)
		assert.Equal(t, 200, code)
		assert.NoError(t, json.Unmarshal(env.Data, &session))
		assert.Equal(t, "stop", session.Decision)
		assert.Equal(t, "Reviewed and closed by operator.", session.Summary)
	}

	// 4. Stepping a finished session is a conflict
	_, code = doJSON("POST", sessionPath+"/step", "")
	assert.Equal(t, 409, code)

	// 5. Read back and clean up
	env, code = doJSON("GET", sessionPath, "")
	assert.Equal(t, 200, code)
	assert.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "stop", session.Decision)

	_, code = doJSON("DELETE", sessionPath, "")
	assert.Equal(t, 200, code)
}
