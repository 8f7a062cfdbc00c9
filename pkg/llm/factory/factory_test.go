package factory

import (
	"context"
	"errors"
	"testing"

	"ai-research-be/pkg/llm"
)

type stubProvider struct {
	replies []string
	errs    []error
	calls   int
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	i := s.calls
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	s.calls++
	return s.replies[i], s.errs[i]
}

func TestNewLLMProviderRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name         string
		providerType string
		apiKey       string
	}{
		{"unsupported provider", "anthropic", "key"},
		{"groq without key", "groq", ""},
		{"openai without key", "openai", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLLMProvider(tt.providerType, "model", "", tt.apiKey)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if p != nil {
				t.Errorf("expected nil provider, got %T", p)
			}
		})
	}
}

func TestSelfTestPassesOnAnswer(t *testing.T) {
	stub := &stubProvider{replies: []string{"OK"}, errs: []error{nil}}

	if err := SelfTest(context.Background(), stub, 1); err != nil {
		t.Fatalf("SelfTest = %v, want nil", err)
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}
}

func TestSelfTestFailsWhenUnreachable(t *testing.T) {
	connRefused := errors.New("connection refused")
	stub := &stubProvider{replies: []string{""}, errs: []error{connRefused}}

	err := SelfTest(context.Background(), stub, 1)
	if err == nil {
		t.Fatal("SelfTest = nil, want error")
	}
	if !errors.Is(err, connRefused) {
		t.Errorf("SelfTest error %v does not wrap the transport failure", err)
	}
}

func TestSelfTestTreatsEmptyReplyAsFailure(t *testing.T) {
	stub := &stubProvider{replies: []string{"   "}, errs: []error{nil}}

	err := SelfTest(context.Background(), stub, 1)
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("SelfTest = %v, want wrapped ErrEmptyResponse", err)
	}
}

func TestSelfTestRecoversWithinRetries(t *testing.T) {
	stub := &stubProvider{
		replies: []string{"", "OK"},
		errs:    []error{errors.New("connection refused"), nil},
	}

	if err := SelfTest(context.Background(), stub, 2); err != nil {
		t.Fatalf("SelfTest = %v, want nil after retry", err)
	}
	if stub.calls != 2 {
		t.Errorf("calls = %d, want 2", stub.calls)
	}
}

func TestSelfTestHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubProvider{
		replies: []string{"", "OK"},
		errs:    []error{errors.New("connection refused"), nil},
	}

	err := SelfTest(ctx, stub, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("SelfTest = %v, want context.Canceled", err)
	}
}
