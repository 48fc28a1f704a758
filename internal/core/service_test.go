package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/gridmap/internal/config"
)

func testService(maxConcurrent int) *Service {
	return NewService(nil, config.EngineConfig{
		PreviewLimit:  2,
		MaxConcurrent: maxConcurrent,
		MaxWaitTime:   20 * time.Millisecond,
	})
}

func TestService_Generate(t *testing.T) {
	s := testService(2)
	g := scenarioGrid()

	tuples, err := s.Generate(context.Background(), scenarioMappings(g), g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(tuples) != 4 {
		t.Errorf("got %d tuples, want 4", len(tuples))
	}

	if _, err := s.Generate(context.Background(), scenarioMappings(g)[1:], g); !errors.Is(err, ErrMissingValueMapping) {
		t.Errorf("Generate() error = %v, want ErrMissingValueMapping", err)
	}
	if got := s.LimiterStatus().Active; got != 0 {
		t.Errorf("slot leaked: Active = %d", got)
	}
}

func TestService_PreviewUsesConfiguredLimit(t *testing.T) {
	s := testService(1)
	g := scenarioGrid()

	result, err := s.Preview(context.Background(), scenarioMappings(g), g, 0)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(result.Samples) != 2 {
		t.Errorf("Samples = %d, want configured limit 2", len(result.Samples))
	}
}

func TestService_Validate(t *testing.T) {
	s := testService(1)

	result, err := s.Validate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("empty mapping set should be invalid")
	}
}

func TestService_Busy(t *testing.T) {
	s := testService(1)
	if !s.limiter.TryAcquire() {
		t.Fatal("TryAcquire failed on idle limiter")
	}
	defer s.limiter.Release()

	g := scenarioGrid()
	if _, err := s.Generate(context.Background(), scenarioMappings(g), g); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("Generate() error = %v, want ErrTooManyRequests", err)
	}
}

func TestService_Cancelled(t *testing.T) {
	s := testService(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("Run() invoked fn with a cancelled context")
	}
}

func TestService_TemplatesUnavailable(t *testing.T) {
	s := testService(1)
	g := scenarioGrid()

	if _, err := s.ApplyTemplate(context.Background(), "6f1c1b9e-8d52-4c1e-9a57-0d7b8f3c2a10", g); !errors.Is(err, ErrTemplatesUnavailable) {
		t.Errorf("ApplyTemplate() error = %v, want ErrTemplatesUnavailable", err)
	}
	if _, err := s.MatchTemplates(context.Background(), g); !errors.Is(err, ErrTemplatesUnavailable) {
		t.Errorf("MatchTemplates() error = %v, want ErrTemplatesUnavailable", err)
	}
	if s.Templates().Available() {
		t.Error("Templates().Available() = true without a pool")
	}
}

func TestService_WaitForIdle(t *testing.T) {
	s := testService(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.WaitForIdle(ctx); err != nil {
		t.Errorf("WaitForIdle() error = %v", err)
	}
}
