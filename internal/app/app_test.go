package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nyashahama/partner-risk-engine/internal/app"
	"github.com/nyashahama/partner-risk-engine/internal/config"
	"github.com/nyashahama/partner-risk-engine/internal/events"
	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_WithoutDatabase(t *testing.T) {
	a, err := app.New(context.Background(), &config.Config{PendingStatus: "pending"}, discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if a.Store != nil || a.Pool != nil {
		t.Error("expected no store without DATABASE_URL")
	}
	if a.Pinger() != nil {
		t.Error("Pinger should be a nil interface without a store")
	}
	if _, ok := a.Publisher.(events.Nop); !ok {
		t.Errorf("expected no-op publisher, got %T", a.Publisher)
	}
	if a.Augmenter.Enabled() {
		t.Error("augmenter should be disabled without credentials")
	}

	_, err = a.Service.Score(context.Background(), orchestrator.ScoreRequest{PartnerID: "x"})
	if !errors.Is(err, orchestrator.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNew_KafkaPublisherWhenBrokersSet(t *testing.T) {
	a, err := app.New(context.Background(), &config.Config{
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "partner.scored",
	}, discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if _, ok := a.Publisher.(*events.KafkaPublisher); !ok {
		t.Errorf("expected kafka publisher, got %T", a.Publisher)
	}
}

func TestNewCompleter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantNil bool
	}{
		{"no keys", config.Config{}, true},
		{"openai only", config.Config{OpenAIAPIKey: "sk"}, false},
		{"anthropic only", config.Config{AnthropicAPIKey: "sk-ant"}, false},
		{"both", config.Config{OpenAIAPIKey: "sk", AnthropicAPIKey: "sk-ant"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := app.NewCompleter(&tt.cfg, discard())
			if (got == nil) != tt.wantNil {
				t.Errorf("got %v, want nil=%v", got, tt.wantNil)
			}
		})
	}
}
