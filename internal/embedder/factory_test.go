package embedder

import (
	"errors"
	"testing"
	"time"

	"github.com/scenedex/scenedex/internal/config"
)

func factoryConfig(provider string) *config.Config {
	return &config.Config{
		EmbeddingProvider:    provider,
		EmbeddingDimensions:  8,
		OllamaURL:            "http://localhost:11434",
		BatchSize:            10,
		MaxConcurrentBatches: 2,
		MaxRetries:           2,
		RetryBaseDelay:       time.Millisecond,
		CacheSize:            16,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantErr   error
		wantModel string
	}{
		{
			name:      "local provider",
			cfg:       factoryConfig(config.ProviderLocal),
			wantModel: "local-embeddings",
		},
		{
			name:      "ollama provider",
			cfg:       factoryConfig(config.ProviderOllama),
			wantModel: DefaultOllamaModel,
		},
		{
			name:    "openai without key",
			cfg:     factoryConfig(config.ProviderOpenAI),
			wantErr: ErrNoProviderEnabled,
		},
		{
			name:    "unknown provider",
			cfg:     factoryConfig("pinecone"),
			wantErr: ErrUnsupportedModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer client.Close()

			if client.ModelID() != tt.wantModel {
				t.Errorf("ModelID() = %s, want %s", client.ModelID(), tt.wantModel)
			}
		})
	}

	t.Run("case insensitive provider name", func(t *testing.T) {
		client, err := New(factoryConfig("Local"), nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer client.Close()

		if client.ModelID() != "local-embeddings" {
			t.Errorf("ModelID() = %s, want local-embeddings", client.ModelID())
		}
	})

	t.Run("openai with key", func(t *testing.T) {
		cfg := factoryConfig(config.ProviderOpenAI)
		cfg.OpenAIKey = "test-key"

		client, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer client.Close()

		if client.ModelID() != DefaultOpenAIModel {
			t.Errorf("ModelID() = %s, want %s", client.ModelID(), DefaultOpenAIModel)
		}
	})

	t.Run("client settings from config", func(t *testing.T) {
		cfg := factoryConfig(config.ProviderLocal)
		cfg.BatchSize = 7
		cfg.MaxRetries = 5

		client, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer client.Close()

		if client.batchSize != 7 {
			t.Errorf("batchSize = %d, want 7", client.batchSize)
		}
		if client.retry.MaxRetries != 5 {
			t.Errorf("retry.MaxRetries = %d, want 5", client.retry.MaxRetries)
		}
	})
}
