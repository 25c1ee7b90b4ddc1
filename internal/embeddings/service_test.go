package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid",
			config: Config{BaseURL: "http://localhost:8080/v1", Model: "BAAI/bge-small-en-v1.5"},
		},
		{
			name:    "missing base URL",
			config:  Config{Model: "text-embedding-3-small"},
			wantErr: true,
		},
		{
			name:    "missing model",
			config:  Config{BaseURL: "https://api.openai.com/v1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("EMBEDDING_BASE_URL", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "")

	config := ConfigFromEnv()
	assert.Equal(t, "https://api.openai.com/v1", config.BaseURL)
	assert.Equal(t, "text-embedding-3-small", config.Model)
	assert.Empty(t, config.APIKey)
}

func TestNewService(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewService(Config{})
		require.Error(t, err)
	})

	t.Run("constructs without API key", func(t *testing.T) {
		service, err := NewService(Config{
			BaseURL: "http://localhost:8080/v1",
			Model:   "BAAI/bge-small-en-v1.5",
		})
		require.NoError(t, err)
		require.NotNil(t, service)
	})
}

func TestService_EmbedRejectsEmptyInput(t *testing.T) {
	service, err := NewService(Config{
		BaseURL: "http://localhost:8080/v1",
		Model:   "BAAI/bge-small-en-v1.5",
	})
	require.NoError(t, err)

	_, err = service.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = service.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
