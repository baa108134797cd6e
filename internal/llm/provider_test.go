package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig_DefaultIsNoOp(t *testing.T) {
	p := NewFromConfig(DefaultConfig())
	assert.Equal(t, "noop", p.Name())
	assert.False(t, p.IsAvailable())
}

func TestNewFromConfig_AnthropicWithoutKeyFallsBackToNoOp(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	p := NewFromConfig(Config{Provider: "anthropic"})
	assert.Equal(t, "noop", p.Name())
}

func TestNewFromConfig_AnthropicWithKey(t *testing.T) {
	p := NewFromConfig(Config{Provider: "anthropic", AnthropicAPIKey: "sk-test"})
	require.Equal(t, "anthropic", p.Name())
	assert.True(t, p.IsAvailable())
}

func TestNewFromConfig_OpenAIWithKey(t *testing.T) {
	p := NewFromConfig(Config{Provider: "openai", OpenAIAPIKey: "sk-test"})
	assert.Equal(t, "openai", p.Name())
	assert.True(t, p.IsAvailable())
}

func TestNewFromConfig_Ollama(t *testing.T) {
	p := NewFromConfig(Config{Provider: "ollama"})
	assert.Equal(t, "ollama", p.Name())
	assert.True(t, p.IsAvailable())
}

func TestNewFromConfig_UnknownProviderIsNoOp(t *testing.T) {
	p := NewFromConfig(Config{Provider: "bogus"})
	assert.Equal(t, "noop", p.Name())
}
