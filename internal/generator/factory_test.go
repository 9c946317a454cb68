package generator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"planfill/internal/config"
	"planfill/internal/domain"
	"planfill/internal/generator"
	_ "planfill/internal/generator/deepseek"
	_ "planfill/internal/generator/gemini"
	_ "planfill/internal/generator/openai"
	"planfill/internal/port"
)

type stubGenerator struct {
	model string
}

func (s *stubGenerator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	return &port.GenerateOutput{Content: map[string]string{}, ModelUsed: s.model}, nil
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	generator.RegisterProvider("test-provider", func(cfg *config.GeneratorProviderConfig) (port.TextGenerator, error) {
		return &stubGenerator{model: cfg.DefaultModel}, nil
	})

	g, err := generator.NewGenerator(&config.GeneratorProviderConfig{
		Provider:     "test-provider",
		APIKey:       "k",
		DefaultModel: "stub-model",
	})

	require.NoError(t, err)
	out, err := g.Generate(context.Background(), port.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, "stub-model", out.ModelUsed)
}

func TestFactory_UnknownProvider(t *testing.T) {
	_, err := generator.NewGenerator(&config.GeneratorProviderConfig{Provider: "nope"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator provider")
}

func TestFactory_MissingCredential(t *testing.T) {
	for _, name := range []string{"deepseek", "openai", "gemini"} {
		_, err := generator.NewGenerator(&config.GeneratorProviderConfig{Provider: name})
		assert.ErrorIs(t, err, domain.ErrMissingCredential, name)

		_, err = generator.NewGenerator(&config.GeneratorProviderConfig{Provider: name, APIKey: "   "})
		assert.ErrorIs(t, err, domain.ErrMissingCredential, name)
	}
}

func TestFromConfig_MissingCredential(t *testing.T) {
	cfg := &config.GeneratorConfig{
		Provider:     "deepseek",
		DefaultModel: "deepseek-chat",
	}

	_, err := generator.FromConfig(cfg, zap.NewNop())

	require.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestFromConfig_MissingSecondaryCredential(t *testing.T) {
	cfg := &config.GeneratorConfig{
		Primary:   config.GeneratorProviderConfig{Provider: "deepseek", APIKey: "k"},
		Secondary: config.GeneratorProviderConfig{Provider: "openai"},
	}

	_, err := generator.FromConfig(cfg, zap.NewNop())

	require.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestFactory_BuiltinProvidersRegistered(t *testing.T) {
	for _, name := range []string{"deepseek", "openai", "gemini"} {
		g, err := generator.NewGenerator(&config.GeneratorProviderConfig{Provider: name, APIKey: "k"})
		require.NoError(t, err, name)
		assert.NotNil(t, g, name)
	}
}

func TestFromConfig_SingleProvider(t *testing.T) {
	cfg := &config.GeneratorConfig{
		Provider:     "deepseek",
		APIKey:       "k",
		DefaultModel: "deepseek-chat",
	}

	g, err := generator.FromConfig(cfg, zap.NewNop())

	require.NoError(t, err)
	_, isFallback := g.(*generator.FallbackGenerator)
	assert.False(t, isFallback)
}

func TestFromConfig_ChainWrapsFallback(t *testing.T) {
	cfg := &config.GeneratorConfig{
		Primary:   config.GeneratorProviderConfig{Provider: "deepseek", APIKey: "k"},
		Secondary: config.GeneratorProviderConfig{Provider: "openai", APIKey: "k"},
	}

	g, err := generator.FromConfig(cfg, zap.NewNop())

	require.NoError(t, err)
	_, isFallback := g.(*generator.FallbackGenerator)
	assert.True(t, isFallback)
}

func TestFromConfig_NoProvider(t *testing.T) {
	_, err := generator.FromConfig(&config.GeneratorConfig{}, zap.NewNop())

	require.Error(t, err)
}
