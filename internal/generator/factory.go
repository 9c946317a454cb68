package generator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"planfill/internal/config"
	"planfill/internal/domain"
	"planfill/internal/port"
)

// ProviderFactory is a function that creates a TextGenerator from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.TextGenerator, error)

// registry of generator provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a generator provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGenerator creates a TextGenerator from a provider config using the registered factory.
func NewGenerator(cfg *config.GeneratorProviderConfig) (port.TextGenerator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("generator provider %s: %w", cfg.Provider, domain.ErrMissingCredential)
	}
	return factory(cfg)
}

// FromConfig assembles the configured provider chain. A single
// configured provider is returned directly; multiple providers are
// wrapped in a FallbackGenerator in primary, secondary, tertiary order.
func FromConfig(cfg *config.GeneratorConfig, logger *zap.Logger) (port.TextGenerator, error) {
	var (
		generators []port.TextGenerator
		names      []string
	)
	for _, pc := range []*config.GeneratorProviderConfig{
		cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig(),
	} {
		if pc == nil || pc.Provider == "" {
			continue
		}
		g, err := NewGenerator(pc)
		if err != nil {
			return nil, err
		}
		generators = append(generators, g)
		names = append(names, pc.Provider)
	}
	if len(generators) == 0 {
		return nil, fmt.Errorf("no generator provider configured")
	}
	if len(generators) == 1 {
		return generators[0], nil
	}
	return NewFallbackGenerator(generators, names, logger), nil
}
