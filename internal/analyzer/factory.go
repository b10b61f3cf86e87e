package analyzer

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"docanalyzer/internal/config"
	"docanalyzer/internal/port"
)

// ProviderFactory is a function that creates a DocumentAnalyzer from a provider config.
type ProviderFactory func(cfg *config.AnalyzerProviderConfig) (port.DocumentAnalyzer, error)

var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// NewProvider creates a DocumentAnalyzer from a provider config using the registered factory.
func NewProvider(cfg *config.AnalyzerProviderConfig) (port.DocumentAnalyzer, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewAnalyzer assembles the configured providers according to cfg.Mode:
//
//	single   - the first usable provider only
//	fallback - providers tried in order with rate-limit circuits
//	dual     - the first two providers run in parallel and merged
//
// Providers without an API key are skipped. ErrNoProviders is returned when
// none is usable.
func NewAnalyzer(cfg *config.AnalyzerConfig) (port.DocumentAnalyzer, error) {
	candidates := []*config.AnalyzerProviderConfig{cfg.PrimaryConfig()}
	if s := cfg.SecondaryConfig(); s != nil {
		candidates = append(candidates, s)
	}
	if t := cfg.TertiaryConfig(); t != nil {
		candidates = append(candidates, t)
	}

	var (
		built []port.DocumentAnalyzer
		names []string
	)
	for _, c := range candidates {
		if c.Provider == "" || c.APIKey == "" {
			continue
		}
		a, err := NewProvider(c)
		if err != nil {
			return nil, err
		}
		built = append(built, a)
		names = append(names, c.Provider)
	}

	if len(built) == 0 {
		return nil, ErrNoProviders
	}

	switch {
	case cfg.Mode == "dual" && len(built) >= 2:
		log.Info().Msgf("analyzer.NewAnalyzer: dual mode (%s + %s)", names[0], names[1])
		return NewMergeAnalyzer(built[0], built[1]), nil
	case cfg.Mode == "fallback" && len(built) >= 2:
		log.Info().Msgf("analyzer.NewAnalyzer: fallback mode %v", names)
		return NewFallbackAnalyzer(built, names), nil
	default:
		log.Info().Msgf("analyzer.NewAnalyzer: single provider %s", names[0])
		return built[0], nil
	}
}
