package ai

import (
	"context"
	"fmt"
)

// Operation names the purpose of a completion in logs and spans
type Operation string

const (
	OperationClassify Operation = "classify"
	OperationParse    Operation = "parse"
)

// CompletionRequest is a single-turn prompt sent to a provider
type CompletionRequest struct {
	Operation Operation
	System    string
	Prompt    string
	// JSON asks the provider for a JSON object response when it supports it
	JSON bool
}

// Provider is the interface for LLM providers used by ingestion
type Provider interface {
	// Complete sends the request and returns the raw text of the first choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderFactory creates an AI provider based on the provider type
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	provider, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", name, err)
	}
	return provider, nil
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
