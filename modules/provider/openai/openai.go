// Package openai implements the provider.openai module, a Chat Completions
// API client used as the assistant's completion backend.
package openai

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aikodesk/aiko/internal/core"
	"github.com/aikodesk/aiko/internal/provider"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Provider{})
}

// Compile-time interface guards.
var (
	_ provider.Completer = (*Provider)(nil)
	_ core.Module        = (*Provider)(nil)
	_ core.Configurable  = (*Provider)(nil)
	_ core.Provisioner   = (*Provider)(nil)
	_ core.Validator     = (*Provider)(nil)
)

// Provider implements the OpenAI Chat Completions API as a provider module.
type Provider struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// ModuleInfo implements core.Module.
func (p *Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.openai",
		New: func() core.Module { return &Provider{} },
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	if err := node.Decode(&p.config); err != nil {
		return err
	}
	p.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(ctx *core.AppContext) error {
	p.logger = ctx.Logger

	// http.Client.Timeout is a hard deadline for the entire response body,
	// which is what we want for non-streaming completions.
	p.client = &http.Client{
		Timeout: p.config.parsedTimeout(),
	}

	ctx.RegisterService("provider.openai", p)

	return nil
}

// Validate implements core.Validator.
func (p *Provider) Validate() error {
	if p.config.APIKey == "" {
		return errors.New("provider.openai: api_key is required")
	}
	if p.config.Model == "" {
		return errors.New("provider.openai: model is required")
	}
	if err := p.config.validateTimeout(); err != nil {
		return err
	}
	return nil
}
