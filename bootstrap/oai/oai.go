// Package oai is a Firebase Genkit plugin for any OpenAI-compatible
// endpoint. The endpoint, key and model all come from configuration, so
// the same plugin serves OpenAI itself or a self-hosted gateway.
package oai

import (
	"context"
	"os"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/openai/openai-go/option"
)

const provider = "oai"

// OAI is a plugin that targets an OpenAI-compatible API.
type OAI struct {
	// APIKey for the endpoint. If empty, the environment variable
	// "OAI_API_KEY" is consulted.
	APIKey string
	// BaseURL of the endpoint. Defaults to the OpenAI API.
	BaseURL string

	openAICompatible *compat_oai.OpenAICompatible
}

// Name implements genkit.Plugin.
func (o *OAI) Name() string {
	return provider
}

// Init implements genkit.Plugin.
func (o *OAI) Init(ctx context.Context) []api.Action {
	apiKey := o.APIKey
	baseURL := o.BaseURL

	if apiKey == "" {
		apiKey = os.Getenv("OAI_API_KEY")
	}
	if apiKey == "" {
		panic("oai plugin initialization failed: apiKey is required (set OAI_API_KEY or pass APIKey)")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/"
	}

	if o.openAICompatible == nil {
		o.openAICompatible = &compat_oai.OpenAICompatible{}
	}

	o.openAICompatible.Opts = []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	o.openAICompatible.Provider = provider
	return o.openAICompatible.Init(ctx)
}

// Model returns a model by name.
func (o *OAI) Model(g *genkit.Genkit, name string) ai.Model {
	return o.openAICompatible.Model(g, api.NewName(provider, name))
}

// DefineModel defines a model with the given ID and options.
func (o *OAI) DefineModel(id string, opts ai.ModelOptions) ai.Model {
	return o.openAICompatible.DefineModel(provider, id, opts)
}

// DefineModelWithDefaults defines a model with multimodal defaults.
func (o *OAI) DefineModelWithDefaults(id string) ai.Model {
	return o.DefineModel(id, ai.ModelOptions{
		Label:    "OpenAI-compatible " + id,
		Supports: &compat_oai.Multimodal,
	})
}

// ListActions returns a list of actions provided by this plugin.
func (o *OAI) ListActions(ctx context.Context) []api.ActionDesc {
	return o.openAICompatible.ListActions(ctx)
}

// ResolveAction resolves an action by type and name.
func (o *OAI) ResolveAction(atype api.ActionType, name string) api.Action {
	return o.openAICompatible.ResolveAction(atype, name)
}
