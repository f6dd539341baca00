// Package relay forwards a browser conversation to the configured Bedrock
// model and returns the text of its reply.
package relay

import (
	"context"
	"encoding/json"

	"github.com/asafiz/azurebot/internal/config"
	"github.com/asafiz/azurebot/llm"
)

// Fixed inference parameters applied to every call.
const (
	MaxTokens   = 1000
	Temperature = 0.7
)

// ErrNoCredentials is returned when either AWS credential is missing.
var ErrNoCredentials error = &llm.Error{Kind: llm.ErrConfig, Message: "AWS credentials not configured"}

// Completer performs a single model call.
type Completer interface {
	Complete(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// Relay turns a client conversation into one model call. It keeps no state
// between calls; the client re-sends the whole history every time.
type Relay struct {
	cfg    config.Config
	client Completer
}

// New creates a Relay. client may be nil when no credentials are configured.
func New(cfg config.Config, client Completer) *Relay {
	return &Relay{cfg: cfg, client: client}
}

// Infer sends the user and assistant turns of conv to the model and returns
// the reply text. Without credentials it fails with ErrNoCredentials and
// never touches the network.
func (r *Relay) Infer(ctx context.Context, conv llm.Conversation) (string, error) {
	if err := r.checkCredentials(); err != nil {
		return "", err
	}

	maxTokens := MaxTokens
	temperature := Temperature
	req := &llm.Request{
		Model:       r.cfg.ModelID,
		Provider:    llm.ProviderForModel(r.cfg.ModelID),
		System:      r.cfg.SystemPrompt,
		Messages:    conv.Dialogue(),
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Reply decodes a raw JSON message list and infers a reply for it. The
// credential check runs first, so the outcome without credentials does not
// depend on the input.
func (r *Relay) Reply(ctx context.Context, rawMessages json.RawMessage) (string, error) {
	if err := r.checkCredentials(); err != nil {
		return "", err
	}
	conv, err := llm.DecodeConversation(rawMessages)
	if err != nil {
		return "", err
	}
	return r.Infer(ctx, conv)
}

func (r *Relay) checkCredentials() error {
	if !r.cfg.AWSConfigured() {
		return ErrNoCredentials
	}
	if r.client == nil {
		return &llm.Error{Kind: llm.ErrConfig, Message: "bedrock client not initialized"}
	}
	return nil
}
