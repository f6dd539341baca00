package httpapi

import (
	"errors"

	"github.com/asafiz/azurebot/internal/observability"
	"github.com/asafiz/azurebot/internal/relay"
	"github.com/asafiz/azurebot/llm"
)

const (
	credentialsMessage  = "Error: AWS credentials not configured. Please set AWS_ACCESS_KEY and AWS_SECRET_KEY environment variables."
	providerErrorPrefix = "Error calling Bedrock LLM: "
)

// renderError turns a relay failure into the text shown as the assistant
// reply. Failures are reported in-band so the page always has something to
// display.
func renderError(err error) string {
	if errors.Is(err, relay.ErrNoCredentials) {
		return credentialsMessage
	}
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return providerErrorPrefix + llmErr.Detail()
	}
	return providerErrorPrefix + err.Error()
}

func replyOutcome(err error) string {
	if err == nil {
		return observability.OutcomeOK
	}
	if errors.Is(err, relay.ErrNoCredentials) {
		return observability.OutcomeNoCredentials
	}
	var llmErr *llm.Error
	if errors.As(err, &llmErr) && llmErr.Kind == llm.ErrInvalidRequest && llmErr.Provider == "" {
		// Rejected while decoding, before any provider was involved.
		return observability.OutcomeInvalidRequest
	}
	return observability.OutcomeProviderError
}
