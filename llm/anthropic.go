package llm

import "encoding/json"

// AnthropicAdapter translates between unified types and the Anthropic Messages API format.
type AnthropicAdapter struct{}

// NewAnthropicAdapter creates a new AnthropicAdapter.
func NewAnthropicAdapter() *AnthropicAdapter {
	return &AnthropicAdapter{}
}

func (a *AnthropicAdapter) Provider() string { return "anthropic" }

const anthropicBedrockVersion = "bedrock-2023-05-31"

// --- Anthropic request types ---

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      *float64           `json:"temperature,omitempty"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

func (a *AnthropicAdapter) BuildInvokeInput(req *Request) (*InvokeInput, error) {
	ar := anthropicRequest{
		AnthropicVersion: anthropicBedrockVersion,
		MaxTokens:        4096,
		Temperature:      req.Temperature,
		System:           req.System,
		Messages:         make([]anthropicMessage, 0, len(req.Messages)),
	}
	if req.MaxTokens != nil {
		ar.MaxTokens = *req.MaxTokens
	}

	// Turns are sent one to one and in order; the model sees exactly the
	// dialogue the client accumulated.
	for _, m := range req.Messages {
		if !m.Role.IsDialogue() {
			continue
		}
		ar.Messages = append(ar.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(ar)
	if err != nil {
		return nil, &Error{Kind: ErrAdapter, Provider: "anthropic", Message: "failed to marshal request", Cause: err}
	}

	return &InvokeInput{
		ModelID:     req.Model,
		Body:        body,
		ContentType: "application/json",
		Accept:      "application/json",
	}, nil
}

// --- Anthropic response types ---

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicResponseText `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
}

type anthropicResponseText struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ParseResponse extracts the text of the first content segment.
func (a *AnthropicAdapter) ParseResponse(body []byte, req *Request) (*Response, error) {
	var ar anthropicResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return nil, &Error{Kind: ErrAdapter, Provider: "anthropic", Message: "failed to unmarshal response", Cause: err, Raw: body}
	}
	if len(ar.Content) == 0 {
		return nil, &Error{Kind: ErrAdapter, Provider: "anthropic", Message: "response has no content", Raw: body}
	}
	first := ar.Content[0]
	if first.Text == nil {
		return nil, &Error{Kind: ErrAdapter, Provider: "anthropic", Message: "first content block has no text (type " + first.Type + ")", Raw: body}
	}

	model := ar.Model
	if model == "" {
		model = req.Model
	}

	return &Response{
		ID:         ar.ID,
		Model:      model,
		Provider:   "anthropic",
		Text:       *first.Text,
		StopReason: ar.StopReason,
		Usage: Usage{
			InputTokens:  ar.Usage.InputTokens,
			OutputTokens: ar.Usage.OutputTokens,
		},
		Raw: body,
	}, nil
}
