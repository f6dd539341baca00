package llm

import "encoding/json"

// OpenAIAdapter translates between unified types and the OpenAI Chat
// Completions format used by OpenAI models hosted on Bedrock.
type OpenAIAdapter struct{}

// NewOpenAIAdapter creates a new OpenAIAdapter.
func NewOpenAIAdapter() *OpenAIAdapter {
	return &OpenAIAdapter{}
}

func (a *OpenAIAdapter) Provider() string { return "openai" }

// --- OpenAI request types ---

type openaiRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []openaiMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_completion_tokens,omitempty"`
}

type openaiMessage struct {
	Role    Role `json:"role"`
	Content any  `json:"content"` // string for system, content parts otherwise
}

func (a *OpenAIAdapter) BuildInvokeInput(req *Request) (*InvokeInput, error) {
	or := openaiRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]openaiMessage, 0, len(req.Messages)+1),
	}

	if req.System != "" {
		or.Messages = append(or.Messages, openaiMessage{Role: RoleSystem, Content: req.System})
	}
	// Chat Completions accepts the same {type, text} content parts, so the
	// normalized blocks are forwarded as they are.
	for _, m := range req.Messages {
		if !m.Role.IsDialogue() {
			continue
		}
		or.Messages = append(or.Messages, openaiMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(or)
	if err != nil {
		return nil, &Error{Kind: ErrAdapter, Provider: "openai", Message: "failed to marshal request", Cause: err}
	}

	return &InvokeInput{
		ModelID:     req.Model,
		Body:        body,
		ContentType: "application/json",
		Accept:      "application/json",
	}, nil
}

// --- OpenAI response types ---

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiRespMsg `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiRespMsg struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ParseResponse extracts the text of the first choice.
func (a *OpenAIAdapter) ParseResponse(body []byte, req *Request) (*Response, error) {
	var or openaiResponse
	if err := json.Unmarshal(body, &or); err != nil {
		return nil, &Error{Kind: ErrAdapter, Provider: "openai", Message: "failed to unmarshal response", Cause: err, Raw: body}
	}

	if len(or.Choices) == 0 {
		return nil, &Error{Kind: ErrAdapter, Provider: "openai", Message: "response has no choices", Raw: body}
	}
	choice := or.Choices[0]
	if choice.Message.Content == nil {
		return nil, &Error{Kind: ErrAdapter, Provider: "openai", Message: "first choice has no content", Raw: body}
	}

	model := or.Model
	if model == "" {
		model = req.Model
	}

	return &Response{
		ID:         or.ID,
		Model:      model,
		Provider:   "openai",
		Text:       *choice.Message.Content,
		StopReason: choice.FinishReason,
		Usage: Usage{
			InputTokens:  or.Usage.PromptTokens,
			OutputTokens: or.Usage.CompletionTokens,
		},
		Raw: body,
	}, nil
}
