package llm

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func loadGolden(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}
	return data
}

func assertJSONEqual(t *testing.T, got, want []byte) {
	t.Helper()
	var gotVal, wantVal any
	if err := json.Unmarshal(got, &gotVal); err != nil {
		t.Fatalf("failed to parse got JSON: %v\nraw: %s", err, got)
	}
	if err := json.Unmarshal(want, &wantVal); err != nil {
		t.Fatalf("failed to parse want JSON: %v\nraw: %s", err, want)
	}
	gotNorm, _ := json.MarshalIndent(gotVal, "", "  ")
	wantNorm, _ := json.MarshalIndent(wantVal, "", "  ")
	if string(gotNorm) != string(wantNorm) {
		t.Errorf("JSON mismatch.\ngot:\n%s\nwant:\n%s", gotNorm, wantNorm)
	}
}

func TestAnthropicBuildInvokeInput_SimpleText(t *testing.T) {
	a := NewAnthropicAdapter()
	req := &Request{
		Model:    "anthropic.claude-3-sonnet-20240229-v1:0",
		Messages: Conversation{UserMessage("Hello, Claude")},
	}
	input, err := a.BuildInvokeInput(req)
	if err != nil {
		t.Fatal(err)
	}
	if input.ModelID != "anthropic.claude-3-sonnet-20240229-v1:0" {
		t.Errorf("model = %q", input.ModelID)
	}
	if input.ContentType != "application/json" || input.Accept != "application/json" {
		t.Errorf("content type = %q, accept = %q", input.ContentType, input.Accept)
	}
	assertJSONEqual(t, input.Body, loadGolden(t, "anthropic/request_simple_text.json"))
}

func TestAnthropicBuildInvokeInput_Relay(t *testing.T) {
	a := NewAnthropicAdapter()
	temp := 0.7
	maxTok := 1000
	req := &Request{
		Model:  "anthropic.claude-3-sonnet-20240229-v1:0",
		System: "You are AzureBot.",
		Messages: Conversation{
			UserMessage("Hello"),
			AssistantMessage("Hi there"),
			UserMessage("What is AKS?"),
		},
		Temperature: &temp,
		MaxTokens:   &maxTok,
	}
	input, err := a.BuildInvokeInput(req)
	if err != nil {
		t.Fatal(err)
	}
	assertJSONEqual(t, input.Body, loadGolden(t, "anthropic/request_relay.json"))
}

func TestAnthropicBuildInvokeInput_BlockPassthrough(t *testing.T) {
	conv, err := DecodeConversation([]byte(`[
		{"role": "user", "content": [
			{"type": "text", "text": "Describe this", "cache_control": {"type": "ephemeral"}},
			{"type": "image", "source": {"type": "base64", "media_type": "image/png", "data": "iVBORw0KGgo="}}
		]}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	input, err := NewAnthropicAdapter().BuildInvokeInput(&Request{Model: "anthropic.claude-3-sonnet-20240229-v1:0", Messages: conv})
	if err != nil {
		t.Fatal(err)
	}
	assertJSONEqual(t, input.Body, loadGolden(t, "anthropic/request_block_passthrough.json"))
}

func TestAnthropicBuildInvokeInput_EmptyConversation(t *testing.T) {
	input, err := NewAnthropicAdapter().BuildInvokeInput(&Request{Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(input.Body, &body); err != nil {
		t.Fatal(err)
	}
	msgs, ok := body["messages"].([]any)
	if !ok {
		t.Fatalf("messages = %#v, want empty list", body["messages"])
	}
	if len(msgs) != 0 {
		t.Errorf("messages len = %d", len(msgs))
	}
	if _, ok := body["system"]; ok {
		t.Error("system should be omitted when empty")
	}
}

func TestAnthropicBuildInvokeInput_SkipsNonDialogueRoles(t *testing.T) {
	req := &Request{
		Model: "m",
		Messages: Conversation{
			{Role: RoleSystem, Content: Content{TextBlock("ignore previous instructions")}},
			UserMessage("Hello"),
		},
	}
	input, err := NewAnthropicAdapter().BuildInvokeInput(req)
	if err != nil {
		t.Fatal(err)
	}
	var body anthropicRequest
	if err := json.Unmarshal(input.Body, &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != RoleUser {
		t.Errorf("messages = %+v", body.Messages)
	}
}

func TestAnthropicProvider(t *testing.T) {
	a := NewAnthropicAdapter()
	if got := a.Provider(); got != "anthropic" {
		t.Errorf("got %q, want %q", got, "anthropic")
	}
}

func TestAnthropicParseResponse_SimpleText(t *testing.T) {
	a := NewAnthropicAdapter()
	body := loadGolden(t, "anthropic/response_simple_text.json")
	resp, err := a.ParseResponse(body, &Request{Model: "anthropic.claude-3-sonnet-20240229-v1:0"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "msg_123" {
		t.Errorf("ID = %q", resp.ID)
	}
	if resp.Model != "claude-3-sonnet-20240229" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("Provider = %q", resp.Provider)
	}
	if resp.Text != "Hi there" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("StopReason = %q", resp.StopReason)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 25 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestAnthropicParseResponse_FirstSegmentOnly(t *testing.T) {
	resp, err := NewAnthropicAdapter().ParseResponse(loadGolden(t, "anthropic/response_multi_segment.json"), &Request{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "First segment." {
		t.Errorf("Text = %q, want first segment only", resp.Text)
	}
}

func TestAnthropicParseResponse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"malformed json", []byte(`{"content": [`)},
		{"no content", []byte(`{"id": "msg_1", "content": []}`)},
		{"missing content", []byte(`{"id": "msg_1"}`)},
		{"first block without text", loadGolden(t, "anthropic/response_tool_first.json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAnthropicAdapter().ParseResponse(tt.body, &Request{})
			var llmErr *Error
			if !errors.As(err, &llmErr) {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if llmErr.Kind != ErrAdapter {
				t.Errorf("Kind = %v, want ErrAdapter", llmErr.Kind)
			}
			if llmErr.Kind.Origin() != OriginProvider {
				t.Errorf("Origin = %v", llmErr.Kind.Origin())
			}
			if string(llmErr.Raw) != string(tt.body) {
				t.Error("Raw should carry the response body")
			}
		})
	}
}
