package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
)

// CompleteFunc performs one model call; it is also the continuation passed to Middleware.
type CompleteFunc func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a Complete call.
type Middleware func(ctx context.Context, req *Request, next CompleteFunc) (*Response, error)

// Client sends a Request to Bedrock through the adapter registered for its
// provider.
//
// A Client holds no per-request state and is safe for concurrent use as long
// as its BedrockInvoker is.
type Client struct {
	bedrock         BedrockInvoker
	adapters        map[string]Adapter
	defaultProvider string
	middleware      []Middleware
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithAdapter(a Adapter) ClientOption {
	return func(c *Client) { c.adapters[a.Provider()] = a }
}

// WithDefaultAdapters registers the Anthropic and OpenAI adapters and makes
// Anthropic the default provider unless one was already chosen.
func WithDefaultAdapters() ClientOption {
	return func(c *Client) {
		for _, a := range []Adapter{NewAnthropicAdapter(), NewOpenAIAdapter()} {
			c.adapters[a.Provider()] = a
		}
		if c.defaultProvider == "" {
			c.defaultProvider = "anthropic"
		}
	}
}

// WithDefaultProvider picks the adapter for requests with an empty Provider.
func WithDefaultProvider(provider string) ClientOption {
	return func(c *Client) { c.defaultProvider = provider }
}

// WithMiddleware appends m to the chain. The first registered runs outermost.
func WithMiddleware(m ...Middleware) ClientOption {
	return func(c *Client) { c.middleware = append(c.middleware, m...) }
}

func NewClient(bedrock BedrockInvoker, opts ...ClientOption) *Client {
	c := &Client{
		bedrock:  bedrock,
		adapters: make(map[string]Adapter),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete invokes the model once. Failures are never retried.
func (c *Client) Complete(ctx context.Context, req *Request) (*Response, error) {
	adapter, err := c.adapterFor(req)
	if err != nil {
		return nil, err
	}

	invoke := func(ctx context.Context, req *Request) (*Response, error) {
		input, err := adapter.BuildInvokeInput(req)
		if err != nil {
			return nil, err
		}
		out, err := c.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(input.ModelID),
			Body:        input.Body,
			ContentType: aws.String(input.ContentType),
			Accept:      aws.String(input.Accept),
		})
		if err != nil {
			return nil, classifyBedrockError(adapter.Provider(), err)
		}
		return adapter.ParseResponse(out.Body, req)
	}

	return chain(invoke, c.middleware)(ctx, req)
}

func (c *Client) adapterFor(req *Request) (Adapter, error) {
	provider := req.Provider
	if provider == "" {
		provider = c.defaultProvider
	}
	if provider == "" {
		return nil, &Error{Kind: ErrConfig, Message: "no provider specified and no default provider set"}
	}
	adapter, ok := c.adapters[provider]
	if !ok {
		return nil, &Error{Kind: ErrConfig, Provider: provider, Message: "no adapter registered for provider"}
	}
	if c.bedrock == nil {
		return nil, &Error{Kind: ErrConfig, Provider: provider, Message: "no bedrock client configured"}
	}
	return adapter, nil
}

func chain(fn CompleteFunc, mws []Middleware) CompleteFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], fn
		fn = func(ctx context.Context, req *Request) (*Response, error) {
			return mw(ctx, req, next)
		}
	}
	return fn
}

// bedrockErrorKinds maps Bedrock Runtime error codes to kinds. Codes are
// matched through smithy.APIError so both modeled exceptions and generic
// API errors carrying the same code are recognized.
var bedrockErrorKinds = map[string]ErrorKind{
	"AccessDeniedException":         ErrAuthentication,
	"ValidationException":           ErrInvalidRequest,
	"ResourceNotFoundException":     ErrNotFound,
	"ThrottlingException":           ErrRateLimit,
	"ServiceQuotaExceededException": ErrRateLimit,
	"ModelTimeoutException":         ErrServer,
	"ModelNotReadyException":        ErrServer,
	"InternalServerException":       ErrServer,
	"ServiceUnavailableException":   ErrServer,
	"ModelErrorException":           ErrServer,
}

func classifyBedrockError(provider string, err error) error {
	return &Error{
		Kind:     bedrockErrorKind(err),
		Provider: provider,
		Message:  err.Error(),
		Cause:    err,
	}
}

func bedrockErrorKind(err error) ErrorKind {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		// Bedrock never answered: DNS, TLS, reset connection, cancelled
		// context or credential resolution.
		return ErrTransport
	}
	if kind, ok := bedrockErrorKinds[apiErr.ErrorCode()]; ok {
		return kind
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "context length"), strings.Contains(lower, "too many tokens"):
		return ErrContextLength
	case strings.Contains(lower, "content filter"), strings.Contains(lower, "guardrail"):
		return ErrContentFilter
	case apiErr.ErrorFault() == smithy.FaultClient:
		return ErrInvalidRequest
	default:
		return ErrServer
	}
}
