package llm

import "fmt"

// ErrorKind classifies LLM errors.
type ErrorKind int

const (
	ErrConfig         ErrorKind = iota // misconfiguration, e.g. missing credentials
	ErrTransport                       // the request never produced a provider response
	ErrAdapter                         // marshal/unmarshal failure in adapter
	ErrAuthentication                  // 401/403
	ErrNotFound                        // 404
	ErrInvalidRequest                  // 400, or a malformed client conversation
	ErrRateLimit                       // 429
	ErrServer                          // 500+
	ErrContextLength                   // input too large
	ErrContentFilter                   // blocked by safety guardrails
)

var errorKindNames = [...]string{
	ErrConfig:         "config",
	ErrTransport:      "transport",
	ErrAdapter:        "adapter",
	ErrAuthentication: "authentication",
	ErrNotFound:       "not_found",
	ErrInvalidRequest: "invalid_request",
	ErrRateLimit:      "rate_limit",
	ErrServer:         "server",
	ErrContextLength:  "context_length",
	ErrContentFilter:  "content_filter",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", k)
}

// Origin groups error kinds by where the failure happened.
type Origin string

const (
	OriginConfiguration Origin = "configuration"
	OriginTransport     Origin = "transport"
	OriginProvider      Origin = "provider"
)

// Origin reports whether the kind is a configuration, transport or provider failure.
func (k ErrorKind) Origin() Origin {
	switch k {
	case ErrConfig:
		return OriginConfiguration
	case ErrTransport:
		return OriginTransport
	default:
		return OriginProvider
	}
}

// Error is the library's error type.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Cause    error  // underlying error
	Raw      []byte // raw response body if available
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("llm [%s] %s: %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("llm [%s]: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail returns the underlying failure message without the kind and
// provider decoration added by Error.
func (e *Error) Detail() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "" || e.Message == e.Cause.Error():
		return e.Cause.Error()
	default:
		return e.Message + ": " + e.Cause.Error()
	}
}
