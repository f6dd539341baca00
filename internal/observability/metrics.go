package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asafiz/azurebot/llm"
)

// Chat reply outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeNoCredentials  = "no_credentials"
	OutcomeProviderError  = "provider_error"
	OutcomeInvalidRequest = "invalid_request"
)

// Metrics groups all Prometheus instruments used by the service. Each
// Metrics owns its registry, so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	ChatReplies       *prometheus.CounterVec
	InferenceDuration *prometheus.HistogramVec
	InferenceErrors   *prometheus.CounterVec
	TokensUsed        *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ChatReplies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_replies_total",
			Help:      "Chat replies by outcome.",
		}, []string{"outcome"}),
		InferenceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Bedrock inference latency by provider.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"provider"}),
		InferenceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_errors_total",
			Help:      "Bedrock inference errors by provider and kind.",
		}, []string{"provider", "kind"}),
		TokensUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported by the model by direction.",
		}, []string{"direction"}),
	}
}

// ObserveReply counts one chat reply.
func (m *Metrics) ObserveReply(outcome string) {
	m.ChatReplies.WithLabelValues(outcome).Inc()
}

// Middleware records latency, errors and token usage of every model call.
func (m *Metrics) Middleware() llm.Middleware {
	return func(ctx context.Context, req *llm.Request, next llm.CompleteFunc) (*llm.Response, error) {
		provider := req.Provider
		if provider == "" {
			provider = "default"
		}

		start := time.Now()
		resp, err := next(ctx, req)
		m.InferenceDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

		if err != nil {
			kind := "unknown"
			var llmErr *llm.Error
			if errors.As(err, &llmErr) {
				kind = llmErr.Kind.String()
			}
			m.InferenceErrors.WithLabelValues(provider, kind).Inc()
			return resp, err
		}
		if resp != nil {
			m.TokensUsed.WithLabelValues("input").Add(float64(resp.Usage.InputTokens))
			m.TokensUsed.WithLabelValues("output").Add(float64(resp.Usage.OutputTokens))
		}
		return resp, nil
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
