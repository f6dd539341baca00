package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/asafiz/azurebot/internal/config"
	"github.com/asafiz/azurebot/internal/httpapi"
	"github.com/asafiz/azurebot/internal/observability"
	"github.com/asafiz/azurebot/internal/relay"
	"github.com/asafiz/azurebot/llm"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("env file error: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	// Left nil without credentials; the relay then answers every chat with
	// the credentials message.
	var completer relay.Completer
	if cfg.AWSConfigured() {
		bd, err := newBedrockClient(context.Background(), cfg)
		if err != nil {
			log.Fatalf("bedrock client init failed: %v", err)
		}
		completer = llm.NewClient(bd,
			llm.WithDefaultAdapters(),
			llm.WithMiddleware(metrics.Middleware()),
		)
		log.Printf("bedrock model %s in %s", cfg.ModelID, cfg.AWSRegion)
	} else {
		log.Printf("AWS credentials not configured; set AWS_ACCESS_KEY and AWS_SECRET_KEY to enable chat")
	}

	api := httpapi.New(cfg, relay.New(cfg, completer), metrics)
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

func newBedrockClient(ctx context.Context, cfg config.Config) (*bedrockruntime.Client, error) {
	conf, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(conf), nil
}
