package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietfact/newsguard/pkg/api"
	"github.com/vietfact/newsguard/pkg/config"
	"github.com/vietfact/newsguard/pkg/observability/logging"
	"github.com/vietfact/newsguard/pkg/observability/tracing"
	"github.com/vietfact/newsguard/pkg/services"
)

func main() {
	// Parse command-line flags
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to the configuration file")
		apiPort     = flag.Int("api-port", 8080, "Port to listen on for the prediction API")
		metricsPort = flag.Int("metrics-port", 9190, "Port for Prometheus metrics")
	)
	flag.Parse()

	// Initialize logging (zap) from environment.
	if _, err := logging.InitLoggerFromEnv(); err != nil {
		// Fallback to stderr since logger initialization failed
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}

	// Check if config file exists
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logging.Fatalf("Config file not found: %s", *configPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("Failed to load config: %v", err)
	}

	// Initialize distributed tracing if enabled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Observability.Tracing.Enabled {
		tracingCfg := tracing.Config{
			Enabled:          cfg.Observability.Tracing.Enabled,
			ExporterType:     cfg.Observability.Tracing.Exporter.Type,
			ExporterEndpoint: cfg.Observability.Tracing.Exporter.Endpoint,
			ExporterInsecure: cfg.Observability.Tracing.Exporter.Insecure,
			SamplingType:     cfg.Observability.Tracing.Sampling.Type,
			SamplingRate:     cfg.Observability.Tracing.Sampling.Rate,
			ServiceName:      cfg.Observability.Tracing.ServiceName,
		}
		if tracingErr := tracing.Init(ctx, tracingCfg); tracingErr != nil {
			logging.Warnf("Failed to initialize tracing: %v", tracingErr)
		}
	}

	// Wire the inference pipeline
	inferenceSvc, err := services.NewInferenceServiceFromConfig(cfg)
	if err != nil {
		logging.Fatalf("Failed to create inference service: %v", err)
	}
	defer inferenceSvc.Close()

	// Open the feedback store if enabled
	if cfg.Feedback.Enabled {
		feedbackSvc, feedbackErr := services.NewFeedbackService(cfg.Feedback.DBPath)
		if feedbackErr != nil {
			logging.Fatalf("Failed to open feedback store: %v", feedbackErr)
		}
		defer feedbackSvc.Close()
	} else {
		logging.Infof("Feedback persistence disabled")
	}

	// Reload thresholds and keyword lists on config file changes
	go config.WatchFile(ctx, *configPath, func(newCfg *config.AppConfig) {
		inferenceSvc.UpdateConfig(newCfg)
	})

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logging.Infof("Received shutdown signal, cleaning up...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tracing.Shutdown(shutdownCtx); shutdownErr != nil {
			logging.Errorf("Failed to shutdown tracing: %v", shutdownErr)
		}
		os.Exit(0)
	}()

	// Start metrics server if enabled
	metricsEnabled := cfg.MetricsEnabled()
	if *metricsPort <= 0 {
		metricsEnabled = false
	}
	if metricsEnabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			metricsAddr := fmt.Sprintf(":%d", *metricsPort)
			logging.Infof("Starting metrics server on %s", metricsAddr)
			if metricsErr := http.ListenAndServe(metricsAddr, nil); metricsErr != nil {
				logging.Errorf("Metrics server error: %v", metricsErr)
			}
		}()
	} else {
		logging.Infof("Metrics server disabled")
	}

	logging.Infof("Starting newsguard with config: %s", *configPath)
	if err := api.StartPredictionAPI(cfg, *apiPort); err != nil {
		logging.Fatalf("Prediction API server error: %v", err)
	}
}
