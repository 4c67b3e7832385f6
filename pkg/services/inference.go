package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vietfact/newsguard/pkg/cache"
	"github.com/vietfact/newsguard/pkg/classification"
	"github.com/vietfact/newsguard/pkg/config"
	"github.com/vietfact/newsguard/pkg/eda"
	"github.com/vietfact/newsguard/pkg/features"
	"github.com/vietfact/newsguard/pkg/labels"
	"github.com/vietfact/newsguard/pkg/metrics"
	"github.com/vietfact/newsguard/pkg/observability/logging"
	"github.com/vietfact/newsguard/pkg/observability/tracing"
)

// ErrEmptyText marks a request whose text is empty after trimming.
var ErrEmptyText = errors.New("text must not be empty")

// Global inference service instance
var (
	globalInferenceService *InferenceService
	globalMu               sync.RWMutex
)

// InferenceService runs the full prediction pipeline: feature extraction,
// the model call, confidence banding and explanation composition.
//
// The classifier and composer are policy-bearing and rebuilt on every config
// reload; the registry, EDA store, model client and cache are wired once at
// startup.
type InferenceService struct {
	registry    *labels.Registry
	provider    classification.ProbabilityProvider
	store       *eda.Store
	resultCache cache.ResultCache

	configMutex sync.RWMutex
	config      *config.AppConfig
	classifier  *classification.ConfidenceClassifier
	composer    *classification.ExplanationComposer
}

// NewInferenceService wires an inference service from its parts and registers
// it as the global service for API access.
func NewInferenceService(
	registry *labels.Registry,
	provider classification.ProbabilityProvider,
	store *eda.Store,
	resultCache cache.ResultCache,
	cfg *config.AppConfig,
) *InferenceService {
	service := &InferenceService{
		registry:    registry,
		provider:    provider,
		store:       store,
		resultCache: resultCache,
	}
	service.applyPolicy(cfg)

	globalMu.Lock()
	globalInferenceService = service
	globalMu.Unlock()
	return service
}

// NewInferenceServiceFromConfig builds the whole pipeline from configuration:
// label registry, EDA store, model client and optional cache.
func NewInferenceServiceFromConfig(cfg *config.AppConfig) (*InferenceService, error) {
	registry := labels.Default()
	if cfg.LabelMappingPath != "" {
		loaded, err := labels.Load(cfg.LabelMappingPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load label mapping: %w", err)
		}
		registry = loaded
	}

	store := eda.NewStore(cfg.EDA.Dir)
	client := classification.NewModelClient(cfg.Model)

	var resultCache cache.ResultCache
	if cfg.Cache.Enabled {
		var err error
		resultCache, err = cache.NewResultCache(cache.Options{
			BackendType: cfg.Cache.BackendType,
			RedisAddr:   cfg.Cache.RedisAddr,
			TTLSeconds:  cfg.Cache.TTLSeconds,
			MaxEntries:  cfg.Cache.MaxEntries,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		logging.Infof("Result cache enabled: backend=%s", cfg.Cache.BackendType)
	}

	return NewInferenceService(registry, client, store, resultCache, cfg), nil
}

// applyPolicy rebuilds the policy-bearing components from cfg. Callers other
// than the constructor must hold configMutex.
func (s *InferenceService) applyPolicy(cfg *config.AppConfig) {
	matcher := classification.NewPhraseMatcher(cfg.SuspiciousKeywords, cfg.Inference.MaxPhrases)
	s.classifier = classification.NewConfidenceClassifier(s.registry, cfg.Inference)
	s.composer = classification.NewExplanationComposer(s.store, matcher, cfg.Inference.MaxExplainPhrases)
	s.config = cfg
}

// GetGlobalInferenceService returns the global inference service instance.
func GetGlobalInferenceService() *InferenceService {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalInferenceService
}

// GetConfig returns the current configuration.
func (s *InferenceService) GetConfig() *config.AppConfig {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()
	return s.config
}

// UpdateConfig applies a hot-reloaded configuration: banding thresholds,
// top-K, phrase caps and keyword lists take effect on the next request.
// Model endpoint and cache backend changes still require a restart.
func (s *InferenceService) UpdateConfig(newConfig *config.AppConfig) {
	s.configMutex.Lock()
	s.applyPolicy(newConfig)
	s.configMutex.Unlock()
	logging.Infof("Inference policy updated from reloaded configuration")
}

// policy returns a consistent snapshot of the reloadable components.
func (s *InferenceService) policy() (*classification.ConfidenceClassifier, *classification.ExplanationComposer, bool) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()
	return s.classifier, s.composer, s.config.ExplainEnabled()
}

// Registry returns the label registry the service is bound to.
func (s *InferenceService) Registry() *labels.Registry {
	return s.registry
}

// Predict runs one full inference pass over a news item. Uncertain results
// are a first-class outcome; the only errors are invalid input, a failed
// model call, or a malformed distribution.
func (s *InferenceService) Predict(ctx context.Context, in features.Input) (*classification.ModelOutput, error) {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, tracing.SpanPredict)
	defer span.End()

	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}

	bundle, err := features.NewBundle(in)
	if err != nil {
		return nil, fmt.Errorf("invalid input features: %w", err)
	}

	lang := classification.DetectLanguage(in.Text)
	tracing.SetSpanAttributes(span, attribute.String(tracing.AttrLanguage, lang.Code))

	if s.resultCache != nil {
		if cached, ok := s.resultCache.Get(ctx, in.Text); ok {
			metrics.RecordCacheLookup(true)
			tracing.SetSpanAttributes(span, attribute.Bool(tracing.AttrCacheHit, true))
			logging.Debugf("result cache hit")
			return cached, nil
		}
		metrics.RecordCacheLookup(false)
		tracing.SetSpanAttributes(span, attribute.Bool(tracing.AttrCacheHit, false))
	}

	probs, err := s.callModel(ctx, in.Text)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	classifier, composer, explainEnabled := s.policy()

	status, pred, err := classifier.Classify(probs)
	if err != nil {
		metrics.InvalidDistributionsTotal.Inc()
		tracing.RecordError(span, err)
		return nil, err
	}

	entropy := classification.AnalyzeEntropy(probs)
	metrics.PredictionEntropy.Observe(entropy.NormalizedEntropy)
	logging.Debugf("prediction: status=%s label=%s confidence=%.4f entropy=%s",
		status, pred.Label, pred.Confidence, entropy.UncertaintyLevel)

	out := &classification.ModelOutput{
		Status:     status,
		Prediction: pred,
		Language:   lang.Code,
	}

	if status != classification.StatusUncertain && explainEnabled {
		out.Explanation = s.explain(ctx, composer, pred.Label, in.Text, bundle)
	}

	tracing.SetSpanAttributes(span,
		attribute.String(tracing.AttrLabel, pred.Label),
		attribute.String(tracing.AttrStatus, string(status)),
		attribute.Float64(tracing.AttrConfidence, pred.Confidence),
		attribute.String(tracing.AttrConfidenceLevel, pred.ConfidenceLevel),
	)
	metrics.RecordPrediction(pred.Label, string(status), time.Since(start).Seconds())

	if s.resultCache != nil {
		s.resultCache.Set(ctx, in.Text, out)
	}
	return out, nil
}

func (s *InferenceService) callModel(ctx context.Context, text string) ([]float64, error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanModelCall)
	defer span.End()

	start := time.Now()
	probs, err := s.provider.Probabilities(ctx, text)
	metrics.ModelCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	return probs, nil
}

func (s *InferenceService) explain(ctx context.Context, composer *classification.ExplanationComposer, label, text string, bundle features.Bundle) classification.Explanation {
	_, span := tracing.StartSpan(ctx, tracing.SpanExplanation)
	defer span.End()

	explanation := composer.Compose(label, text, bundle)

	for _, phrase := range explanation.SuspiciousPhrases {
		metrics.SuspiciousPhrasesTotal.WithLabelValues(phrase.Type).Inc()
	}
	if explanation.EDAAnalysis != nil {
		metrics.EDAReasonsPerPrediction.Observe(float64(explanation.EDAAnalysis.NumMatches))
		tracing.SetSpanAttributes(span,
			attribute.Int(tracing.AttrEDAMatches, explanation.EDAAnalysis.NumMatches),
		)
	}
	tracing.SetSpanAttributes(span,
		attribute.Int(tracing.AttrPhraseCount, len(explanation.SuspiciousPhrases)),
	)
	return explanation
}

// Close releases held resources.
func (s *InferenceService) Close() error {
	if s.resultCache != nil {
		return s.resultCache.Close()
	}
	return nil
}
