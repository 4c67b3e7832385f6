package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vietfact/newsguard/pkg/classification"
	"github.com/vietfact/newsguard/pkg/config"
	"github.com/vietfact/newsguard/pkg/decision"
	"github.com/vietfact/newsguard/pkg/features"
	"github.com/vietfact/newsguard/pkg/observability/logging"
	"github.com/vietfact/newsguard/pkg/observability/tracing"
	"github.com/vietfact/newsguard/pkg/services"
)

// PredictionAPIServer holds the server state and dependencies
type PredictionAPIServer struct {
	inferenceSvc *services.InferenceService
	feedbackSvc  *services.FeedbackService
	mapper       *decision.Mapper
	config       *config.AppConfig
}

// PredictRequest is one news item submitted for verification.
type PredictRequest struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	HasImages    bool   `json:"has_images,omitempty"`
	HasVideos    bool   `json:"has_videos,omitempty"`
	NumShares    *int   `json:"num_shares,omitempty"`
	NumComments  *int   `json:"num_comments,omitempty"`
	HasFactCheck bool   `json:"has_fact_check,omitempty"`
}

// FeedbackRequest is one user verdict on a prediction.
type FeedbackRequest struct {
	Text           string `json:"text"`
	PredictedLabel string `json:"predicted_label,omitempty"`
	FinalLabel     string `json:"final_label,omitempty"`
	Score          int    `json:"score"`
	Comment        string `json:"comment,omitempty"`
}

// LabelInfo describes one label of the registry.
type LabelInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LabelsInfoResponse is the response of the labels info endpoint.
type LabelsInfoResponse struct {
	Labels []LabelInfo `json:"labels"`
}

// StartPredictionAPI starts the prediction API server. It blocks until the
// server exits.
func StartPredictionAPI(cfg *config.AppConfig, port int) error {
	inferenceSvc := getInferenceServiceWithRetry(5, 500*time.Millisecond)
	if inferenceSvc == nil {
		return fmt.Errorf("no inference service available")
	}

	apiServer := &PredictionAPIServer{
		inferenceSvc: inferenceSvc,
		feedbackSvc:  services.GetGlobalFeedbackService(),
		mapper:       decision.NewMapper(cfg.UI),
		config:       cfg,
	}

	mux := apiServer.setupRoutes()
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Infof("Prediction API server listening on port %d", port)
	return server.ListenAndServe()
}

// getInferenceServiceWithRetry waits for the global inference service to be
// registered. The service is wired in main before the API starts, but a
// short retry keeps startup order forgiving.
func getInferenceServiceWithRetry(maxRetries int, retryInterval time.Duration) *services.InferenceService {
	for i := 0; i < maxRetries; i++ {
		if svc := services.GetGlobalInferenceService(); svc != nil {
			return svc
		}
		if i < maxRetries-1 {
			logging.Infof("Inference service not ready, retrying in %v (attempt %d/%d)", retryInterval, i+1, maxRetries)
			time.Sleep(retryInterval)
		}
	}
	logging.Warnf("Failed to find inference service after %d attempts", maxRetries)
	return nil
}

// setupRoutes configures all API routes
func (s *PredictionAPIServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	// Prediction endpoint
	mux.HandleFunc("POST /api/v1/predict", s.handlePredict)

	// Feedback endpoints
	mux.HandleFunc("POST /api/v1/feedback", s.handleFeedback)
	mux.HandleFunc("GET /api/v1/feedback/recent", s.handleRecentFeedback)

	// Information endpoints
	mux.HandleFunc("GET /info/labels", s.handleLabelsInfo)

	return mux
}

// handleHealth handles health check requests
func (s *PredictionAPIServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy", "service": "newsguard-api"}`))
}

// handlePredict runs the inference pipeline and maps the result to the
// user-facing verdict.
func (s *PredictionAPIServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	in := features.Input{
		Text:         req.Text,
		URL:          req.URL,
		HasImages:    req.HasImages,
		HasVideos:    req.HasVideos,
		NumShares:    features.UnknownCount,
		NumComments:  features.UnknownCount,
		HasFactCheck: req.HasFactCheck,
	}
	if req.NumShares != nil {
		in.NumShares = *req.NumShares
	}
	if req.NumComments != nil {
		in.NumComments = *req.NumComments
	}

	out, err := s.inferenceSvc.Predict(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyText):
			s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		case errors.Is(err, classification.ErrInvalidDistribution):
			// Model-side defect; hide the detail from the caller.
			logging.Errorf("prediction rejected: %v", err)
			s.writeErrorResponse(w, http.StatusInternalServerError, "PREDICTION_ERROR", "internal error")
		default:
			logging.Errorf("prediction failed: %v", err)
			s.writeErrorResponse(w, http.StatusInternalServerError, "PREDICTION_ERROR", "internal error")
		}
		return
	}

	_, span := tracing.StartSpan(r.Context(), tracing.SpanDecisionMap)
	response := s.currentMapper().Map(*out)
	tracing.SetSpanAttributes(span,
		attribute.String(tracing.AttrFinalLabel, response.Result.FinalLabel),
	)
	span.End()

	s.writeJSONResponse(w, http.StatusOK, response)
}

// currentMapper rebuilds the verdict mapper from the globally cached config
// so UI thresholds follow hot reloads. The wired mapper backs deployments
// that bypass the global config (tests, embedded use).
func (s *PredictionAPIServer) currentMapper() *decision.Mapper {
	if cfg := config.Get(); cfg != nil {
		return decision.NewMapper(cfg.UI)
	}
	return s.mapper
}

// handleFeedback stores one user feedback record.
func (s *PredictionAPIServer) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.feedbackSvc == nil {
		s.writeErrorResponse(w, http.StatusNotImplemented, "FEEDBACK_DISABLED", "feedback persistence is disabled")
		return
	}

	var req FeedbackRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	record := services.FeedbackRecord{
		Text:           req.Text,
		PredictedLabel: req.PredictedLabel,
		FinalLabel:     req.FinalLabel,
		Score:          req.Score,
		Comment:        req.Comment,
	}
	if err := s.feedbackSvc.Save(&record); err != nil {
		if errors.Is(err, services.ErrInvalidFeedback) {
			s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		logging.Errorf("feedback store failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "FEEDBACK_ERROR", "internal error")
		return
	}

	s.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"status": "stored",
		"id":     record.ID,
	})
}

// handleRecentFeedback lists the most recent feedback records.
func (s *PredictionAPIServer) handleRecentFeedback(w http.ResponseWriter, r *http.Request) {
	if s.feedbackSvc == nil {
		s.writeErrorResponse(w, http.StatusNotImplemented, "FEEDBACK_DISABLED", "feedback persistence is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := s.feedbackSvc.ListRecent(limit)
	if err != nil {
		logging.Errorf("feedback list failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "FEEDBACK_ERROR", "internal error")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"feedback": records,
		"count":    len(records),
	})
}

// handleLabelsInfo exposes the label registry.
func (s *PredictionAPIServer) handleLabelsInfo(w http.ResponseWriter, _ *http.Request) {
	registry := s.inferenceSvc.Registry()

	infos := make([]LabelInfo, 0, registry.Count())
	for _, name := range registry.Names() {
		idx, _ := registry.IndexFromLabel(name)
		desc, _ := registry.Description(name)
		infos = append(infos, LabelInfo{
			Index:       idx,
			Name:        name,
			Description: desc,
		})
	}

	s.writeJSONResponse(w, http.StatusOK, LabelsInfoResponse{Labels: infos})
}

func (s *PredictionAPIServer) parseJSONRequest(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func (s *PredictionAPIServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *PredictionAPIServer) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResponse := map[string]interface{}{
		"error": map[string]interface{}{
			"code":      errorCode,
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	s.writeJSONResponse(w, statusCode, errorResponse)
}
