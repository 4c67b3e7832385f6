package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietfact/newsguard/pkg/config"
	"github.com/vietfact/newsguard/pkg/decision"
	"github.com/vietfact/newsguard/pkg/eda"
	"github.com/vietfact/newsguard/pkg/labels"
	"github.com/vietfact/newsguard/pkg/services"
)

type stubProvider struct {
	probs []float64
}

func (s *stubProvider) Probabilities(_ context.Context, _ string) ([]float64, error) {
	return s.probs, nil
}

func testServer(t *testing.T, probs []float64, withFeedback bool) *httptest.Server {
	t.Helper()

	cfg := &config.AppConfig{}
	cfg.Inference = config.InferenceConfig{
		ConfidenceHigh:    0.7,
		ConfidenceMedium:  0.4,
		ReturnTopK:        3,
		MaxExplainPhrases: 5,
		MaxPhrases:        5,
	}
	cfg.UI = config.UIConfig{ConfidenceHigh: 0.7, ConfidenceMedium: 0.4, ConfidenceLow: 0.2}

	registry := labels.Default()
	store := eda.NewStoreFromTables(nil, nil, nil, nil, nil)
	inferenceSvc := services.NewInferenceService(registry, &stubProvider{probs: probs}, store, nil, cfg)

	var feedbackSvc *services.FeedbackService
	if withFeedback {
		var err error
		feedbackSvc, err = services.NewFeedbackService(filepath.Join(t.TempDir(), "feedback.db"))
		require.NoError(t, err)
		t.Cleanup(func() { feedbackSvc.Close() })
	}

	apiServer := &PredictionAPIServer{
		inferenceSvc: inferenceSvc,
		feedbackSvc:  feedbackSvc,
		mapper:       decision.NewMapper(cfg.UI),
		config:       cfg,
	}

	server := httptest.NewServer(apiServer.setupRoutes())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(t, []float64{1, 0, 0, 0, 0, 0}, false)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPredictEndpoint(t *testing.T) {
	server := testServer(t, []float64{0.02, 0.02, 0.9, 0.02, 0.02, 0.02}, false)

	resp := postJSON(t, server.URL+"/api/v1/predict", PredictRequest{
		Text: "Bạn đã trúng thưởng, hãy chuyển khoản ngay",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body decision.UIResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, labels.FinancialScam, body.Result.FinalLabel)
	assert.Equal(t, "Lừa đảo tài chính", body.Result.FinalLabelText)
	assert.Len(t, body.TopPredictions, 3)
	assert.NotEmpty(t, body.Reasons.Summary)
}

func TestPredictUncertainVerdict(t *testing.T) {
	server := testServer(t, []float64{0.25, 0.2, 0.2, 0.15, 0.1, 0.1}, false)

	resp := postJSON(t, server.URL+"/api/v1/predict", PredictRequest{Text: "tin gì đó"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body decision.UIResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, decision.FinalUncertain, body.Result.FinalLabel)
	assert.Equal(t, "Chưa thể kết luận", body.Result.FinalLabelText)
}

func TestPredictFollowsReloadedUIPolicy(t *testing.T) {
	// financial_scam at 0.75: the default UI policy accepts any fake label
	// at medium confidence.
	server := testServer(t, []float64{0.05, 0.05, 0.75, 0.05, 0.05, 0.05}, false)

	resp := postJSON(t, server.URL+"/api/v1/predict", PredictRequest{Text: "tin"})
	var body decision.UIResponse
	decodeBody(t, resp, &body)
	require.Equal(t, labels.FinancialScam, body.Result.FinalLabel)

	// After a reload that raises the UI medium threshold above 0.75 the same
	// prediction must map to uncertain.
	strict := &config.AppConfig{}
	strict.UI = config.UIConfig{ConfidenceHigh: 0.9, ConfidenceMedium: 0.8, ConfidenceLow: 0.2}
	config.Replace(strict)
	t.Cleanup(func() { config.Replace(nil) })

	resp = postJSON(t, server.URL+"/api/v1/predict", PredictRequest{Text: "tin"})
	decodeBody(t, resp, &body)
	assert.Equal(t, decision.FinalUncertain, body.Result.FinalLabel)
}

func TestPredictRejectsEmptyText(t *testing.T) {
	server := testServer(t, []float64{1, 0, 0, 0, 0, 0}, false)

	resp := postJSON(t, server.URL+"/api/v1/predict", PredictRequest{Text: "   "})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictRejectsMalformedJSON(t *testing.T) {
	server := testServer(t, []float64{1, 0, 0, 0, 0, 0}, false)

	resp, err := http.Post(server.URL+"/api/v1/predict", "application/json", bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictHidesModelDefects(t *testing.T) {
	// Distribution length mismatch is a server-side defect, not client error.
	server := testServer(t, []float64{0.5, 0.5}, false)

	resp := postJSON(t, server.URL+"/api/v1/predict", PredictRequest{Text: "tin"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "internal error", body["error"]["message"])
}

func TestFeedbackEndpoints(t *testing.T) {
	server := testServer(t, []float64{1, 0, 0, 0, 0, 0}, true)

	resp := postJSON(t, server.URL+"/api/v1/feedback", FeedbackRequest{
		Text:           "tin một",
		PredictedLabel: labels.Hoax,
		Score:          4,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	decodeBody(t, resp, &created)
	assert.Equal(t, "stored", created["status"])

	resp = postJSON(t, server.URL+"/api/v1/feedback", FeedbackRequest{Text: "tin", Score: 9})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	listResp, err := http.Get(server.URL + "/api/v1/feedback/recent?limit=10")
	require.NoError(t, err)
	var listed struct {
		Feedback []services.FeedbackRecord `json:"feedback"`
		Count    int                       `json:"count"`
	}
	decodeBody(t, listResp, &listed)
	assert.Equal(t, 1, listed.Count)
	require.Len(t, listed.Feedback, 1)
	assert.Equal(t, "tin một", listed.Feedback[0].Text)
}

func TestFeedbackDisabled(t *testing.T) {
	server := testServer(t, []float64{1, 0, 0, 0, 0, 0}, false)

	resp := postJSON(t, server.URL+"/api/v1/feedback", FeedbackRequest{Text: "tin", Score: 3})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	listResp, err := http.Get(server.URL + "/api/v1/feedback/recent")
	require.NoError(t, err)
	defer listResp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, listResp.StatusCode)
}

func TestRecentFeedbackRejectsBadLimit(t *testing.T) {
	server := testServer(t, []float64{1, 0, 0, 0, 0, 0}, true)

	resp, err := http.Get(server.URL + "/api/v1/feedback/recent?limit=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLabelsInfoEndpoint(t *testing.T) {
	server := testServer(t, []float64{1, 0, 0, 0, 0, 0}, false)

	resp, err := http.Get(server.URL + "/info/labels")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body LabelsInfoResponse
	decodeBody(t, resp, &body)
	require.Len(t, body.Labels, 6)
	assert.Equal(t, labels.TrueNews, body.Labels[0].Name)
	assert.Equal(t, 0, body.Labels[0].Index)
	assert.NotEmpty(t, body.Labels[0].Description)
}
