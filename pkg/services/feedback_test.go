package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietfact/newsguard/pkg/labels"
)

func testFeedbackService(t *testing.T) *FeedbackService {
	t.Helper()
	svc, err := NewFeedbackService(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestFeedbackSaveAndList(t *testing.T) {
	svc := testFeedbackService(t)

	records := []FeedbackRecord{
		{Text: "tin một", PredictedLabel: labels.Hoax, FinalLabel: labels.Hoax, Score: 5},
		{Text: "tin hai", PredictedLabel: labels.TrueNews, FinalLabel: "uncertain", Score: 2, Comment: "dự đoán sai"},
		{Text: "tin ba", PredictedLabel: labels.Phishing, FinalLabel: labels.Phishing, Score: 4},
	}
	for i := range records {
		require.NoError(t, svc.Save(&records[i]))
		assert.NotZero(t, records[i].ID)
	}

	got, err := svc.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	count, err := svc.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestFeedbackListRespectsLimit(t *testing.T) {
	svc := testFeedbackService(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Save(&FeedbackRecord{Text: "tin", Score: 3}))
	}

	got, err := svc.ListRecent(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Non-positive limits fall back to the default window.
	got, err = svc.ListRecent(0)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestFeedbackValidation(t *testing.T) {
	svc := testFeedbackService(t)

	err := svc.Save(&FeedbackRecord{Text: "  ", Score: 3})
	assert.ErrorIs(t, err, ErrInvalidFeedback)

	err = svc.Save(&FeedbackRecord{Text: "tin", Score: 0})
	assert.ErrorIs(t, err, ErrInvalidFeedback)

	err = svc.Save(&FeedbackRecord{Text: "tin", Score: 6})
	assert.ErrorIs(t, err, ErrInvalidFeedback)

	count, err := svc.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}
