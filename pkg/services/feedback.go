package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vietfact/newsguard/pkg/metrics"
	"github.com/vietfact/newsguard/pkg/observability/logging"
)

// ErrInvalidFeedback marks feedback that fails validation.
var ErrInvalidFeedback = errors.New("invalid feedback")

const defaultRecentLimit = 50

// Global feedback service instance
var globalFeedbackService *FeedbackService

// FeedbackRecord is one stored user verdict on a prediction.
type FeedbackRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Text           string    `json:"text"`
	PredictedLabel string    `json:"predicted_label"`
	FinalLabel     string    `json:"final_label"`
	// Score is the user rating of the verdict, 1 (wrong) to 5 (correct).
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}

// FeedbackService persists user feedback on predictions in a local SQLite
// database so mislabeled items can be reviewed and fed into retraining.
type FeedbackService struct {
	db *gorm.DB
}

// NewFeedbackService opens (and migrates) the feedback database and registers
// the service as the global instance for API access.
func NewFeedbackService(dbPath string) (*FeedbackService, error) {
	if dbPath == "" {
		dbPath = "feedback.db"
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback database: %w", err)
	}
	if err := db.AutoMigrate(&FeedbackRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate feedback schema: %w", err)
	}

	service := &FeedbackService{db: db}
	globalFeedbackService = service
	logging.Infof("Feedback store opened: path=%s", dbPath)
	return service, nil
}

// GetGlobalFeedbackService returns the global feedback service, or nil when
// feedback persistence is disabled.
func GetGlobalFeedbackService() *FeedbackService {
	return globalFeedbackService
}

// Save validates and stores one feedback record.
func (s *FeedbackService) Save(record *FeedbackRecord) error {
	if strings.TrimSpace(record.Text) == "" {
		return fmt.Errorf("%w: text must not be empty", ErrInvalidFeedback)
	}
	if record.Score < 1 || record.Score > 5 {
		return fmt.Errorf("%w: score %d must be in [1, 5]", ErrInvalidFeedback, record.Score)
	}

	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	metrics.RecordFeedback(record.Score)
	logging.Debugf("feedback stored: id=%d score=%d label=%s", record.ID, record.Score, record.PredictedLabel)
	return nil
}

// ListRecent returns the most recent feedback records, newest first.
func (s *FeedbackService) ListRecent(limit int) ([]FeedbackRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	var records []FeedbackRecord
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return records, nil
}

// Count returns the total number of stored feedback records.
func (s *FeedbackService) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&FeedbackRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *FeedbackService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
