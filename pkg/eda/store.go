package eda

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vietfact/newsguard/pkg/features"
	"github.com/vietfact/newsguard/pkg/observability/logging"
)

// Artifact file names inside the EDA directory. These are the names the EDA
// pipeline writes; any of them may be absent in a deployment.
const (
	FileLabelDistribution = "label_distribution.csv"
	FileNumericProfiles   = "label_numeric_profiles.json"
	FileBinaryStats       = "label_binary_stats.json"
	FileTextLengthStats   = "label_text_length_stats.json"
	FileTimeDistribution  = "label_time_distribution.csv"
)

// Comparison thresholds. These favor recall of "notable" deviations over
// strict statistical significance.
const (
	zScoreThreshold    = 1.5
	binaryRatioMin     = 0.5
	hourRatioOverMean  = 1.3
	textWordCountField = "text_word_count"
)

// FeatureSummary maps summary statistic names ("mean", "std", "p10", ...)
// to values for one feature.
type FeatureSummary map[string]float64

// Store exposes read-only lookups over the precomputed per-label statistics.
// Populated once at startup, never mutated afterwards; safe for
// unsynchronized concurrent reads.
type Store struct {
	priors          map[string]float64
	numericProfiles map[string]map[string]FeatureSummary
	binaryStats     map[string]map[string]float64
	textLengthStats map[string]map[string]FeatureSummary
	hourRatios      map[string]map[int]float64
}

// Vietnamese display names for numeric features, used in reason strings.
var numericDisplayNames = map[string]string{
	features.KeyNumShares:     "chia sẻ",
	features.KeyNumComments:   "bình luận",
	features.KeyTextWordCount: "từ",
	features.KeyTextCharCount: "ký tự",
}

// NewStore loads the EDA artifacts from dir. A missing or malformed artifact
// degrades to an empty table with a warning; loading never fails, so the
// system stays usable with partial EDA coverage.
func NewStore(dir string) *Store {
	s := &Store{
		priors:          map[string]float64{},
		numericProfiles: map[string]map[string]FeatureSummary{},
		binaryStats:     map[string]map[string]float64{},
		textLengthStats: map[string]map[string]FeatureSummary{},
		hourRatios:      map[string]map[int]float64{},
	}

	if dist, err := loadDistributionCSV(filepath.Join(dir, FileLabelDistribution)); err != nil {
		logging.Warnf("EDA: %s unusable, priors disabled: %v", FileLabelDistribution, err)
	} else {
		s.priors = dist
	}

	if err := loadJSON(filepath.Join(dir, FileNumericProfiles), &s.numericProfiles); err != nil {
		s.numericProfiles = map[string]map[string]FeatureSummary{}
		logging.Warnf("EDA: %s unusable, numeric comparison disabled: %v", FileNumericProfiles, err)
	}

	if err := loadJSON(filepath.Join(dir, FileBinaryStats), &s.binaryStats); err != nil {
		s.binaryStats = map[string]map[string]float64{}
		logging.Warnf("EDA: %s unusable, binary comparison disabled: %v", FileBinaryStats, err)
	}

	if err := loadJSON(filepath.Join(dir, FileTextLengthStats), &s.textLengthStats); err != nil {
		s.textLengthStats = map[string]map[string]FeatureSummary{}
		logging.Warnf("EDA: %s unusable, text-length check disabled: %v", FileTextLengthStats, err)
	}

	if hours, err := loadTimeCSV(filepath.Join(dir, FileTimeDistribution)); err != nil {
		logging.Warnf("EDA: %s unusable, publish-time check disabled: %v", FileTimeDistribution, err)
	} else {
		s.hourRatios = hours
	}

	return s
}

// NewStoreFromTables builds a store directly from in-memory tables. Intended
// for tests and embedded deployments.
func NewStoreFromTables(
	priors map[string]float64,
	numericProfiles map[string]map[string]FeatureSummary,
	binaryStats map[string]map[string]float64,
	textLengthStats map[string]map[string]FeatureSummary,
	hourRatios map[string]map[int]float64,
) *Store {
	s := &Store{
		priors:          priors,
		numericProfiles: numericProfiles,
		binaryStats:     binaryStats,
		textLengthStats: textLengthStats,
		hourRatios:      hourRatios,
	}
	if s.priors == nil {
		s.priors = map[string]float64{}
	}
	if s.numericProfiles == nil {
		s.numericProfiles = map[string]map[string]FeatureSummary{}
	}
	if s.binaryStats == nil {
		s.binaryStats = map[string]map[string]float64{}
	}
	if s.textLengthStats == nil {
		s.textLengthStats = map[string]map[string]FeatureSummary{}
	}
	if s.hourRatios == nil {
		s.hourRatios = map[string]map[int]float64{}
	}
	return s
}

// Prior returns the label's training-set frequency ratio, or 0.0 when the
// store has no distribution data. Absence is common and never an error.
func (s *Store) Prior(label string) float64 {
	return s.priors[label]
}

// CompareNumeric compares each numeric feature against the label's recorded
// mean/std and returns a reason string for every notable deviation.
// Sentinel values (exactly -1) are excluded from comparison.
func (s *Store) CompareNumeric(label string, num features.NumericFeatures) []string {
	profile, ok := s.numericProfiles[label]
	if !ok {
		return nil
	}

	var reasons []string
	for _, f := range num.Fields() {
		if f.Value == features.UnknownCount {
			continue
		}
		summary, ok := profile[f.Key]
		if !ok {
			continue
		}
		mean, hasMean := summary["mean"]
		std, hasStd := summary["std"]
		if !hasMean || !hasStd || std <= 0 {
			continue
		}
		if math.Abs(f.Value-mean)/std > zScoreThreshold {
			name := numericDisplayNames[f.Key]
			if name == "" {
				name = f.Key
			}
			reasons = append(reasons, fmt.Sprintf(
				"Số lượng %s lệch nhẹ so với phân phối thường thấy của nhóm %s", name, label))
		}
	}
	return reasons
}

// CompareBinary returns a reason for every true-valued binary feature that is
// recorded for the label with occurrence ratio >= 0.5. False-valued or
// unknown features are never reasoned about.
func (s *Store) CompareBinary(label string, bin features.BinaryFeatures) []string {
	stats, ok := s.binaryStats[label]
	if !ok {
		return nil
	}

	var reasons []string
	for _, f := range bin.Fields() {
		if !f.Value {
			continue
		}
		ratio, ok := stats[f.Key]
		if !ok || ratio < binaryRatioMin {
			continue
		}
		reasons = append(reasons, fmt.Sprintf(
			"Đặc trưng '%s' thường xuất hiện trong nhóm %s theo dữ liệu huấn luyện", f.Key, label))
	}
	return reasons
}

// CheckTextLength compares the input word count against the label's p10/p90
// band and returns directional reasons. Missing band data yields no reasons.
func (s *Store) CheckTextLength(label string, wordCount int) []string {
	stats, ok := s.textLengthStats[label]
	if !ok {
		return nil
	}
	band, ok := stats[textWordCountField]
	if !ok {
		return nil
	}

	var reasons []string
	if p10, ok := band["p10"]; ok && float64(wordCount) < p10 {
		reasons = append(reasons,
			"Độ dài văn bản ngắn hơn khoảng phổ biến của nhóm này trong dữ liệu huấn luyện")
	}
	if p90, ok := band["p90"]; ok && float64(wordCount) > p90 {
		reasons = append(reasons,
			"Độ dài văn bản dài hơn khoảng phổ biến của nhóm này trong dữ liệu huấn luyện")
	}
	return reasons
}

// CheckPublishTime returns a reason when the label's ratio of posts at this
// hour exceeds 1.3x the label's mean hourly ratio. Missing temporal data
// yields no reasons.
//
// Note: this check is available but not part of the default explanation
// composition; callers must opt in.
func (s *Store) CheckPublishTime(label string, hour int) []string {
	hours, ok := s.hourRatios[label]
	if !ok || len(hours) == 0 {
		return nil
	}
	hourRatio, ok := hours[hour]
	if !ok {
		return nil
	}

	sum := 0.0
	for _, r := range hours {
		sum += r
	}
	mean := sum / float64(len(hours))

	if hourRatio > mean*hourRatioOverMean {
		return []string{"Thời điểm đăng bài phù hợp với phân phối thời gian thường thấy của nhóm này"}
	}
	return nil
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found")
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// loadDistributionCSV parses a label,count,ratio table into label -> ratio.
func loadDistributionCSV(path string) (map[string]float64, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	labelCol, ratioCol := columnIndex(header, "label"), columnIndex(header, "ratio")
	if labelCol < 0 || ratioCol < 0 {
		return nil, fmt.Errorf("missing label/ratio columns in %v", header)
	}

	priors := make(map[string]float64, len(rows))
	for _, row := range rows {
		ratio, err := strconv.ParseFloat(row[ratioCol], 64)
		if err != nil {
			return nil, fmt.Errorf("bad ratio %q: %w", row[ratioCol], err)
		}
		priors[row[labelCol]] = ratio
	}
	return priors, nil
}

// loadTimeCSV parses a label,hour,ratio table into label -> hour -> ratio.
func loadTimeCSV(path string) (map[string]map[int]float64, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	labelCol := columnIndex(header, "label")
	hourCol := columnIndex(header, "hour")
	ratioCol := columnIndex(header, "ratio")
	if labelCol < 0 || hourCol < 0 || ratioCol < 0 {
		return nil, fmt.Errorf("missing label/hour/ratio columns in %v", header)
	}

	hours := map[string]map[int]float64{}
	for _, row := range rows {
		hour, err := strconv.Atoi(row[hourCol])
		if err != nil {
			return nil, fmt.Errorf("bad hour %q: %w", row[hourCol], err)
		}
		ratio, err := strconv.ParseFloat(row[ratioCol], 64)
		if err != nil {
			return nil, fmt.Errorf("bad ratio %q: %w", row[ratioCol], err)
		}
		label := row[labelCol]
		if hours[label] == nil {
			hours[label] = map[int]float64{}
		}
		hours[label][hour] = ratio
	}
	return hours, nil
}

func readCSV(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found")
		}
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}
	return records[1:], records[0], nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
