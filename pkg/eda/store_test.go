package eda_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vietfact/newsguard/pkg/eda"
	"github.com/vietfact/newsguard/pkg/features"
)

var _ = Describe("Store", func() {
	Describe("loading artifacts from disk", func() {
		var store *eda.Store

		BeforeEach(func() {
			store = eda.NewStore("testdata")
		})

		It("loads label priors from the distribution CSV", func() {
			Expect(store.Prior("true_news")).To(BeNumerically("==", 0.5))
			Expect(store.Prior("deepfake")).To(BeNumerically("==", 0.05))
		})

		It("returns a zero prior for unknown labels", func() {
			Expect(store.Prior("nonexistent")).To(BeZero())
		})

		It("flags numeric values far from the recorded mean", func() {
			reasons := store.CompareNumeric("financial_scam", features.NumericFeatures{
				TextWordCount: 120,
				TextCharCount: features.UnknownCount,
				NumShares:     300, // z = 4.0 against mean 100, std 50
				NumComments:   22,
			})
			Expect(reasons).To(HaveLen(1))
			Expect(reasons[0]).To(ContainSubstring("chia sẻ"))
			Expect(reasons[0]).To(ContainSubstring("financial_scam"))
		})

		It("flags common binary features that are present", func() {
			reasons := store.CompareBinary("phishing", features.BinaryFeatures{HasURL: true})
			Expect(reasons).To(HaveLen(1))
			Expect(reasons[0]).To(ContainSubstring("has_url"))
		})

		It("ignores binary features below the occurrence threshold", func() {
			reasons := store.CompareBinary("phishing", features.BinaryFeatures{HasImages: true})
			Expect(reasons).To(BeEmpty())
		})

		It("reports short and long texts against the p10/p90 band", func() {
			Expect(store.CheckTextLength("hoax", 5)).To(HaveLen(1))
			Expect(store.CheckTextLength("hoax", 500)).To(HaveLen(1))
			Expect(store.CheckTextLength("hoax", 80)).To(BeEmpty())
		})

		It("reports publish hours well above the label's hourly mean", func() {
			Expect(store.CheckPublishTime("hoax", 21)).To(HaveLen(1))
			Expect(store.CheckPublishTime("hoax", 9)).To(BeEmpty())
			Expect(store.CheckPublishTime("hoax", 5)).To(BeEmpty())
		})
	})

	Describe("degraded operation", func() {
		It("serves empty results when the artifact directory is missing", func() {
			store := eda.NewStore("testdata/does-not-exist")

			Expect(store.Prior("true_news")).To(BeZero())
			Expect(store.CompareNumeric("true_news", features.NumericFeatures{NumShares: 1e9})).To(BeEmpty())
			Expect(store.CompareBinary("phishing", features.BinaryFeatures{HasURL: true})).To(BeEmpty())
			Expect(store.CheckTextLength("hoax", 1)).To(BeEmpty())
			Expect(store.CheckPublishTime("hoax", 21)).To(BeEmpty())
		})
	})

	Describe("in-memory tables", func() {
		It("skips sentinel values in numeric comparison", func() {
			store := eda.NewStoreFromTables(nil, map[string]map[string]eda.FeatureSummary{
				"hoax": {
					features.KeyNumShares: {"mean": 10, "std": 2},
				},
			}, nil, nil, nil)

			reasons := store.CompareNumeric("hoax", features.NumericFeatures{
				NumShares:     features.UnknownCount,
				NumComments:   features.UnknownCount,
				TextWordCount: features.UnknownCount,
				TextCharCount: features.UnknownCount,
			})
			Expect(reasons).To(BeEmpty())
		})

		It("skips features whose recorded std is zero", func() {
			store := eda.NewStoreFromTables(nil, map[string]map[string]eda.FeatureSummary{
				"hoax": {
					features.KeyNumShares: {"mean": 10, "std": 0},
				},
			}, nil, nil, nil)

			reasons := store.CompareNumeric("hoax", features.NumericFeatures{
				NumShares:     1000,
				NumComments:   features.UnknownCount,
				TextWordCount: features.UnknownCount,
				TextCharCount: features.UnknownCount,
			})
			Expect(reasons).To(BeEmpty())
		})

		It("uses the Vietnamese display name in reason strings", func() {
			store := eda.NewStoreFromTables(nil, map[string]map[string]eda.FeatureSummary{
				"hoax": {
					features.KeyTextCharCount: {"mean": 100, "std": 10},
				},
			}, nil, nil, nil)

			reasons := store.CompareNumeric("hoax", features.NumericFeatures{
				TextCharCount: 500,
				NumShares:     features.UnknownCount,
				NumComments:   features.UnknownCount,
				TextWordCount: features.UnknownCount,
			})
			Expect(reasons).To(HaveLen(1))
			Expect(reasons[0]).To(ContainSubstring("ký tự"))
		})
	})
})
