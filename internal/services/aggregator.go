package services

import (
	"context"
	"math"

	"github.com/attunelab/welfare-archive/internal/storage"
)

// SummaryStats are computed over a full scan of the analysis store. With
// zero analyses every average is 0, never NaN.
type SummaryStats struct {
	TotalAnalyses          int     `json:"totalAnalyses"`
	AvgPreferenceAlignment float64 `json:"avgPreferenceAlignment"`
	AvgAutonomyLevel       float64 `json:"avgAutonomyLevel"`
	AvgAuthenticity        float64 `json:"avgAuthenticity"`
	UniqueTagsCount        int     `json:"uniqueTagsCount"`
}

// Aggregator runs read-only scans over the analysis store. No cached state;
// every call sees the store as it is.
type Aggregator struct {
	analyses storage.AnalysisStore
}

func NewAggregator(analyses storage.AnalysisStore) *Aggregator {
	return &Aggregator{analyses: analyses}
}

func (a *Aggregator) SummaryStats(ctx context.Context) (SummaryStats, error) {
	all, err := a.analyses.ListAll(ctx)
	if err != nil {
		return SummaryStats{}, err
	}

	stats := SummaryStats{TotalAnalyses: len(all)}
	if len(all) == 0 {
		return stats, nil
	}

	var prefSum, autoSum, authSum int
	unique := make(map[string]struct{})
	for i := range all {
		prefSum += all[i].PreferenceAlignment
		autoSum += all[i].AutonomyLevel
		authSum += all[i].Authenticity
		for _, tag := range all[i].TagSet() {
			unique[tag] = struct{}{}
		}
	}

	n := float64(len(all))
	stats.AvgPreferenceAlignment = round2(float64(prefSum) / n)
	stats.AvgAutonomyLevel = round2(float64(autoSum) / n)
	stats.AvgAuthenticity = round2(float64(authSum) / n)
	stats.UniqueTagsCount = len(unique)
	return stats, nil
}

// TagUsage counts, per tag, how many analyses carry it. Each analysis
// increments a tag at most once regardless of duplicates in the stored
// string.
func (a *Aggregator) TagUsage(ctx context.Context) (map[string]int, error) {
	all, err := a.analyses.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	usage := map[string]int{}
	for i := range all {
		for _, tag := range all[i].TagSet() {
			usage[tag]++
		}
	}
	return usage, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
