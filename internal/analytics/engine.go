// Package analytics computes dashboard metrics over the current record
// collection. Every function is pure: the caller passes the dataset (newest
// first, the collection's fetch order) and, where recency matters, the clock.
// Empty or partially-populated input never fails; ratios fall back to zero.
package analytics

import (
	"time"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/record"
)

// Stats are the headline dashboard counters.
type Stats struct {
	Total             int     `json:"total"`
	Verified          int     `json:"verified"`
	Flagged           int     `json:"flagged"`
	Failed            int     `json:"failed"`
	Pending           int     `json:"pending"`
	SuccessRate       float64 `json:"success_rate"`        // percent
	AvgProcessingTime float64 `json:"avg_processing_time"` // seconds
}

// CalculateStats tallies per-status counts and rates.
func CalculateStats(data []record.Verification) Stats {
	s := Stats{Total: len(data)}
	for _, v := range data {
		switch v.Status {
		case constants.StatusVerified:
			s.Verified++
		case constants.StatusFlagged:
			s.Flagged++
		case constants.StatusFailed:
			s.Failed++
		case constants.StatusPending, constants.StatusProcessing:
			s.Pending++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Verified) / float64(s.Total) * 100
	}
	s.AvgProcessingTime = AverageProcessingTime(data)
	return s
}

// AverageProcessingTime averages processing_time_ms over records that have
// one, in seconds. Empty input yields 0.
func AverageProcessingTime(data []record.Verification) float64 {
	var sum float64
	var n int
	for _, v := range data {
		if v.ProcessingTimeMs != nil {
			sum += float64(*v.ProcessingTimeMs) / 1000
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FastestProcessing returns the minimum processing time in seconds, 0 when no
// record carries one.
func FastestProcessing(data []record.Verification) float64 {
	var best float64
	found := false
	for _, v := range data {
		if v.ProcessingTimeMs == nil {
			continue
		}
		sec := float64(*v.ProcessingTimeMs) / 1000
		if !found || sec < best {
			best = sec
			found = true
		}
	}
	if !found {
		return 0
	}
	return best
}

// SlowestProcessing returns the maximum processing time in seconds, 0 when no
// record carries one.
func SlowestProcessing(data []record.Verification) float64 {
	var worst float64
	for _, v := range data {
		if v.ProcessingTimeMs == nil {
			continue
		}
		if sec := float64(*v.ProcessingTimeMs) / 1000; sec > worst {
			worst = sec
		}
	}
	return worst
}

// PeakHour buckets records into 24 local hour-of-day bins and returns the
// fullest one. Ties resolve to the lowest hour index.
func PeakHour(data []record.Verification) int {
	var hourCounts [24]int
	for _, v := range data {
		hourCounts[v.CreatedAt.Local().Hour()]++
	}
	peak := 0
	for h := 1; h < 24; h++ {
		if hourCounts[h] > hourCounts[peak] {
			peak = h
		}
	}
	return peak
}

// AverageConfidence averages confidence over records that have a score.
// Records with a null score are excluded, not counted as zero.
func AverageConfidence(data []record.Verification) float64 {
	var sum float64
	var n int
	for _, v := range data {
		if v.ConfidenceScore != nil {
			sum += float64(*v.ConfidenceScore)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ConfidenceDistribution buckets scored records by confidence band. Bucket
// counts sum exactly to the number of records with a non-null score.
type ConfidenceDistribution struct {
	High    int `json:"high"`     // >= 80
	Medium  int `json:"medium"`   // >= 60
	Low     int `json:"low"`      // >= 40
	VeryLow int `json:"very_low"` // < 40
}

func CalculateConfidenceDistribution(data []record.Verification) ConfidenceDistribution {
	var d ConfidenceDistribution
	for _, v := range data {
		if v.ConfidenceScore == nil {
			continue
		}
		switch score := *v.ConfidenceScore; {
		case score >= 80:
			d.High++
		case score >= 60:
			d.Medium++
		case score >= 40:
			d.Low++
		default:
			d.VeryLow++
		}
	}
	return d
}

// TrendDirection classifies a confidence trend.
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// ConfidenceTrend compares average confidence across the two positional
// halves of the dataset.
type ConfidenceTrend struct {
	PercentChange float64        `json:"percent_change"`
	Direction     TrendDirection `json:"direction"`
}

// CalculateConfidenceTrend splits the dataset in half by position. The
// collection lists newest first, so the first half is the recent one. A
// change of more than +5% is up, less than -5% is down; exactly ±5% stays
// neutral. A zero older average yields a zero change.
func CalculateConfidenceTrend(data []record.Verification) ConfidenceTrend {
	if len(data) < 2 {
		return ConfidenceTrend{Direction: TrendNeutral}
	}

	mid := len(data) / 2
	recentAvg := AverageConfidence(data[:mid])
	olderAvg := AverageConfidence(data[mid:])

	var pct float64
	if olderAvg > 0 {
		pct = (recentAvg - olderAvg) / olderAvg * 100
	}

	dir := TrendNeutral
	if pct > 5 {
		dir = TrendUp
	} else if pct < -5 {
		dir = TrendDown
	}
	return ConfidenceTrend{PercentChange: pct, Direction: dir}
}

// TypeStats groups records by detected ID type.
type TypeStats struct {
	Senior            int     `json:"senior"`
	PWD               int     `json:"pwd"`
	Total             int     `json:"total"`
	SeniorSuccessRate float64 `json:"senior_success_rate"` // percent
	PWDSuccessRate    float64 `json:"pwd_success_rate"`    // percent
}

// CalculateTypeStats counts records per detected type and computes the
// per-type verified rate with the same zero-denominator fallback as the
// overall success rate.
func CalculateTypeStats(data []record.Verification) TypeStats {
	s := TypeStats{Total: len(data)}
	var seniorVerified, pwdVerified int
	for _, v := range data {
		if v.DetectedIDType == nil {
			continue
		}
		switch *v.DetectedIDType {
		case constants.IDTypeSeniorCitizen:
			s.Senior++
			if v.Status == constants.StatusVerified {
				seniorVerified++
			}
		case constants.IDTypePWD:
			s.PWD++
			if v.Status == constants.StatusVerified {
				pwdVerified++
			}
		}
	}
	if s.Senior > 0 {
		s.SeniorSuccessRate = float64(seniorVerified) / float64(s.Senior) * 100
	}
	if s.PWD > 0 {
		s.PWDSuccessRate = float64(pwdVerified) / float64(s.PWD) * 100
	}
	return s
}

// FlaggedRate is the percentage of flagged records, 0 for empty input.
func FlaggedRate(data []record.Verification) float64 {
	if len(data) == 0 {
		return 0
	}
	flagged := 0
	for _, v := range data {
		if v.Status == constants.StatusFlagged {
			flagged++
		}
	}
	return float64(flagged) / float64(len(data)) * 100
}

// TimelineDay is one day of the trailing activity window.
type TimelineDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// timelineWindow is the trailing number of days the dashboard charts.
const timelineWindow = 7

// CalculateTimeline counts records per local calendar day for the trailing
// window ending at now, zero-filled for days with no records.
func CalculateTimeline(data []record.Verification, now time.Time) []TimelineDay {
	days := make([]TimelineDay, timelineWindow)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := range days {
		days[i].Date = today.AddDate(0, 0, -(timelineWindow - 1 - i))
	}
	for _, v := range data {
		c := v.CreatedAt.In(now.Location())
		day := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, now.Location())
		for i := range days {
			if days[i].Date.Equal(day) {
				days[i].Count++
				break
			}
		}
	}
	return days
}

// ProcessingTimeDistribution buckets records by duration:
// 0-1s, 1-2s, 2-3s, 3-4s, 4-5s, 5s+. Records without a time are skipped.
func ProcessingTimeDistribution(data []record.Verification) [6]int {
	var counts [6]int
	for _, v := range data {
		if v.ProcessingTimeMs == nil {
			continue
		}
		sec := float64(*v.ProcessingTimeMs) / 1000
		switch {
		case sec <= 1:
			counts[0]++
		case sec <= 2:
			counts[1]++
		case sec <= 3:
			counts[2]++
		case sec <= 4:
			counts[3]++
		case sec <= 5:
			counts[4]++
		default:
			counts[5]++
		}
	}
	return counts
}

// Insights bundles everything the operator dashboard renders in one pass.
type Insights struct {
	Stats                  Stats                  `json:"stats"`
	PeakHour               int                    `json:"peak_hour"`
	AvgConfidence          float64                `json:"avg_confidence"`
	ConfidenceTrend        ConfidenceTrend        `json:"confidence_trend"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
	FastestProcessing      float64                `json:"fastest_processing"`
	SlowestProcessing      float64                `json:"slowest_processing"`
	ProcessingTimes        [6]int                 `json:"processing_time_distribution"`
	TypeStats              TypeStats              `json:"type_stats"`
	FlaggedRate            float64                `json:"flagged_rate"`
	Timeline               []TimelineDay          `json:"timeline"`
	Recommendations        []Recommendation       `json:"recommendations"`
}

// CalculateInsights evaluates every metric over the dataset.
func CalculateInsights(data []record.Verification, now time.Time) Insights {
	ins := Insights{
		Stats:                  CalculateStats(data),
		PeakHour:               PeakHour(data),
		AvgConfidence:          AverageConfidence(data),
		ConfidenceTrend:        CalculateConfidenceTrend(data),
		ConfidenceDistribution: CalculateConfidenceDistribution(data),
		FastestProcessing:      FastestProcessing(data),
		SlowestProcessing:      SlowestProcessing(data),
		ProcessingTimes:        ProcessingTimeDistribution(data),
		TypeStats:              CalculateTypeStats(data),
		FlaggedRate:            FlaggedRate(data),
		Timeline:               CalculateTimeline(data, now),
	}
	ins.Recommendations = Recommend(RuleInput{
		AvgConfidence:     ins.AvgConfidence,
		FlaggedRate:       ins.FlaggedRate,
		AvgProcessingTime: ins.Stats.AvgProcessingTime,
		Total:             ins.Stats.Total,
	})
	return ins
}
