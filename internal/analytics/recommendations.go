package analytics

// Recommendation is a rule-triggered operational suggestion derived from the
// aggregate metrics.
type Recommendation struct {
	Code     string `json:"code"`
	Severity string `json:"severity"` // warning, info, success
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// RuleInput carries the metrics the rule set evaluates.
type RuleInput struct {
	AvgConfidence     float64
	FlaggedRate       float64 // percent
	AvgProcessingTime float64 // seconds
	Total             int
}

// Recommendation codes.
const (
	RecRetrainData   = "retrain_data"
	RecReviewFlagged = "review_flagged"
	RecOptimizeInfra = "optimize_infrastructure"
	RecMoreData      = "insufficient_data"
	RecHealthySystem = "healthy_system"
)

// Recommend evaluates every rule independently and returns all that fire.
// The healthy-system entry only appears when no other rule fired and the
// confidence/flag thresholds are favorable.
func Recommend(in RuleInput) []Recommendation {
	recs := []Recommendation{}

	if in.AvgConfidence < 70 {
		recs = append(recs, Recommendation{
			Code:     RecRetrainData,
			Severity: "warning",
			Message:  "Average confidence is below 70%. Consider retraining the model with more data.",
			Action:   "Review training data",
		})
	}
	if in.FlaggedRate > 20 {
		recs = append(recs, Recommendation{
			Code:     RecReviewFlagged,
			Severity: "warning",
			Message:  "Flagged rate is above normal. Review flagged IDs for patterns.",
			Action:   "Review flagged IDs",
		})
	}
	if in.AvgProcessingTime > 5 {
		recs = append(recs, Recommendation{
			Code:     RecOptimizeInfra,
			Severity: "info",
			Message:  "Average processing time exceeds 5 seconds. Consider optimizing the model or infrastructure.",
			Action:   "Optimize processing",
		})
	}
	if in.Total < 50 {
		recs = append(recs, Recommendation{
			Code:     RecMoreData,
			Severity: "info",
			Message:  "Limited verification data. More data will improve insights accuracy.",
			Action:   "Collect more data",
		})
	}

	if len(recs) == 0 && in.AvgConfidence >= 80 && in.FlaggedRate < 10 {
		recs = append(recs, Recommendation{
			Code:     RecHealthySystem,
			Severity: "success",
			Message:  "System is performing well with high confidence and low flagged rate.",
			Action:   "Continue monitoring",
		})
	}

	return recs
}
