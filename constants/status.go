package constants

// VerificationStatus is the canonical lifecycle status for rows in verifications.
type VerificationStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    VerificationStatus = "pending"
	StatusProcessing VerificationStatus = "processing"
	StatusVerified   VerificationStatus = "verified" // terminal: classifier judged genuine
	StatusFlagged    VerificationStatus = "flagged"  // terminal: classifier judged counterfeit
	StatusFailed     VerificationStatus = "failed"   // terminal: classification aborted
)

// statusRank orders the lifecycle. A status may only move to a strictly
// higher rank; the three terminal states share one rank.
var statusRank = map[VerificationStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusVerified:   2,
	StatusFlagged:    2,
	StatusFailed:     2,
}

// CanAdvance reports whether a record's status may take the given move.
// Equal statuses are allowed so that re-applied updates stay idempotent.
func CanAdvance(from, to VerificationStatus) bool {
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	return tr > fr
}

// OCRStatus tracks the extraction sub-state, independent of VerificationStatus.
type OCRStatus string

const (
	OCRPending  OCRStatus = "pending"
	OCRComplete OCRStatus = "complete"
	OCRFailed   OCRStatus = "failed"
)

// IDType is the coarse document type detected by either pipeline stage.
type IDType string

const (
	IDTypeSeniorCitizen IDType = "senior_citizen"
	IDTypePWD           IDType = "pwd"
)
