package record

import "github.com/pasecure/idverify/constants"

// Merge applies a partial update to the current record and returns the next
// state. The two pipeline writers own disjoint field sets except
// DetectedIDType, so the rules here are the only reconciliation the system
// relies on:
//
//   - fields omitted from the patch never clear existing values
//   - DetectedIDType overwrites only when the patch carries a non-nil value
//   - Status is monotonic per constants.CanAdvance; a backward move is dropped
//   - applying the same patch twice yields the same final state
func Merge(current Verification, p Patch) Verification {
	next := current

	if p.Status != nil && constants.CanAdvance(current.Status, *p.Status) {
		next.Status = *p.Status
	}
	if p.ConfidenceScore != nil {
		v := *p.ConfidenceScore
		next.ConfidenceScore = &v
	}
	if p.DetectedIDType != nil {
		v := *p.DetectedIDType
		next.DetectedIDType = &v
	}
	if p.DetectedIDNumber != nil {
		v := *p.DetectedIDNumber
		next.DetectedIDNumber = &v
	}
	if p.DetectedHolderName != nil {
		v := *p.DetectedHolderName
		next.DetectedHolderName = &v
	}
	if p.SecurityFeatures != nil {
		next.SecurityFeatures = append([]string(nil), p.SecurityFeatures...)
	}
	if p.OCRStatus != nil {
		next.OCRStatus = *p.OCRStatus
	}
	if p.OCRText != nil {
		v := *p.OCRText
		next.OCRText = &v
	}
	if p.ProcessingTimeMs != nil {
		v := *p.ProcessingTimeMs
		next.ProcessingTimeMs = &v
	}

	return next
}

// OCRBecameTerminal reports whether the merge moved OCRStatus into complete
// or failed. The reconciliation controller emits exactly one change
// notification when this is true.
func OCRBecameTerminal(before, after Verification) bool {
	if before.OCRStatus == after.OCRStatus {
		return false
	}
	return after.OCRStatus == constants.OCRComplete || after.OCRStatus == constants.OCRFailed
}
