// Package record defines the verification record shape shared by the
// classification and extraction write paths, and the merge reducer that
// reconciles the two.
package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/pasecure/idverify/constants"
)

// Verification tracks one uploaded document through classification and
// extraction. Nullable columns are pointers; nil means the field was never
// written.
type Verification struct {
	ID                 uuid.UUID                    `json:"id"`
	FilePath           string                       `json:"file_path"`
	FileType           string                       `json:"file_type"`
	FileSize           int64                        `json:"file_size"`
	Status             constants.VerificationStatus `json:"status"`
	ConfidenceScore    *int                         `json:"confidence_score"`
	DetectedIDType     *constants.IDType            `json:"detected_id_type"`
	DetectedIDNumber   *string                      `json:"detected_id_number"`
	DetectedHolderName *string                      `json:"detected_holder_name"`
	SecurityFeatures   []string                     `json:"security_features"`
	OCRStatus          constants.OCRStatus          `json:"ocr_status"`
	OCRText            *string                      `json:"ocr_text"`
	ProcessingTimeMs   *int                         `json:"processing_time_ms"`
	CreatedAt          time.Time                    `json:"created_at"`
}

// SystemLogEntry is one row of the append-only audit trail written by both
// pipeline stages.
type SystemLogEntry struct {
	ID        uuid.UUID      `json:"id"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context"`
	CreatedAt time.Time      `json:"created_at"`
}

// Patch is a partial update to a Verification. A nil field was omitted and
// must never clear an existing value.
type Patch struct {
	Status             *constants.VerificationStatus `json:"status,omitempty"`
	ConfidenceScore    *int                          `json:"confidence_score,omitempty"`
	DetectedIDType     *constants.IDType             `json:"detected_id_type,omitempty"`
	DetectedIDNumber   *string                       `json:"detected_id_number,omitempty"`
	DetectedHolderName *string                       `json:"detected_holder_name,omitempty"`
	SecurityFeatures   []string                      `json:"security_features,omitempty"`
	OCRStatus          *constants.OCRStatus          `json:"ocr_status,omitempty"`
	OCRText            *string                       `json:"ocr_text,omitempty"`
	ProcessingTimeMs   *int                          `json:"processing_time_ms,omitempty"`
}

// IsZero reports whether the patch carries no fields at all.
func (p Patch) IsZero() bool {
	return p.Status == nil &&
		p.ConfidenceScore == nil &&
		p.DetectedIDType == nil &&
		p.DetectedIDNumber == nil &&
		p.DetectedHolderName == nil &&
		p.SecurityFeatures == nil &&
		p.OCRStatus == nil &&
		p.OCRText == nil &&
		p.ProcessingTimeMs == nil
}
