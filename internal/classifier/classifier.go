package classifier

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pasecure/idverify/constants"
)

// Result is the outcome of classifying one uploaded image.
type Result struct {
	Label        string
	IDType       constants.IDType
	Status       constants.VerificationStatus
	Confidence   int // top score as a rounded percentage
	ProcessingMs int
	// SecurityFeatures is always non-nil so the classification write
	// initializes the record's feature list. Feature detection is not part
	// of the model yet, so the list is empty.
	SecurityFeatures []string
}

// Classifier runs the preprocess-score-resolve pipeline.
type Classifier struct {
	model  Model
	logger *slog.Logger
}

func New(model Model, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{model: model, logger: logger}
}

// Classify scores the image and resolves the winning class. The preprocessed
// tensor is released before returning on every path.
func (c *Classifier) Classify(ctx context.Context, image []byte) (*Result, error) {
	start := time.Now()

	t, err := Preprocess(image)
	if err != nil {
		c.logger.Error("classifier.preprocess_failed", "error", err)
		return nil, err
	}
	defer t.Release()

	scores, err := c.model.Score(ctx, t)
	if err != nil {
		c.logger.Error("classifier.score_failed", "error", err)
		return nil, err
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	label := constants.ClassLabels[best]

	status, err := ResolveStatus(label)
	if err != nil {
		return nil, err
	}
	idType, err := TypeFromLabel(label)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Label:            label,
		IDType:           idType,
		Status:           status,
		Confidence:       int(math.Round(float64(scores[best]) * 100)),
		ProcessingMs:     int(time.Since(start).Milliseconds()),
		SecurityFeatures: []string{},
	}

	c.logger.Info("classifier.classified",
		"label", res.Label,
		"status", res.Status,
		"confidence", res.Confidence,
		"elapsed_ms", res.ProcessingMs,
	)
	return res, nil
}
