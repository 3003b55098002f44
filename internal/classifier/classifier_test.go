package classifier

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/common"
)

type stubModel struct {
	scores []float32
	err    error
}

func (m *stubModel) Score(_ context.Context, _ *Tensor) ([]float32, error) {
	return m.scores, m.err
}

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestPreprocessGeometryAndRange(t *testing.T) {
	tensor, err := Preprocess(testImage(t, 640, 480))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	defer tensor.Release()

	if got, want := len(tensor.Data), 224*224*3; got != want {
		t.Fatalf("tensor length = %d, want %d", got, want)
	}
	for i, v := range tensor.Data {
		if v < 0 || v > 1 {
			t.Fatalf("tensor[%d] = %f, want within [0, 1]", i, v)
		}
	}
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := Preprocess([]byte("not an image"))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, common.ErrInferenceFailed) {
		t.Fatalf("error = %v, want ErrInferenceFailed", err)
	}
}

func TestClassifyPicksTopClass(t *testing.T) {
	// Index 2 is pwd_genuine.
	model := &stubModel{scores: []float32{0.05, 0.04, 0.856, 0.054}}
	c := New(model, nil)

	res, err := c.Classify(context.Background(), testImage(t, 100, 100))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if res.Label != constants.LabelPWDGenuine {
		t.Fatalf("label = %q, want pwd_genuine", res.Label)
	}
	if res.Status != constants.StatusVerified {
		t.Fatalf("status = %q, want verified", res.Status)
	}
	if res.IDType != constants.IDTypePWD {
		t.Fatalf("id type = %q, want pwd", res.IDType)
	}
	if res.Confidence != 86 {
		t.Fatalf("confidence = %d, want 86 (0.856 rounded)", res.Confidence)
	}
	if res.SecurityFeatures == nil || len(res.SecurityFeatures) != 0 {
		t.Fatalf("security features = %v, want empty non-nil list", res.SecurityFeatures)
	}
}

func TestClassifyCounterfeitFlags(t *testing.T) {
	model := &stubModel{scores: []float32{0.1, 0.7, 0.1, 0.1}}
	c := New(model, nil)

	res, err := c.Classify(context.Background(), testImage(t, 100, 100))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if res.Status != constants.StatusFlagged {
		t.Fatalf("status = %q, want flagged", res.Status)
	}
	if res.IDType != constants.IDTypeSeniorCitizen {
		t.Fatalf("id type = %q, want senior_citizen", res.IDType)
	}
}

func TestClassifyModelErrorPropagates(t *testing.T) {
	model := &stubModel{err: common.NewAppError("MODEL_UNAVAILABLE", "down", common.ErrModelUnavailable)}
	c := New(model, nil)

	_, err := c.Classify(context.Background(), testImage(t, 50, 50))
	if !errors.Is(err, common.ErrModelUnavailable) {
		t.Fatalf("error = %v, want ErrModelUnavailable", err)
	}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		label   string
		want    constants.VerificationStatus
		wantErr bool
	}{
		{constants.LabelSeniorGenuine, constants.StatusVerified, false},
		{constants.LabelPWDGenuine, constants.StatusVerified, false},
		{constants.LabelSeniorCounterfeit, constants.StatusFlagged, false},
		{constants.LabelPWDCounterfeit, constants.StatusFlagged, false},
		{"drivers_license", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveStatus(tt.label)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ResolveStatus(%q): expected error", tt.label)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ResolveStatus(%q): %v", tt.label, err)
		}
		if got != tt.want {
			t.Fatalf("ResolveStatus(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}
