// Package classifier scores uploaded ID images against the four-class
// authenticity model and resolves the score into a record status.
package classifier

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pasecure/idverify/internal/common"
)

// Model input geometry. The scoring service expects 224x224 RGB with pixel
// values scaled into [0, 1].
const (
	inputWidth  = 224
	inputHeight = 224
	inputChans  = 3
)

// Tensor is one preprocessed image in NHWC layout. Call Release when done so
// the backing buffer returns to the pool; a Tensor must not be used after.
type Tensor struct {
	Data []float32
}

var tensorPool = sync.Pool{
	New: func() any {
		return &Tensor{Data: make([]float32, inputWidth*inputHeight*inputChans)}
	},
}

// Release returns the tensor's buffer to the pool.
func (t *Tensor) Release() {
	if t == nil || t.Data == nil {
		return
	}
	tensorPool.Put(t)
}

// Preprocess decodes the image bytes, resizes to the model's input geometry
// with bilinear sampling, and scales pixels into [0, 1].
func Preprocess(data []byte) (*Tensor, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewAppError("IMAGE_DECODE",
			fmt.Sprintf("decode image: %v", err), common.ErrInferenceFailed)
	}

	t := tensorPool.Get().(*Tensor)
	resizeInto(img, t.Data)
	return t, nil
}

// resizeInto samples the source bilinearly into a 224x224 RGB float buffer.
func resizeInto(src image.Image, dst []float32) {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	for y := 0; y < inputHeight; y++ {
		// Map the destination pixel center back into source coordinates.
		fy := (float64(y) + 0.5) * float64(sh) / float64(inputHeight)
		y0 := int(fy - 0.5)
		wy := fy - 0.5 - float64(y0)
		y1 := y0 + 1
		y0, y1 = clamp(y0, sh-1), clamp(y1, sh-1)

		for x := 0; x < inputWidth; x++ {
			fx := (float64(x) + 0.5) * float64(sw) / float64(inputWidth)
			x0 := int(fx - 0.5)
			wx := fx - 0.5 - float64(x0)
			x1 := x0 + 1
			x0, x1 = clamp(x0, sw-1), clamp(x1, sw-1)

			r00, g00, b00 := rgbAt(src, b.Min.X+x0, b.Min.Y+y0)
			r10, g10, b10 := rgbAt(src, b.Min.X+x1, b.Min.Y+y0)
			r01, g01, b01 := rgbAt(src, b.Min.X+x0, b.Min.Y+y1)
			r11, g11, b11 := rgbAt(src, b.Min.X+x1, b.Min.Y+y1)

			i := (y*inputWidth + x) * inputChans
			dst[i] = float32(lerp2(r00, r10, r01, r11, wx, wy) / 255.0)
			dst[i+1] = float32(lerp2(g00, g10, g01, g11, wx, wy) / 255.0)
			dst[i+2] = float32(lerp2(b00, b10, b01, b11, wx, wy) / 255.0)
		}
	}
}

func rgbAt(img image.Image, x, y int) (float64, float64, float64) {
	r, g, b, _ := img.At(x, y).RGBA()
	return float64(r >> 8), float64(g >> 8), float64(b >> 8)
}

func lerp2(v00, v10, v01, v11, wx, wy float64) float64 {
	top := v00*(1-wx) + v10*wx
	bot := v01*(1-wx) + v11*wx
	return top*(1-wy) + bot*wy
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
