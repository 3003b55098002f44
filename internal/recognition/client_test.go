package recognition

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pasecure/idverify/internal/common"
)

func TestRecognizeHappyPath(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "ID No.: 22135"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	text, err := c.Recognize(context.Background(), []byte("image-bytes"), "card.jpg")
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if text != "ID No.: 22135" {
		t.Fatalf("text = %q", text)
	}
	if gotContentType == "" {
		t.Fatal("no multipart content type sent")
	}
}

func TestRecognizeNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	_, err := c.Recognize(context.Background(), []byte("x"), "card.jpg")
	if !errors.Is(err, common.ErrRecognitionFailed) {
		t.Fatalf("error = %v, want ErrRecognitionFailed", err)
	}
}

func TestRecognizeMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "plain text"},
		{"missing text field", `{"result": "ok"}`},
		{"wrong text type", `{"text": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second, nil)
			_, err := c.Recognize(context.Background(), []byte("x"), "card.jpg")
			if !errors.Is(err, common.ErrRecognitionFailed) {
				t.Fatalf("error = %v, want ErrRecognitionFailed", err)
			}
		})
	}
}

func TestRecognizeUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second, nil)
	_, err := c.Recognize(context.Background(), []byte("x"), "card.jpg")
	if !errors.Is(err, common.ErrRecognitionUnreachable) {
		t.Fatalf("error = %v, want ErrRecognitionUnreachable", err)
	}
}

func TestRecognizeMissingURL(t *testing.T) {
	c := NewClient("", time.Second, nil)
	_, err := c.Recognize(context.Background(), []byte("x"), "card.jpg")
	if !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}
