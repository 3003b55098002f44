package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/common"
	"github.com/pasecure/idverify/internal/notify"
	"github.com/pasecure/idverify/internal/reconcile"
	"github.com/pasecure/idverify/internal/record"
	"github.com/pasecure/idverify/internal/repository"
)

type fakeStore struct {
	objects map[string][]byte
}

func (s *fakeStore) Upload(_ context.Context, path string, data []byte, _ string) error {
	s.objects[path] = data
	return nil
}

func (s *fakeStore) Download(_ context.Context, path string) ([]byte, error) {
	data, ok := s.objects[path]
	if !ok {
		return nil, common.NewAppError("STORAGE_DOWNLOAD", "missing object", common.ErrStorageDownload)
	}
	return data, nil
}

type fakeRecognizer struct {
	text string
	err  error
}

func (r *fakeRecognizer) Recognize(_ context.Context, _ []byte, _ string) (string, error) {
	return r.text, r.err
}

type workerFixture struct {
	store   *repository.MemoryStore
	objects *fakeStore
	hub     *notify.Hub
	worker  *Worker
}

func newWorkerFixture(t *testing.T, rec Recognizer) *workerFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	objects := &fakeStore{objects: make(map[string][]byte)}
	hub := notify.NewHub()
	ctrl := reconcile.NewController(store, hub, nil)
	return &workerFixture{
		store:   store,
		objects: objects,
		hub:     hub,
		worker:  NewWorker(store, store, objects, rec, ctrl, hub, nil),
	}
}

func (f *workerFixture) addPending(t *testing.T, path string, createdAt time.Time) *record.Verification {
	t.Helper()
	v := &record.Verification{
		FilePath:  path,
		FileType:  "image/jpeg",
		FileSize:  100,
		Status:    constants.StatusVerified,
		OCRStatus: constants.OCRPending,
		CreatedAt: createdAt,
	}
	if err := f.store.Create(context.Background(), v); err != nil {
		t.Fatalf("create: %v", err)
	}
	return v
}

func TestRunOnceEmptyQueue(t *testing.T) {
	f := newWorkerFixture(t, &fakeRecognizer{})

	res, err := f.worker.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("empty queue should not error: %v", err)
	}
	if res.Processed {
		t.Fatal("expected no-op result")
	}
}

func TestRunOnceHappyPath(t *testing.T) {
	f := newWorkerFixture(t, &fakeRecognizer{text: sampleSeniorCard})
	v := f.addPending(t, "uploads/card.jpg", time.Now())
	f.objects.objects["uploads/card.jpg"] = []byte("image-bytes")
	ctx := context.Background()

	res, err := f.worker.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Processed || res.RecordID != v.ID.String() {
		t.Fatalf("result = %+v, want processed record %s", res, v.ID)
	}

	got, err := f.store.GetByID(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OCRStatus != constants.OCRComplete {
		t.Fatalf("ocr status = %q, want complete", got.OCRStatus)
	}
	if got.OCRText == nil || *got.OCRText == "" {
		t.Fatal("ocr text not stored")
	}
	if got.DetectedIDNumber == nil || *got.DetectedIDNumber != "22135" {
		t.Fatalf("id number = %v, want 22135", got.DetectedIDNumber)
	}
	if got.DetectedHolderName == nil || *got.DetectedHolderName != "JUAN DELA CRUZ" {
		t.Fatalf("holder name = %v", got.DetectedHolderName)
	}
	if got.Status != constants.StatusVerified {
		t.Fatalf("status = %q, worker must not touch verification status", got.Status)
	}

	logs, err := f.store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Level != "info" {
		t.Fatalf("logs = %+v, want one info entry", logs)
	}
}

func TestRunOnceNoFieldsStillCompletes(t *testing.T) {
	f := newWorkerFixture(t, &fakeRecognizer{text: "nothing useful here"})
	v := f.addPending(t, "uploads/blurry.jpg", time.Now())
	f.objects.objects["uploads/blurry.jpg"] = []byte("image-bytes")
	ctx := context.Background()

	if _, err := f.worker.RunOnce(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, _ := f.store.GetByID(ctx, v.ID)
	if got.OCRStatus != constants.OCRComplete {
		t.Fatalf("ocr status = %q, want complete even with no parsed fields", got.OCRStatus)
	}
	if got.DetectedIDNumber != nil || got.DetectedHolderName != nil || got.DetectedIDType != nil {
		t.Fatalf("expected nil parsed fields, got %+v", got)
	}
}

func TestRunOnceDownloadFailure(t *testing.T) {
	f := newWorkerFixture(t, &fakeRecognizer{text: "ignored"})
	v := f.addPending(t, "uploads/missing.jpg", time.Now())
	ctx := context.Background()

	_, err := f.worker.RunOnce(ctx)
	if !errors.Is(err, common.ErrStorageDownload) {
		t.Fatalf("error = %v, want ErrStorageDownload", err)
	}

	got, _ := f.store.GetByID(ctx, v.ID)
	if got.OCRStatus != constants.OCRFailed {
		t.Fatalf("ocr status = %q, want failed", got.OCRStatus)
	}

	logs, _ := f.store.Recent(ctx, 10)
	if len(logs) != 1 || logs[0].Level != "error" {
		t.Fatalf("logs = %+v, want one error entry", logs)
	}
}

func TestRunOnceRecognizerUnreachable(t *testing.T) {
	f := newWorkerFixture(t, &fakeRecognizer{
		err: common.NewAppError("OCR_UNREACHABLE", "down", common.ErrRecognitionUnreachable),
	})
	v := f.addPending(t, "uploads/card.jpg", time.Now())
	f.objects.objects["uploads/card.jpg"] = []byte("image-bytes")
	ctx := context.Background()

	_, err := f.worker.RunOnce(ctx)
	if !errors.Is(err, common.ErrRecognitionUnreachable) {
		t.Fatalf("error = %v, want ErrRecognitionUnreachable", err)
	}
	got, _ := f.store.GetByID(ctx, v.ID)
	if got.OCRStatus != constants.OCRFailed {
		t.Fatalf("ocr status = %q, want failed", got.OCRStatus)
	}
}

func TestRunOncePicksOldestFirst(t *testing.T) {
	f := newWorkerFixture(t, &fakeRecognizer{text: "some text"})
	now := time.Now()
	older := f.addPending(t, "uploads/older.jpg", now.Add(-time.Hour))
	newer := f.addPending(t, "uploads/newer.jpg", now)
	f.objects.objects["uploads/older.jpg"] = []byte("a")
	f.objects.objects["uploads/newer.jpg"] = []byte("b")
	ctx := context.Background()

	res, err := f.worker.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.RecordID != older.ID.String() {
		t.Fatalf("processed %s, want oldest %s", res.RecordID, older.ID)
	}

	got, _ := f.store.GetByID(ctx, newer.ID)
	if got.OCRStatus != constants.OCRPending {
		t.Fatalf("newer record touched: %q", got.OCRStatus)
	}
}

func TestRunOnceNotifiesOnTerminal(t *testing.T) {
	f := newWorkerFixture(t, &fakeRecognizer{text: "some text"})
	f.addPending(t, "uploads/card.jpg", time.Now())
	f.objects.objects["uploads/card.jpg"] = []byte("image-bytes")

	events, cancel := f.hub.Subscribe()
	defer cancel()

	if _, err := f.worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var recordUpdates, logInserts int
	for {
		select {
		case ev := <-events:
			switch ev.Collection {
			case notify.CollectionVerifications:
				recordUpdates++
			case notify.CollectionLogs:
				logInserts++
			}
			continue
		default:
		}
		break
	}
	if recordUpdates != 1 {
		t.Fatalf("record updates = %d, want exactly 1", recordUpdates)
	}
	if logInserts != 1 {
		t.Fatalf("log inserts = %d, want 1", logInserts)
	}
}
