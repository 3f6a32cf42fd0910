package publishing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"conference-clipper/domain/publishing"
	"conference-clipper/domain/talk"

	"github.com/rs/zerolog"
)

// mockPublisher drains the media body in small chunks and acknowledges each
// one, like a resumable upload. With singleRequest set it reads everything
// up front and only acknowledges by returning, after hold.
type mockPublisher struct {
	mu            sync.Mutex
	metas         []*publishing.UploadMetadata
	received      []byte
	chunk         int
	delay         time.Duration
	singleRequest bool
	hold          time.Duration
	err           error
	deadline      bool
}

func (m *mockPublisher) Publish(ctx context.Context, meta *publishing.UploadMetadata) (*publishing.PublishedVideo, error) {
	m.mu.Lock()
	m.metas = append(m.metas, meta)
	_, m.deadline = ctx.Deadline()
	m.mu.Unlock()

	chunk := m.chunk
	if chunk == 0 {
		chunk = 1024
	}
	buf := make([]byte, chunk)
	for {
		n, err := meta.Media.Read(buf)
		m.mu.Lock()
		m.received = append(m.received, buf[:n]...)
		m.mu.Unlock()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if m.delay > 0 {
			time.Sleep(m.delay)
		}
		if !m.singleRequest && meta.Progress != nil {
			m.mu.Lock()
			acked := int64(len(m.received))
			m.mu.Unlock()
			meta.Progress(acked)
		}
	}
	time.Sleep(m.hold)

	if m.err != nil {
		return nil, m.err
	}
	return &publishing.PublishedVideo{VideoID: "vid1", URL: "https://www.youtube.com/watch?v=vid1"}, nil
}

// progressRecorder collects progress events
type progressRecorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *progressRecorder) record(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *progressRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func writeClip(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Talk1.mp4")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func conference(file string) talk.Conference {
	return talk.Conference{Talk: talk.Talk{Room: "A", Title: "Talk1"}, File: file}
}

func TestUploadService_Upload(t *testing.T) {
	path := writeClip(t, 32*1024)
	pub := &mockPublisher{chunk: 1024, delay: time.Millisecond}
	rec := &progressRecorder{}

	svc := NewUploadService(pub, UploadConfig{
		Enabled:          true,
		Product:          "BDX I/O",
		Year:             2017,
		Timeout:          time.Minute,
		ProgressInterval: 2 * time.Millisecond,
	}, zerolog.Nop(), WithProgressFunc(rec.record))

	result, err := svc.Upload(context.Background(), conference(path))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if result.Title != "BDX I/O 2017 - Talk1" {
		t.Errorf("Title = %q", result.Title)
	}
	if result.VideoID != "vid1" || result.URL == "" || result.Skipped {
		t.Errorf("result = %+v", result)
	}
	if result.Bytes != 32*1024 {
		t.Errorf("Bytes = %d, want %d", result.Bytes, 32*1024)
	}

	if len(pub.metas) != 1 {
		t.Fatalf("Publish called %d times, want 1", len(pub.metas))
	}
	meta := pub.metas[0]
	if meta.Title != "BDX I/O 2017 - Talk1" || meta.Description != meta.Title {
		t.Errorf("metadata title/description = %q/%q", meta.Title, meta.Description)
	}
	if meta.Privacy != publishing.PrivacyPrivate {
		t.Errorf("Privacy = %q, want private", meta.Privacy)
	}
	if len(pub.received) != 32*1024 {
		t.Errorf("publisher received %d bytes", len(pub.received))
	}
	if !pub.deadline {
		t.Error("Publish ran without a deadline")
	}

	if rec.count() == 0 {
		t.Error("no progress reported during upload")
	}
	for _, e := range rec.events {
		if e.Total != 32*1024 || e.Sent > e.Total {
			t.Errorf("progress event = %+v", e)
		}
	}
}

func TestUploadService_ProgressFollowsAcknowledgement(t *testing.T) {
	path := writeClip(t, 16*1024)
	pub := &mockPublisher{chunk: 16 * 1024, singleRequest: true, hold: 30 * time.Millisecond}
	rec := &progressRecorder{}

	svc := NewUploadService(pub, UploadConfig{
		Enabled:          true,
		ProgressInterval: time.Millisecond,
	}, zerolog.Nop(), WithProgressFunc(rec.record))

	if _, err := svc.Upload(context.Background(), conference(path)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(pub.received) != 16*1024 {
		t.Fatalf("publisher received %d bytes", len(pub.received))
	}

	if rec.count() == 0 {
		t.Fatal("no progress reported")
	}
	last := rec.events[len(rec.events)-1]
	if last.Sent != 16*1024 || last.Total != 16*1024 {
		t.Errorf("last progress event = %+v, want the whole clip", last)
	}
	for _, e := range rec.events[:len(rec.events)-1] {
		if e.Sent != 0 {
			t.Errorf("progress event %+v reported before the service acknowledged anything", e)
		}
	}
}

func TestUploadService_PollerInertAfterCompletion(t *testing.T) {
	path := writeClip(t, 8*1024)
	rec := &progressRecorder{}
	svc := NewUploadService(&mockPublisher{chunk: 512, delay: time.Millisecond}, UploadConfig{
		Enabled:          true,
		ProgressInterval: time.Millisecond,
	}, zerolog.Nop(), WithProgressFunc(rec.record))

	if _, err := svc.Upload(context.Background(), conference(path)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	after := rec.count()
	time.Sleep(20 * time.Millisecond)
	if got := rec.count(); got != after {
		t.Errorf("progress reported %d more times after Upload returned", got-after)
	}
}

func TestUploadService_PollerStoppedOnFailure(t *testing.T) {
	path := writeClip(t, 4*1024)
	rec := &progressRecorder{}
	serviceErr := errors.New("quotaExceeded")
	svc := NewUploadService(&mockPublisher{chunk: 512, delay: time.Millisecond, err: serviceErr}, UploadConfig{
		Enabled:          true,
		ProgressInterval: time.Millisecond,
	}, zerolog.Nop(), WithProgressFunc(rec.record))

	result, err := svc.Upload(context.Background(), conference(path))
	if result != nil {
		t.Errorf("Upload() result = %+v, want nil", result)
	}
	if !errors.Is(err, publishing.ErrUploadFailed) {
		t.Errorf("Upload() error = %v, want ErrUploadFailed", err)
	}
	if !errors.Is(err, serviceErr) {
		t.Errorf("Upload() error = %v, want wrapping the service error", err)
	}

	after := rec.count()
	time.Sleep(20 * time.Millisecond)
	if rec.count() != after {
		t.Error("progress reported after a failed upload returned")
	}
}

func TestUploadService_UploadDisabled(t *testing.T) {
	pub := &mockPublisher{}
	opened := false
	svc := NewUploadService(pub, UploadConfig{Enabled: false, Product: "P", Year: 2024}, zerolog.Nop(),
		WithFileOpener(func(string) (io.ReadCloser, error) {
			opened = true
			return nil, errors.New("should not open")
		}))

	start := time.Now()
	result, err := svc.Upload(context.Background(), conference("/does/not/exist.mp4"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !result.Skipped || result.Title != "P 2024 - Talk1" {
		t.Errorf("result = %+v, want skipped", result)
	}
	if len(pub.metas) != 0 || opened {
		t.Error("upload disabled but the publisher or file was touched")
	}
	if time.Since(start) > time.Second {
		t.Error("disabled upload did not return immediately")
	}
}

func TestUploadService_UploadMissingClip(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewUploadService(pub, UploadConfig{Enabled: true}, zerolog.Nop())

	if _, err := svc.Upload(context.Background(), conference(filepath.Join(t.TempDir(), "none.mp4"))); err == nil {
		t.Fatal("Upload() expected error for a missing clip")
	}
	if len(pub.metas) != 0 {
		t.Error("Publish called for a missing clip")
	}
}

func TestUploadService_OpensMediaLazily(t *testing.T) {
	path := writeClip(t, 16)
	var opens int
	pub := &mockPublisher{}
	svc := NewUploadService(pub, UploadConfig{Enabled: true, Privacy: publishing.PrivacyUnlisted}, zerolog.Nop(),
		WithFileOpener(func(p string) (io.ReadCloser, error) {
			opens++
			if len(pub.metas) == 0 {
				t.Error("file opened before the upload started")
			}
			return os.Open(p)
		}))

	if _, err := svc.Upload(context.Background(), conference(path)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if opens != 1 {
		t.Errorf("file opened %d times, want 1", opens)
	}
	if pub.metas[0].Privacy != publishing.PrivacyUnlisted {
		t.Errorf("Privacy = %q, want unlisted", pub.metas[0].Privacy)
	}
}
