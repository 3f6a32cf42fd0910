package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"conference-clipper/domain/publishing"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"
)

// mockYouTubeService is a mock implementation for testing
type mockYouTubeService struct {
	inserted []*youtube.Video
	bodies   []string
	err      error
}

func (m *mockYouTubeService) InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, progress googleapi.ProgressUpdater) (*youtube.Video, error) {
	body, _ := io.ReadAll(media)
	m.inserted = append(m.inserted, video)
	m.bodies = append(m.bodies, string(body))
	if m.err != nil {
		return nil, m.err
	}
	return &youtube.Video{Id: "vid123"}, nil
}

func TestClient_Publish(t *testing.T) {
	mock := &mockYouTubeService{}
	client, err := NewClient(context.Background(), nil, WithYouTubeService(mock))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	meta := publishing.NewUploadMetadata("BDX I/O", 2017, "Talk1", publishing.DefaultPrivacy, strings.NewReader("clip-bytes"))
	meta.CategoryID = "28"

	got, err := client.Publish(context.Background(), meta)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if got.VideoID != "vid123" || got.URL != "https://www.youtube.com/watch?v=vid123" {
		t.Errorf("Publish() = %+v", got)
	}

	if len(mock.inserted) != 1 {
		t.Fatalf("InsertVideo called %d times, want 1", len(mock.inserted))
	}
	v := mock.inserted[0]
	if v.Snippet.Title != "BDX I/O 2017 - Talk1" {
		t.Errorf("Title = %q", v.Snippet.Title)
	}
	if v.Snippet.Description != v.Snippet.Title {
		t.Errorf("Description = %q, want the title", v.Snippet.Description)
	}
	if v.Snippet.CategoryId != "28" {
		t.Errorf("CategoryId = %q, want 28", v.Snippet.CategoryId)
	}
	if v.Status.PrivacyStatus != "private" {
		t.Errorf("PrivacyStatus = %q, want private", v.Status.PrivacyStatus)
	}
	if mock.bodies[0] != "clip-bytes" {
		t.Errorf("media body = %q", mock.bodies[0])
	}
}

func TestClient_PublishError(t *testing.T) {
	apiErr := &googleapi.Error{Code: http.StatusForbidden, Message: "quotaExceeded"}
	client, _ := NewClient(context.Background(), nil, WithYouTubeService(&mockYouTubeService{err: apiErr}))

	meta := publishing.NewUploadMetadata("P", 2024, "T", publishing.PrivacyPrivate, strings.NewReader("x"))
	_, err := client.Publish(context.Background(), meta)

	if !errors.Is(err, publishing.ErrUploadFailed) {
		t.Errorf("Publish() error = %v, want ErrUploadFailed", err)
	}
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) || gErr.Code != http.StatusForbidden {
		t.Errorf("Publish() error does not carry the API error: %v", err)
	}
}

func TestClient_PublishWithoutMedia(t *testing.T) {
	mock := &mockYouTubeService{}
	client, _ := NewClient(context.Background(), nil, WithYouTubeService(mock))

	_, err := client.Publish(context.Background(), &publishing.UploadMetadata{Title: "T"})
	if !errors.Is(err, publishing.ErrUploadFailed) {
		t.Errorf("Publish() error = %v, want ErrUploadFailed", err)
	}
	if len(mock.inserted) != 0 {
		t.Error("InsertVideo called without media")
	}
}

// uploadServer is a minimal videos.insert endpoint. It counts the request
// body bytes it has read so tests can compare them with reported progress.
type uploadServer struct {
	*httptest.Server
	delay time.Duration
	read  atomic.Int64

	mu          sync.Mutex
	uploadTypes []string
	media       []byte
}

func newUploadServer(t *testing.T, delay time.Duration) *uploadServer {
	t.Helper()
	s := &uploadServer{delay: delay}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *uploadServer) handle(w http.ResponseWriter, r *http.Request) {
	time.Sleep(s.delay)

	var body bytes.Buffer
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Body.Read(buf)
		body.Write(buf[:n])
		s.read.Add(int64(n))
		if err != nil {
			break
		}
	}

	switch {
	case r.URL.Path == "/upload/youtube/v3/videos":
		uploadType := r.URL.Query().Get("uploadType")
		s.mu.Lock()
		s.uploadTypes = append(s.uploadTypes, uploadType)
		s.mu.Unlock()
		if uploadType == "resumable" {
			w.Header().Set("Location", s.URL+"/session")
			w.WriteHeader(http.StatusOK)
			return
		}
		writeVideo(w, "single1")
	case r.URL.Path == "/session":
		s.mu.Lock()
		s.media = append(s.media, body.Bytes()...)
		s.mu.Unlock()
		if strings.HasSuffix(r.Header.Get("Content-Range"), "/*") {
			w.Header().Set("X-Http-Status-Code-Override", "308")
			w.WriteHeader(http.StatusOK)
			return
		}
		writeVideo(w, "chunked1")
	default:
		http.NotFound(w, r)
	}
}

func (s *uploadServer) received() (uploadTypes []string, media []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploadTypes...), append([]byte(nil), s.media...)
}

func writeVideo(w http.ResponseWriter, id string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":%q}`, id)
}

// progressLog records acknowledged bytes next to what the server had read
type progressLog struct {
	mu      sync.Mutex
	reports []int64
	ahead   []string
}

func (l *progressLog) track(server *uploadServer) func(int64) {
	return func(n int64) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.reports = append(l.reports, n)
		if read := server.read.Load(); n > read {
			l.ahead = append(l.ahead, fmt.Sprintf("%d reported, %d read by server", n, read))
		}
	}
}

func newTestClient(t *testing.T, server *uploadServer, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithEndpoint(server.URL + "/")}, opts...)
	client, err := NewClient(context.Background(), server.Client(), opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestClient_PublishSingleRequestReportsNoEarlyProgress(t *testing.T) {
	server := newUploadServer(t, 300*time.Millisecond)
	client := newTestClient(t, server)
	log := &progressLog{}

	meta := publishing.NewUploadMetadata("P", 2017, "Talk1", publishing.PrivacyPrivate, bytes.NewReader(make([]byte, 1<<20)))
	meta.Progress = log.track(server)

	got, err := client.Publish(context.Background(), meta)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got.VideoID != "single1" {
		t.Errorf("VideoID = %q, want single1", got.VideoID)
	}
	if uploadTypes, _ := server.received(); len(uploadTypes) != 1 || uploadTypes[0] != "multipart" {
		t.Errorf("upload types = %v, want one multipart request", uploadTypes)
	}
	if len(log.ahead) != 0 || len(log.reports) != 0 {
		t.Errorf("single request upload reported %v (ahead of server: %v)", log.reports, log.ahead)
	}
}

func TestClient_PublishResumableReportsAcknowledgedChunks(t *testing.T) {
	const chunk = googleapi.MinUploadChunkSize
	server := newUploadServer(t, 20*time.Millisecond)
	client := newTestClient(t, server, WithChunkSize(chunk))
	log := &progressLog{}

	media := bytes.Repeat([]byte("v"), 2*chunk+1000)
	meta := publishing.NewUploadMetadata("P", 2017, "Talk1", publishing.PrivacyPrivate, bytes.NewReader(media))
	meta.Progress = log.track(server)

	got, err := client.Publish(context.Background(), meta)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got.VideoID != "chunked1" {
		t.Errorf("VideoID = %q, want chunked1", got.VideoID)
	}
	if _, received := server.received(); !bytes.Equal(received, media) {
		t.Errorf("server received %d media bytes, want %d", len(received), len(media))
	}

	want := []int64{chunk, 2 * chunk, int64(len(media))}
	if fmt.Sprint(log.reports) != fmt.Sprint(want) {
		t.Errorf("progress = %v, want %v", log.reports, want)
	}
	if len(log.ahead) != 0 {
		t.Errorf("progress ran ahead of the server: %v", log.ahead)
	}
}

func TestNewClient_RequiresHTTPClient(t *testing.T) {
	if _, err := NewClient(context.Background(), nil); err == nil {
		t.Error("NewClient() expected error without http client or service")
	}
}

func TestTruncateTitle(t *testing.T) {
	long := strings.Repeat("é", 120)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "BDX I/O 2017 - Talk", "BDX I/O 2017 - Talk"},
		{"angle brackets", "Why <div> soup", "Why div soup"},
		{"long", long, strings.Repeat("é", MaxTitleLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTitle(tt.input)
			if got != tt.want {
				t.Errorf("TruncateTitle() = %q, want %q", got, tt.want)
			}
			if utf8.RuneCountInString(got) > MaxTitleLength {
				t.Errorf("TruncateTitle() is %d characters long", utf8.RuneCountInString(got))
			}
		})
	}
}
