package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	appvideo "conference-clipper/application/video"
	"conference-clipper/domain/publishing"
	"conference-clipper/domain/talk"
	"conference-clipper/domain/video"
)

// callLog records calls across rooms in the order they happen
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// filter returns the calls starting with prefix, in order
func (l *callLog) filter(prefix string) []string {
	var out []string
	for _, c := range l.all() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

type mockFetcher struct {
	log   *callLog
	errs  map[string]error // by room
	delay time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, room, sourceURL, destinationDir string) (string, error) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		cur := m.maxActive.Load()
		if n <= cur || m.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	m.log.add("download " + room + " " + sourceURL)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if err := m.errs[room]; err != nil {
		return "", err
	}
	return filepath.Join(destinationDir, room+".mp4"), nil
}

type mockExtractor struct {
	log  *callLog
	errs map[string]error // by talk title
}

func (m *mockExtractor) Extract(ctx context.Context, input appvideo.ExtractInput) (*talk.Conference, error) {
	m.log.add("extract " + input.Talk.Title)
	if err := m.errs[input.Talk.Title]; err != nil {
		return nil, err
	}
	return &talk.Conference{Talk: input.Talk, File: filepath.Join(input.OutputDir, input.FileStem+".mp4")}, nil
}

type mockUploader struct {
	log  *callLog
	errs map[string]error // by talk title
}

func (m *mockUploader) Upload(ctx context.Context, conf talk.Conference) (*publishing.UploadResult, error) {
	m.log.add("upload " + conf.Title)
	if err := m.errs[conf.Title]; err != nil {
		return nil, err
	}
	return &publishing.UploadResult{Title: conf.Title, File: conf.File, VideoID: "id-" + conf.Title}, nil
}

type mockDirs struct {
	log *callLog
	err error
}

func (m *mockDirs) EnsureDir(path string) error {
	m.log.add("mkdir " + path)
	return m.err
}

func mustTalk(t *testing.T, room, title, start, end, url string) talk.Talk {
	t.Helper()
	s, err := video.ParseTimestamp(start)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q) error = %v", start, err)
	}
	e, err := video.ParseTimestamp(end)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q) error = %v", end, err)
	}
	return talk.Talk{Room: room, Title: title, Start: s, End: e, URL: url}
}

// transitionRecorder collects transitions from concurrent rooms
type transitionRecorder struct {
	mu     sync.Mutex
	byRoom map[string][]Transition
}

func newTransitionRecorder() *transitionRecorder {
	return &transitionRecorder{byRoom: make(map[string][]Transition)}
}

func (r *transitionRecorder) record(tr Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRoom[tr.Room] = append(r.byRoom[tr.Room], tr)
}
