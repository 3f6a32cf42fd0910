package video

import (
	"context"
	"sync"

	"conference-clipper/domain/video"
)

// mockDownloader records download requests
type mockDownloader struct {
	mu       sync.Mutex
	requests []*video.DownloadRequest
	err      error
	deadline bool
}

func (m *mockDownloader) Download(ctx context.Context, req *video.DownloadRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, m.deadline = ctx.Deadline()
	m.requests = append(m.requests, req)
	return m.err
}

// mockClipper records clip requests
type mockClipper struct {
	requests []*video.ClipRequest
	err      error
}

func (m *mockClipper) Clip(ctx context.Context, req *video.ClipRequest) error {
	m.requests = append(m.requests, req)
	return m.err
}

// mockFileChecker answers from a fixed set of paths
type mockFileChecker struct {
	existing map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existing[path]
}
