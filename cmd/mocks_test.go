package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"conference-clipper/domain/notification"
	"conference-clipper/domain/publishing"
	"conference-clipper/domain/talk"
	"conference-clipper/domain/video"
)

// mockPrompter answers prompts by message; unknown messages take the default
type mockPrompter struct {
	inputs   map[string][]string
	confirms map[string][]bool
	selects  map[string]string
	asked    []string
	failOn   string
}

func (m *mockPrompter) Input(message string, defaultValue string) (string, error) {
	m.asked = append(m.asked, message)
	if message == m.failOn {
		return "", errors.New("interrupt")
	}
	if queue := m.inputs[message]; len(queue) > 0 {
		m.inputs[message] = queue[1:]
		return queue[0], nil
	}
	return defaultValue, nil
}

func (m *mockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	m.asked = append(m.asked, message)
	if message == m.failOn {
		return false, errors.New("interrupt")
	}
	if queue := m.confirms[message]; len(queue) > 0 {
		m.confirms[message] = queue[1:]
		return queue[0], nil
	}
	return defaultValue, nil
}

func (m *mockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	m.asked = append(m.asked, message)
	if v, ok := m.selects[message]; ok {
		return v, nil
	}
	return defaultValue, nil
}

type mockRecordReader struct {
	records []talk.Record
	err     error
}

func (m *mockRecordReader) ReadFile(path string) ([]talk.Record, error) {
	return m.records, m.err
}

// fakeDownloader writes a placeholder recording where the real tool would
type fakeDownloader struct {
	mu        sync.Mutex
	rooms     []string
	errs      map[string]error
	verifyErr error
}

func (d *fakeDownloader) Download(ctx context.Context, req *video.DownloadRequest) error {
	d.mu.Lock()
	d.rooms = append(d.rooms, req.Room)
	d.mu.Unlock()
	if err := d.errs[req.Room]; err != nil {
		return err
	}
	return os.WriteFile(req.OutputPath, []byte("recording of "+req.Room), 0644)
}

func (d *fakeDownloader) VerifyInstalled(ctx context.Context) error {
	return d.verifyErr
}

func (d *fakeDownloader) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

type fakeClipper struct {
	mu    sync.Mutex
	clips []string
}

func (c *fakeClipper) Clip(ctx context.Context, req *video.ClipRequest) error {
	c.mu.Lock()
	c.clips = append(c.clips, req.OutputPath)
	c.mu.Unlock()
	body := fmt.Sprintf("%s from %s for %ds", req.SourcePath, req.Start, req.Duration)
	return os.WriteFile(req.OutputPath, []byte(body), 0644)
}

type mockPublisher struct {
	mu     sync.Mutex
	titles []string
	meta   []publishing.UploadMetadata
}

func (p *mockPublisher) Publish(ctx context.Context, meta *publishing.UploadMetadata) (*publishing.PublishedVideo, error) {
	if _, err := io.Copy(io.Discard, meta.Media); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, meta.Title)
	p.meta = append(p.meta, *meta)
	id := fmt.Sprintf("vid%d", len(p.titles))
	return &publishing.PublishedVideo{VideoID: id, URL: "https://www.youtube.com/watch?v=" + id}, nil
}

type mockMailer struct {
	requests []*notification.SummaryRequest
	err      error
}

func (m *mockMailer) Send(ctx context.Context, req *notification.SummaryRequest) error {
	m.requests = append(m.requests, req)
	return m.err
}
