//go:build integration

package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"conference-clipper/domain/publishing"
	"conference-clipper/domain/talk"
	"conference-clipper/domain/video"
)

// recordSource serves schedule rows from memory
type recordSource struct {
	records []talk.Record
}

func (r *recordSource) ReadFile(path string) ([]talk.Record, error) {
	return r.records, nil
}

// fakeDownloader writes a placeholder recording instead of calling yt-dlp
type fakeDownloader struct {
	mu    sync.Mutex
	rooms []string
	fail  map[string]bool
}

func (d *fakeDownloader) Download(ctx context.Context, req *video.DownloadRequest) error {
	d.mu.Lock()
	d.rooms = append(d.rooms, req.Room)
	fail := d.fail[req.Room]
	d.mu.Unlock()

	if fail {
		return fmt.Errorf("ERROR: [youtube] unavailable video for room %s", req.Room)
	}
	return os.WriteFile(req.OutputPath, []byte("recording"), 0644)
}

func (d *fakeDownloader) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// fakeClipper writes a placeholder clip instead of calling ffmpeg
type fakeClipper struct {
	mu    sync.Mutex
	clips []string
}

func (c *fakeClipper) Clip(ctx context.Context, req *video.ClipRequest) error {
	c.mu.Lock()
	c.clips = append(c.clips, req.OutputPath)
	c.mu.Unlock()
	return os.WriteFile(req.OutputPath, []byte(fmt.Sprintf("clip %s +%ds", req.Start, req.Duration)), 0644)
}

func (c *fakeClipper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clips)
}

// fakePublisher accepts every upload and remembers its metadata
type fakePublisher struct {
	mu      sync.Mutex
	uploads []publishing.UploadMetadata
}

func (p *fakePublisher) Publish(ctx context.Context, meta *publishing.UploadMetadata) (*publishing.PublishedVideo, error) {
	if _, err := io.Copy(io.Discard, meta.Media); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uploads = append(p.uploads, *meta)
	id := fmt.Sprintf("v%02d", len(p.uploads))
	return &publishing.PublishedVideo{VideoID: id, URL: "https://www.youtube.com/watch?v=" + id}, nil
}

func (p *fakePublisher) titles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	titles := make([]string, len(p.uploads))
	for i, u := range p.uploads {
		titles[i] = u.Title
	}
	return titles
}
