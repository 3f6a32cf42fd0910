package publishing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"conference-clipper/domain/publishing"
	"conference-clipper/domain/talk"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// DefaultProgressInterval is how often upload progress is sampled
const DefaultProgressInterval = 250 * time.Millisecond

// UploadConfig controls the upload stage and the metadata of every video
type UploadConfig struct {
	Enabled          bool
	Product          string
	Year             int
	Privacy          publishing.Privacy
	CategoryID       string
	Timeout          time.Duration
	ProgressInterval time.Duration
}

// ProgressEvent is one sample of an upload in flight
type ProgressEvent struct {
	Title string
	Sent  int64
	Total int64
}

// UploadService publishes clips one at a time
type UploadService struct {
	publisher publishing.VideoPublisher
	cfg       UploadConfig
	logger    zerolog.Logger
	open      func(string) (io.ReadCloser, error)
	progress  func(ProgressEvent)
}

// UploadOption is a functional option for configuring UploadService
type UploadOption func(*UploadService)

// WithProgressFunc replaces the default progress log line (for testing or UI)
func WithProgressFunc(fn func(ProgressEvent)) UploadOption {
	return func(s *UploadService) {
		s.progress = fn
	}
}

// WithFileOpener sets how clip files are opened (for testing)
func WithFileOpener(open func(string) (io.ReadCloser, error)) UploadOption {
	return func(s *UploadService) {
		s.open = open
	}
}

// NewUploadService creates a new upload service
func NewUploadService(publisher publishing.VideoPublisher, cfg UploadConfig, logger zerolog.Logger, opts ...UploadOption) *UploadService {
	if cfg.Privacy == "" {
		cfg.Privacy = publishing.DefaultPrivacy
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}

	s := &UploadService{
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With().Str("component", "uploader").Logger(),
	}
	s.progress = s.logProgress

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Upload publishes the clip of conf and blocks until the service acknowledges
// it. With uploads disabled it returns a skipped result without any I/O.
func (s *UploadService) Upload(ctx context.Context, conf talk.Conference) (*publishing.UploadResult, error) {
	title := publishing.VideoTitle(s.cfg.Product, s.cfg.Year, conf.Title)
	result := &publishing.UploadResult{Title: title, File: conf.File}

	if !s.cfg.Enabled {
		result.Skipped = true
		s.logger.Debug().Str("room", conf.Room).Str("talk", conf.Title).Msg("upload disabled, skipping")
		return result, nil
	}

	info, err := os.Stat(conf.File)
	if err != nil {
		return nil, fmt.Errorf("talk %q: clip not found: %w", conf.Title, err)
	}

	media := newMediaFile(conf.File, s.open)
	defer media.Close()

	// bytes the service acknowledged, as reported by the publisher's transport
	var acknowledged atomic.Int64

	meta := publishing.NewUploadMetadata(s.cfg.Product, s.cfg.Year, conf.Title, s.cfg.Privacy, media)
	meta.CategoryID = s.cfg.CategoryID
	meta.Progress = acknowledged.Store

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info().
		Str("room", conf.Room).
		Str("talk", conf.Title).
		Str("size", humanize.Bytes(uint64(info.Size()))).
		Str("privacy", string(meta.Privacy)).
		Msg("uploading")

	total := info.Size()
	p := startPoller(s.cfg.ProgressInterval, acknowledged.Load, func(n int64) {
		s.progress(ProgressEvent{Title: title, Sent: n, Total: total})
	})
	published, err := s.publisher.Publish(ctx, meta)
	p.Stop()

	if err != nil {
		if !errors.Is(err, publishing.ErrUploadFailed) {
			err = fmt.Errorf("%w: %w", publishing.ErrUploadFailed, err)
		}
		return nil, fmt.Errorf("talk %q: %w", conf.Title, err)
	}

	result.VideoID = published.VideoID
	result.URL = published.URL
	result.Bytes = total

	// single-request uploads are only acknowledged as a whole
	if acknowledged.Load() != total {
		s.progress(ProgressEvent{Title: title, Sent: total, Total: total})
	}

	s.logger.Info().
		Str("room", conf.Room).
		Str("talk", conf.Title).
		Str("video_id", result.VideoID).
		Str("url", result.URL).
		Dur("elapsed", time.Since(start)).
		Msg("upload finished")

	return result, nil
}

func (s *UploadService) logProgress(e ProgressEvent) {
	ev := s.logger.Info().Str("video", e.Title)
	if e.Total > 0 {
		ev = ev.Int64("percent", e.Sent*100/e.Total)
	}
	ev.Msgf("%s uploaded", humanize.Bytes(uint64(e.Sent)))
}
