package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"conference-clipper/domain/talk"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RunnerConfig contains the runner settings
type RunnerConfig struct {
	VideosDir string // <root>/videos, created before any room starts
	MaxRooms  int    // rooms running at once; 0 means all of them
}

// Summary is the outcome of a whole run, with rooms in group order
type Summary struct {
	Rooms   []RoomResult
	Elapsed time.Duration
}

// Failed counts rooms that ended in StateFailed
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Rooms {
		if r.State == StateFailed {
			n++
		}
	}
	return n
}

// Uploaded counts acknowledged uploads over every room
func (s *Summary) Uploaded() int {
	n := 0
	for _, r := range s.Rooms {
		n += r.Uploaded()
	}
	return n
}

// OK reports whether every room reached StateDone
func (s *Summary) OK() bool {
	return s.Failed() == 0
}

// Runner runs one RoomPipeline per room concurrently
type Runner struct {
	cfg       RunnerConfig
	fetcher   Fetcher
	extractor Extractor
	uploader  Uploader
	dirs      DirMaker
	logger    zerolog.Logger
	observe   func(Transition)
}

// RunnerOption is a functional option for configuring Runner
type RunnerOption func(*Runner)

// WithTransitionObserver is called on every room state change. It must be
// safe for concurrent use.
func WithTransitionObserver(fn func(Transition)) RunnerOption {
	return func(r *Runner) {
		r.observe = fn
	}
}

// NewRunner creates a new pipeline runner
func NewRunner(cfg RunnerConfig, fetcher Fetcher, extractor Extractor, uploader Uploader, dirs DirMaker, logger zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		uploader:  uploader,
		dirs:      dirs,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run groups talks by room and waits for every room to finish. One room
// failing never stops the others; the returned error is only set when the
// run could not start.
func (r *Runner) Run(ctx context.Context, talks []talk.Talk) (*Summary, error) {
	start := time.Now()
	groups := talk.GroupByRoom(talks)

	if err := r.dirs.EnsureDir(r.cfg.VideosDir); err != nil {
		return nil, fmt.Errorf("failed to prepare videos directory: %w", err)
	}

	r.logger.Info().
		Int("rooms", len(groups)).
		Int("talks", len(talks)).
		Int("max_rooms", r.cfg.MaxRooms).
		Msg("starting rooms")

	results := make([]RoomResult, len(groups))

	// rooms report failures in their result; the group never cancels
	var g errgroup.Group
	if r.cfg.MaxRooms > 0 {
		g.SetLimit(r.cfg.MaxRooms)
	}

	for i, group := range groups {
		g.Go(func() error {
			p := NewRoomPipeline(group, filepath.Join(r.cfg.VideosDir, group.DirName()), r.fetcher, r.extractor, r.uploader, r.dirs, r.logger)
			p.OnTransition(r.observe)
			results[i] = p.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{Rooms: results, Elapsed: time.Since(start)}

	r.logger.Info().
		Int("rooms", len(results)).
		Int("failed", summary.Failed()).
		Int("uploaded", summary.Uploaded()).
		Dur("elapsed", summary.Elapsed).
		Msg("run finished")

	return summary, nil
}
