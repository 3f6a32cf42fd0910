package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	appvideo "conference-clipper/application/video"
	"conference-clipper/domain/publishing"
	"conference-clipper/domain/talk"

	"github.com/rs/zerolog"
)

// State is where a room pipeline stands
type State string

// Room pipeline states
const (
	StateIdle        State = "idle"
	StateDownloading State = "downloading"
	StateExtracting  State = "extracting"
	StateUploading   State = "uploading"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Fetcher makes a room recording available locally
type Fetcher interface {
	Fetch(ctx context.Context, room, sourceURL, destinationDir string) (string, error)
}

// Extractor cuts one talk out of a room recording
type Extractor interface {
	Extract(ctx context.Context, input appvideo.ExtractInput) (*talk.Conference, error)
}

// Uploader publishes one clip
type Uploader interface {
	Upload(ctx context.Context, conf talk.Conference) (*publishing.UploadResult, error)
}

// DirMaker creates directories that may already exist
type DirMaker interface {
	EnsureDir(path string) error
}

// Transition is reported every time a room changes state.
// Talk is -1 outside the per-talk states.
type Transition struct {
	Room string
	From State
	To   State
	Talk int
}

// TalkResult is what happened to one talk of a room
type TalkResult struct {
	Talk   talk.Talk
	File   string
	Upload *publishing.UploadResult
	Err    error // set for rejected talks and for the talk that failed the room
}

// RoomResult is what happened to one room
type RoomResult struct {
	Room    string
	Dir     string
	State   State
	Talks   []TalkResult
	Err     error
	Elapsed time.Duration
}

// Uploaded counts talks whose upload was acknowledged
func (r RoomResult) Uploaded() int {
	n := 0
	for _, t := range r.Talks {
		if t.Err == nil && t.Upload != nil && !t.Upload.Skipped {
			n++
		}
	}
	return n
}

// Rejected counts talks dropped by validation
func (r RoomResult) Rejected() int {
	n := 0
	for _, t := range r.Talks {
		if talk.IsValidationError(t.Err) {
			n++
		}
	}
	return n
}

// RoomPipeline downloads one room recording, then extracts and uploads its
// talks strictly one after the other
type RoomPipeline struct {
	group     talk.RoomGroup
	dir       string
	fetcher   Fetcher
	extractor Extractor
	uploader  Uploader
	dirs      DirMaker
	logger    zerolog.Logger
	observe   func(Transition)

	mu    sync.Mutex
	state State
}

// NewRoomPipeline creates the pipeline of one room writing into dir
func NewRoomPipeline(group talk.RoomGroup, dir string, fetcher Fetcher, extractor Extractor, uploader Uploader, dirs DirMaker, logger zerolog.Logger) *RoomPipeline {
	return &RoomPipeline{
		group:     group,
		dir:       dir,
		fetcher:   fetcher,
		extractor: extractor,
		uploader:  uploader,
		dirs:      dirs,
		logger:    logger.With().Str("component", "room").Str("room", group.Room).Logger(),
		observe:   func(Transition) {},
		state:     StateIdle,
	}
}

// OnTransition registers fn to be called on every state change
func (p *RoomPipeline) OnTransition(fn func(Transition)) {
	if fn != nil {
		p.observe = fn
	}
}

// State returns the current state
func (p *RoomPipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run drives the room to Done or Failed. A validation error rejects only
// its talk; any other error stops the room.
func (p *RoomPipeline) Run(ctx context.Context) RoomResult {
	start := time.Now()
	result := RoomResult{Room: p.group.Room, Dir: p.dir}

	finish := func(err error) RoomResult {
		result.Elapsed = time.Since(start)
		result.Err = err
		if err != nil {
			p.transition(StateFailed, -1)
			p.logger.Error().Err(err).Dur("elapsed", result.Elapsed).Msg("room failed")
		} else {
			p.transition(StateDone, -1)
			p.logger.Info().
				Int("uploaded", result.Uploaded()).
				Int("rejected", result.Rejected()).
				Dur("elapsed", result.Elapsed).
				Msg("room done")
		}
		result.State = p.State()
		return result
	}

	if err := p.dirs.EnsureDir(p.dir); err != nil {
		return finish(err)
	}

	p.transition(StateDownloading, -1)
	source, err := p.fetcher.Fetch(ctx, p.group.Room, p.group.SourceURL(), p.dir)
	if err != nil {
		return finish(fmt.Errorf("download: %w", err))
	}

	for i, t := range p.group.Talks {
		tr := TalkResult{Talk: t}

		p.transition(StateExtracting, i)
		conf, err := p.extractor.Extract(ctx, appvideo.ExtractInput{
			SourcePath: source,
			Talk:       t,
			OutputDir:  p.dir,
			FileStem:   p.group.FileStem(i),
		})
		if err != nil {
			tr.Err = err
			result.Talks = append(result.Talks, tr)
			if talk.IsValidationError(err) {
				p.logger.Warn().Str("talk", t.Title).Err(err).Msg("talk rejected")
				continue
			}
			return finish(fmt.Errorf("extract: %w", err))
		}
		tr.File = conf.File

		p.transition(StateUploading, i)
		res, err := p.uploader.Upload(ctx, *conf)
		if err != nil {
			tr.Err = err
			result.Talks = append(result.Talks, tr)
			return finish(fmt.Errorf("upload: %w", err))
		}
		tr.Upload = res
		result.Talks = append(result.Talks, tr)
	}

	return finish(nil)
}

func (p *RoomPipeline) transition(to State, talkIndex int) {
	p.mu.Lock()
	from := p.state
	p.state = to
	p.mu.Unlock()

	ev := p.logger.Debug().Str("from", string(from)).Str("to", string(to))
	if talkIndex >= 0 {
		ev = ev.Int("index", talkIndex).Str("talk", p.group.Talks[talkIndex].Title)
	}
	ev.Msg("state changed")

	p.observe(Transition{Room: p.group.Room, From: from, To: to, Talk: talkIndex})
}
