package video

import (
	"context"
	"fmt"
	"time"

	"conference-clipper/domain/talk"
	"conference-clipper/domain/video"

	"github.com/rs/zerolog"
)

// ExtractConfig controls the split stage
type ExtractConfig struct {
	Enabled   bool
	Extension string
	Timeout   time.Duration
}

// ExtractService cuts one talk out of a room recording
type ExtractService struct {
	clipper     video.Clipper
	fileChecker video.FileChecker
	cfg         ExtractConfig
	logger      zerolog.Logger
}

// NewExtractService creates a new ExtractService
func NewExtractService(clipper video.Clipper, fileChecker video.FileChecker, cfg ExtractConfig, logger zerolog.Logger) *ExtractService {
	if cfg.Extension == "" {
		cfg.Extension = video.DefaultExtension
	}
	return &ExtractService{
		clipper:     clipper,
		fileChecker: fileChecker,
		cfg:         cfg,
		logger:      logger.With().Str("component", "extractor").Logger(),
	}
}

// ExtractInput represents the input for an extraction
type ExtractInput struct {
	SourcePath string
	Talk       talk.Talk
	OutputDir  string
	FileStem   string // Optional, defaults to the sanitized talk title
}

// Extract produces the clip of input.Talk and returns it as a Conference.
// A talk without a positive duration is rejected with a *talk.ValidationError
// before anything else happens. With splitting disabled the Conference points
// at where the clip would be and nothing is written.
func (s *ExtractService) Extract(ctx context.Context, input ExtractInput) (*talk.Conference, error) {
	t := input.Talk
	if d := t.Duration(); d <= 0 {
		return nil, &talk.ValidationError{
			Title: t.Title,
			Field: "end",
			Err:   fmt.Errorf("%w: %s to %s is %ds", talk.ErrNonPositiveDuration, t.Start, t.End, d),
		}
	}

	stem := input.FileStem
	if stem == "" {
		stem = talk.SanitizeTitle(t.Title)
	}
	conf := &talk.Conference{
		Talk: t,
		File: video.ClipPath(input.OutputDir, stem, s.cfg.Extension),
	}

	if !s.cfg.Enabled {
		s.logger.Debug().Str("room", t.Room).Str("talk", t.Title).Str("file", conf.File).Msg("split disabled, using existing clip")
		return conf, nil
	}

	if !s.fileChecker.Exists(input.SourcePath) {
		return nil, fmt.Errorf("source video does not exist: %s", input.SourcePath)
	}

	req, err := video.NewClipRequest(input.SourcePath, t.Start, t.End, conf.File)
	if err != nil {
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info().
		Str("room", t.Room).
		Str("talk", t.Title).
		Str("start", req.Start.Offset()).
		Int("duration", req.Duration).
		Str("file", conf.File).
		Msg("extracting")

	if err := s.clipper.Clip(ctx, req); err != nil {
		return nil, fmt.Errorf("talk %q: %w", t.Title, err)
	}

	s.logger.Info().Str("room", t.Room).Str("talk", t.Title).Dur("elapsed", time.Since(start)).Msg("clip written")
	return conf, nil
}
