package video

import (
	"context"
	"fmt"
	"time"

	"conference-clipper/domain/talk"
	"conference-clipper/domain/video"

	"github.com/rs/zerolog"
)

// DownloadConfig controls the download stage
type DownloadConfig struct {
	Enabled   bool
	Format    string
	Extension string
	Timeout   time.Duration
}

// DownloadService fetches one source recording per room
type DownloadService struct {
	downloader video.Downloader
	cfg        DownloadConfig
	logger     zerolog.Logger
}

// NewDownloadService creates a new DownloadService
func NewDownloadService(downloader video.Downloader, cfg DownloadConfig, logger zerolog.Logger) *DownloadService {
	if cfg.Extension == "" {
		cfg.Extension = video.DefaultExtension
	}
	return &DownloadService{
		downloader: downloader,
		cfg:        cfg,
		logger:     logger.With().Str("component", "downloader").Logger(),
	}
}

// Fetch makes the recording of room available at <destinationDir>/<room>.<ext>
// and returns that path. With downloads disabled the path is returned untouched,
// on the assumption that the file is already there.
func (s *DownloadService) Fetch(ctx context.Context, room, sourceURL, destinationDir string) (string, error) {
	req, err := video.NewDownloadRequest(room, sourceURL, destinationDir, s.cfg.Extension, s.cfg.Format)
	if err != nil {
		return "", err
	}
	// room names may hold path separators
	req.OutputPath = video.SourcePath(destinationDir, talk.SanitizeTitle(room), s.cfg.Extension)

	if !s.cfg.Enabled {
		s.logger.Debug().Str("room", room).Str("file", req.OutputPath).Msg("download disabled, using existing file")
		return req.OutputPath, nil
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info().Str("room", room).Str("url", sourceURL).Str("file", req.OutputPath).Msg("downloading")

	if err := s.downloader.Download(ctx, req); err != nil {
		return "", fmt.Errorf("room %s: %w", room, err)
	}

	s.logger.Info().Str("room", room).Dur("elapsed", time.Since(start)).Msg("download finished")
	return req.OutputPath, nil
}
