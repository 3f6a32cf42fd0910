package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"conference-clipper/domain/video"
	"conference-clipper/infrastructure/command"
)

// Clipper implements video.Clipper using ffmpeg stream copy
type Clipper struct {
	ffmpegPath string
	runner     command.CommandRunner
}

// ClipperOption is a functional option for configuring Clipper
type ClipperOption func(*Clipper)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) ClipperOption {
	return func(c *Clipper) {
		if path != "" {
			c.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner command.CommandRunner) ClipperOption {
	return func(c *Clipper) {
		c.runner = runner
	}
}

// NewClipper creates a new FFmpeg-based clipper
func NewClipper(opts ...ClipperOption) *Clipper {
	c := &Clipper{
		ffmpegPath: "ffmpeg",
		runner:     &command.ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Args returns the ffmpeg arguments for req. Seeking before -i keeps the cut fast;
// -c copy means no re-encode, so cuts land on the nearest keyframe.
func Args(req *video.ClipRequest) []string {
	return []string{
		"-ss", req.Start.Offset(),
		"-i", req.SourcePath,
		"-t", strconv.Itoa(req.Duration),
		"-c", "copy",
		"-y", // Overwrite output file if it exists
		req.OutputPath,
	}
}

// Clip implements video.Clipper
func (c *Clipper) Clip(ctx context.Context, req *video.ClipRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid clip request: %w", err)
	}

	if err := c.runner.Run(ctx, c.ffmpegPath, Args(req)...); err != nil {
		return fmt.Errorf("ffmpeg clip failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (c *Clipper) VerifyInstalled(ctx context.Context) error {
	_, err := c.runner.Output(ctx, c.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Clipper implements video.Clipper
var _ video.Clipper = (*Clipper)(nil)
