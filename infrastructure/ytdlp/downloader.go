package ytdlp

import (
	"context"
	"fmt"

	"conference-clipper/domain/video"
	"conference-clipper/infrastructure/command"
)

// Downloader implements video.Downloader by shelling out to yt-dlp
// (or any tool accepting the same -f/-o flags)
type Downloader struct {
	binary string
	runner command.CommandRunner
}

// DownloaderOption is a functional option for configuring Downloader
type DownloaderOption func(*Downloader)

// WithBinary sets the download tool executable
func WithBinary(path string) DownloaderOption {
	return func(d *Downloader) {
		if path != "" {
			d.binary = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner command.CommandRunner) DownloaderOption {
	return func(d *Downloader) {
		d.runner = runner
	}
}

// NewDownloader creates a new yt-dlp based downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		binary: "yt-dlp",
		runner: &command.ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Args returns the tool arguments for req
func Args(req *video.DownloadRequest) []string {
	return []string{"-f", req.Format, req.URL, "-o", req.OutputPath}
}

// Download implements video.Downloader. It blocks until the tool exits.
func (d *Downloader) Download(ctx context.Context, req *video.DownloadRequest) error {
	if err := d.runner.Run(ctx, d.binary, Args(req)...); err != nil {
		return fmt.Errorf("download of %s failed: %w", req.URL, err)
	}
	return nil
}

// VerifyInstalled checks that the download tool is available
func (d *Downloader) VerifyInstalled(ctx context.Context) error {
	if _, err := d.runner.Output(ctx, d.binary, "--version"); err != nil {
		return fmt.Errorf("%s not found or not executable: %w", d.binary, err)
	}
	return nil
}

// Ensure Downloader implements video.Downloader
var _ video.Downloader = (*Downloader)(nil)
