package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"time"

	appnotification "conference-clipper/application/notification"
	"conference-clipper/application/pipeline"
	apppublishing "conference-clipper/application/publishing"
	"conference-clipper/application/schedule"
	appvideo "conference-clipper/application/video"
	"conference-clipper/domain/notification"
	"conference-clipper/domain/publishing"
	"conference-clipper/domain/talk"
	"conference-clipper/domain/video"
	"conference-clipper/infrastructure/command"
	"conference-clipper/infrastructure/config"
	"conference-clipper/infrastructure/ffmpeg"
	"conference-clipper/infrastructure/filesystem"
	"conference-clipper/infrastructure/gmail"
	"conference-clipper/infrastructure/youtube"
	"conference-clipper/infrastructure/ytdlp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrRoomsFailed is returned by run when at least one room did not finish
var ErrRoomsFailed = errors.New("one or more rooms failed")

// verifyTimeout bounds the "--version" check of each external tool
const verifyTimeout = 5 * time.Second

var (
	runMaxRooms int
	runNoUpload bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download, cut and upload every talk of the schedule",
	Long: `Run the complete pipeline for every room of the schedule:
1. Download the room recording
2. Cut one clip per talk
3. Upload each clip to YouTube
4. Print a summary and, if enabled, email it

Stages switched off in the config (features.download, features.split,
features.upload) are skipped without touching the filesystem or network.

Example:
  conference-clipper run
  conference-clipper run --max-rooms 2 --no-upload`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runMaxRooms, "max-rooms", -1, "rooms processed at once (default from config, 0 means all)")
	runCmd.Flags().BoolVar(&runNoUpload, "no-upload", false, "skip the upload stage for this run")
}

// FileSystem is what the pipeline needs from the local disk
type FileSystem interface {
	video.FileChecker
	pipeline.DirMaker
}

// PipelineDependencies holds the adapters a run drives
type PipelineDependencies struct {
	Schedule   schedule.RecordReader
	Downloader video.Downloader
	Clipper    video.Clipper
	Files      FileSystem
	Publisher  publishing.VideoPublisher // may be nil when uploads are off
	Mailer     notification.EmailSender  // may be nil when notification is off
	Logger     zerolog.Logger
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if runMaxRooms >= 0 {
		cfg.Concurrency.MaxRooms = runMaxRooms
	}
	if runNoUpload {
		cfg.Features.Upload = false
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	deps := PipelineDependencies{
		Schedule: newScheduleReader(cfg.Schedule),
		Downloader: ytdlp.NewDownloader(
			ytdlp.WithBinary(cfg.Tools.Downloader),
			ytdlp.WithCommandRunner(&command.ExecCommandRunner{}),
		),
		Clipper: ffmpeg.NewClipper(
			ffmpeg.WithFFmpegPath(cfg.Tools.FFmpeg),
			ffmpeg.WithCommandRunner(&command.ExecCommandRunner{}),
		),
		Files:  filesystem.NewChecker(),
		Logger: log.Logger,
	}

	// Authorize before any work starts
	if cfg.Features.Upload {
		httpClient, err := youtube.Authorize(ctx, youtubeOAuthConfig(cfg))
		if err != nil {
			return fmt.Errorf("youtube authorization failed: %w", err)
		}
		client, err := youtube.NewClient(ctx, httpClient, youtube.WithChunkSize(cfg.YouTube.ChunkSize))
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		deps.Publisher = client
	}

	if cfg.Notification.Enabled {
		mailer, err := newGmailClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create Gmail client: %w", err)
		}
		deps.Mailer = mailer
	}

	_, err = RunPipelineWithDependencies(ctx, cfg, deps, os.Stdout)
	return err
}

// RunPipelineWithDependencies runs the pipeline with injected dependencies (for testing)
func RunPipelineWithDependencies(ctx context.Context, cfg *config.Config, deps PipelineDependencies, out io.Writer) (*pipeline.Summary, error) {
	runID := uuid.NewString()
	logger := deps.Logger.With().Str("run_id", runID).Logger()

	if err := verifyTools(ctx, cfg, deps); err != nil {
		return nil, err
	}

	privacy, err := publishing.ParsePrivacy(cfg.YouTube.Privacy)
	if err != nil {
		return nil, err
	}
	if cfg.Features.Upload && deps.Publisher == nil {
		return nil, fmt.Errorf("upload is enabled but no publisher is configured")
	}

	scheduleService := schedule.NewService(deps.Schedule, talk.NewValidator(cfg.Rooms), logger)
	loaded, err := scheduleService.Load(cfg.Schedule.File)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "%s %d: %d talks to process, %d rows rejected\n",
		cfg.Product, cfg.Year, len(loaded.Talks), len(loaded.Rejected))

	if len(loaded.Talks) == 0 {
		fmt.Fprintln(out, "Nothing to do.")
		return &pipeline.Summary{}, nil
	}

	downloadService := appvideo.NewDownloadService(deps.Downloader, appvideo.DownloadConfig{
		Enabled:   cfg.Features.Download,
		Format:    cfg.Tools.DownloadFormat,
		Extension: cfg.Tools.Extension,
		Timeout:   cfg.Timeouts.Download,
	}, logger)

	extractService := appvideo.NewExtractService(deps.Clipper, deps.Files, appvideo.ExtractConfig{
		Enabled:   cfg.Features.Split,
		Extension: cfg.Tools.Extension,
		Timeout:   cfg.Timeouts.Extract,
	}, logger)

	uploadService := apppublishing.NewUploadService(deps.Publisher, apppublishing.UploadConfig{
		Enabled:          cfg.Features.Upload,
		Product:          cfg.Product,
		Year:             cfg.Year,
		Privacy:          privacy,
		CategoryID:       cfg.YouTube.CategoryID,
		Timeout:          cfg.Timeouts.Upload,
		ProgressInterval: cfg.YouTube.ProgressInterval,
	}, logger)

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		VideosDir: cfg.VideosDir(),
		MaxRooms:  cfg.Concurrency.MaxRooms,
	}, downloadService, extractService, uploadService, deps.Files, logger,
		pipeline.WithTransitionObserver(roomProgress(out)))

	logger.Info().
		Str("product", cfg.Product).
		Int("year", cfg.Year).
		Int("talks", len(loaded.Talks)).
		Msg("Starting run")

	summary, err := runner.Run(ctx, loaded.Talks)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, RenderSummary(summary))

	logger.Info().
		Int("rooms", len(summary.Rooms)).
		Int("failed", summary.Failed()).
		Int("uploaded", summary.Uploaded()).
		Dur("elapsed", summary.Elapsed).
		Msg("Run finished")

	if cfg.Notification.Enabled && deps.Mailer != nil {
		notifier := appnotification.NewService(deps.Mailer, cfg.Product, cfg.Year, notificationRecipients(cfg))
		if err := notifier.SendSummary(ctx, runID, summary); err != nil {
			logger.Error().Err(err).Msg("Failed to send summary email")
		} else {
			fmt.Fprintln(out, "Summary email sent.")
		}
	}

	if !summary.OK() {
		return summary, fmt.Errorf("%w: %d of %d", ErrRoomsFailed, summary.Failed(), len(summary.Rooms))
	}
	return summary, nil
}

// roomProgress prints rooms starting and finishing while the run goes on
func roomProgress(out io.Writer) func(pipeline.Transition) {
	var mu sync.Mutex
	return func(tr pipeline.Transition) {
		switch tr.To {
		case pipeline.StateDownloading, pipeline.StateDone, pipeline.StateFailed:
		default:
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "[%s] %s\n", tr.Room, tr.To)
	}
}

// verifyTools checks the external programs of the enabled stages
func verifyTools(ctx context.Context, cfg *config.Config, deps PipelineDependencies) error {
	type verifiable interface {
		VerifyInstalled(context.Context) error
	}

	check := func(enabled bool, name string, tool any) error {
		v, ok := tool.(verifiable)
		if !enabled || !ok {
			return nil
		}
		verifyCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
		defer cancel()
		if err := v.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("%s verification failed: %w", name, err)
		}
		return nil
	}

	if err := check(cfg.Features.Download, cfg.Tools.Downloader, deps.Downloader); err != nil {
		return err
	}
	return check(cfg.Features.Split, cfg.Tools.FFmpeg, deps.Clipper)
}

func youtubeOAuthConfig(cfg *config.Config) youtube.OAuthConfig {
	return youtube.OAuthConfig{
		CredentialsFile: cfg.YouTube.CredentialsFile,
		TokenFile:       cfg.YouTube.TokenFile,
		CallbackPort:    cfg.YouTube.CallbackPort,
		Out:             os.Stderr,
		Logger:          log.Logger,
	}
}

func gmailOAuthConfig(cfg *config.Config) youtube.OAuthConfig {
	oc := youtubeOAuthConfig(cfg)
	oc.TokenFile = cfg.Notification.TokenFile
	oc.Scopes = []string{gmail.SendScope}
	return oc
}

func newGmailClient(ctx context.Context, cfg *config.Config) (*gmail.Client, error) {
	httpClient, err := youtube.Authorize(ctx, gmailOAuthConfig(cfg))
	if err != nil {
		return nil, err
	}
	from := notification.Recipient{Name: cfg.Notification.FromName, Address: cfg.Notification.FromAddress}
	return gmail.NewClientWithHTTP(ctx, httpClient, from)
}

// notificationRecipients returns the configured recipients sorted by key
func notificationRecipients(cfg *config.Config) []notification.Recipient {
	keys := make([]string, 0, len(cfg.Notification.Recipients))
	for k := range cfg.Notification.Recipients {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	recipients := make([]notification.Recipient, 0, len(keys))
	for _, k := range keys {
		rc := cfg.Notification.Recipients[k]
		recipients = append(recipients, notification.Recipient{Name: rc.Name, Address: rc.Address})
	}
	return recipients
}
