package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"conference-clipper/domain/publishing"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// MaxTitleLength is the longest title the YouTube Data API accepts, in characters
const MaxTitleLength = 100

// uploadParts are the resource parts sent with videos.insert
var uploadParts = []string{"snippet", "status"}

// YouTubeService defines the interface for YouTube Data API operations
// This allows mocking the YouTube API in tests
type YouTubeService interface {
	// InsertVideo calls progress, when not nil, with the bytes acknowledged
	// after each uploaded chunk
	InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, progress googleapi.ProgressUpdater) (*youtube.Video, error)
}

// GoogleYouTubeService is the production implementation using the YouTube Data API
type GoogleYouTubeService struct {
	service   *youtube.Service
	chunkSize int
}

// InsertVideo uploads media as a new video and waits for the service acknowledgement
func (s *GoogleYouTubeService) InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, progress googleapi.ProgressUpdater) (*youtube.Video, error) {
	mediaOpts := []googleapi.MediaOption{googleapi.ContentType("video/*")}
	if s.chunkSize > 0 {
		mediaOpts = append(mediaOpts, googleapi.ChunkSize(s.chunkSize))
	}

	call := s.service.Videos.Insert(uploadParts, video).
		Media(media, mediaOpts...).
		Context(ctx)
	if progress != nil {
		call = call.ProgressUpdater(progress)
	}
	return call.Do()
}

// Client implements publishing.VideoPublisher using YouTube Data API
type Client struct {
	youtubeService YouTubeService
	chunkSize      int
	endpoint       string
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithYouTubeService sets a custom YouTube service (for testing)
func WithYouTubeService(svc YouTubeService) ClientOption {
	return func(c *Client) {
		c.youtubeService = svc
	}
}

// WithChunkSize sets the resumable upload chunk size. Clips that fit in
// one chunk are sent in a single request. Zero keeps the library default.
func WithChunkSize(size int) ClientOption {
	return func(c *Client) {
		c.chunkSize = size
	}
}

// WithEndpoint overrides the API base URL (for testing)
func WithEndpoint(url string) ClientOption {
	return func(c *Client) {
		c.endpoint = url
	}
}

// NewClient creates a new YouTube client on top of an authorized HTTP client
// (see Authorize). httpClient may be nil when WithYouTubeService is given.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.youtubeService == nil {
		if httpClient == nil {
			return nil, fmt.Errorf("an authorized http client is required")
		}
		svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
		if c.endpoint != "" {
			svcOpts = append(svcOpts, option.WithEndpoint(c.endpoint))
		}
		srv, err := youtube.NewService(ctx, svcOpts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create youtube service: %w", err)
		}
		c.youtubeService = &GoogleYouTubeService{service: srv, chunkSize: c.chunkSize}
	}

	return c, nil
}

// Publish implements publishing.VideoPublisher
func (c *Client) Publish(ctx context.Context, meta *publishing.UploadMetadata) (*publishing.PublishedVideo, error) {
	if meta.Media == nil {
		return nil, fmt.Errorf("%w: no media body", publishing.ErrUploadFailed)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       TruncateTitle(meta.Title),
			Description: meta.Description,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: string(meta.Privacy),
		},
	}

	var progress googleapi.ProgressUpdater
	if meta.Progress != nil {
		progress = func(current, total int64) {
			meta.Progress(current)
		}
	}

	res, err := c.youtubeService.InsertVideo(ctx, video, meta.Media, progress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", publishing.ErrUploadFailed, err)
	}

	return &publishing.PublishedVideo{
		VideoID: res.Id,
		URL:     WatchURL(res.Id),
	}, nil
}

// WatchURL returns the public watch page of a video
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// TruncateTitle strips the characters YouTube rejects in titles and cuts
// the result to MaxTitleLength characters
func TruncateTitle(title string) string {
	title = strings.NewReplacer("<", "", ">", "").Replace(title)
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:MaxTitleLength]))
}

// Ensure Client implements publishing.VideoPublisher
var _ publishing.VideoPublisher = (*Client)(nil)
