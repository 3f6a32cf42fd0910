package publishing

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Privacy is the visibility of an uploaded video
type Privacy string

// Privacy values accepted by the video service
const (
	PrivacyPrivate  Privacy = "private"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPublic   Privacy = "public"
)

// DefaultPrivacy never exposes a clip before someone reviewed it
const DefaultPrivacy = PrivacyPrivate

var (
	// ErrUploadFailed is returned when the video service rejects or loses an upload
	ErrUploadFailed = errors.New("upload failed")

	// ErrInvalidPrivacy is returned for privacy values the service does not know
	ErrInvalidPrivacy = errors.New("invalid privacy status")
)

// ParsePrivacy parses a configured privacy value, defaulting to private when empty
func ParsePrivacy(s string) (Privacy, error) {
	switch p := Privacy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultPrivacy, nil
	case PrivacyPrivate, PrivacyUnlisted, PrivacyPublic:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (expected private, unlisted or public)", ErrInvalidPrivacy, s)
	}
}

// UploadMetadata is built fresh for each upload and never reused
type UploadMetadata struct {
	Title       string
	Description string
	Privacy     Privacy
	CategoryID  string
	Media       io.Reader

	// Progress, when set, receives the number of media bytes the service
	// has acknowledged so far. Publishers may never call it for uploads
	// sent in a single request.
	Progress func(acknowledged int64)
}

// VideoTitle returns "<product> <year> - <talk title>"
func VideoTitle(product string, year int, talkTitle string) string {
	return fmt.Sprintf("%s %d - %s", product, year, talkTitle)
}

// NewUploadMetadata builds the metadata for one clip. Description repeats the title.
func NewUploadMetadata(product string, year int, talkTitle string, privacy Privacy, media io.Reader) *UploadMetadata {
	if privacy == "" {
		privacy = DefaultPrivacy
	}
	title := VideoTitle(product, year, talkTitle)
	return &UploadMetadata{
		Title:       title,
		Description: title,
		Privacy:     privacy,
		Media:       media,
	}
}

// PublishedVideo is what the service acknowledges for a finished upload
type PublishedVideo struct {
	VideoID string
	URL     string
}

// UploadResult contains the result of one Uploader call
type UploadResult struct {
	Title   string
	File    string
	VideoID string
	URL     string
	Bytes   int64
	Skipped bool // upload feature disabled, nothing was sent
}
