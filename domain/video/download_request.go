package video

import (
	"fmt"
	"path/filepath"
)

// DefaultFormat asks the download tool for the best single-file quality
const DefaultFormat = "best"

// DownloadRequest represents a request to fetch one room's recording
type DownloadRequest struct {
	Room       string
	URL        string
	Format     string
	OutputPath string
}

// NewDownloadRequest creates a request writing to <dir>/<room>.<ext>
func NewDownloadRequest(room, url, dir, ext, format string) (*DownloadRequest, error) {
	if room == "" {
		return nil, fmt.Errorf("room is required")
	}
	if url == "" {
		return nil, fmt.Errorf("source url is required for room %q", room)
	}
	if format == "" {
		format = DefaultFormat
	}

	return &DownloadRequest{
		Room:       room,
		URL:        url,
		Format:     format,
		OutputPath: SourcePath(dir, room, ext),
	}, nil
}

// SourcePath returns the deterministic download location <dir>/<room>.<ext>
func SourcePath(dir, room, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return filepath.Join(dir, room+"."+ext)
}
