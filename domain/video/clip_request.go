package video

import (
	"fmt"
	"path/filepath"
)

// DefaultExtension is the container used for downloads and clips
const DefaultExtension = "mp4"

// ClipRequest represents a request to cut one talk out of a room recording
type ClipRequest struct {
	SourcePath string
	Start      Timestamp
	Duration   int // whole seconds
	OutputPath string
}

// NewClipRequest builds a request for the [start, end) window of sourcePath
func NewClipRequest(sourcePath string, start, end Timestamp, outputPath string) (*ClipRequest, error) {
	req := &ClipRequest{
		SourcePath: sourcePath,
		Start:      start,
		Duration:   end.Sub(start),
		OutputPath: outputPath,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks that the clip request is valid
func (r *ClipRequest) Validate() error {
	if r.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if r.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if r.Duration <= 0 {
		return fmt.Errorf("clip duration %ds must be positive", r.Duration)
	}
	return nil
}

// ClipPath returns <dir>/<stem>.<ext>
func ClipPath(dir, stem, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return filepath.Join(dir, stem+"."+ext)
}
