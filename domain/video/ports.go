package video

import "context"

// Downloader defines the interface for fetching a room recording
// This is a port that can be implemented by different infrastructure adapters
type Downloader interface {
	// Download blocks until the recording is written to req.OutputPath
	Download(ctx context.Context, req *DownloadRequest) error
}

// Clipper defines the interface for cutting a clip out of a recording
type Clipper interface {
	// Clip stream-copies the requested window into req.OutputPath
	Clip(ctx context.Context, req *ClipRequest) error
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}
