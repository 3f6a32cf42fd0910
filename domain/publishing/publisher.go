package publishing

import "context"

// VideoPublisher defines the interface for the video hosting service
// This is a port that can be implemented by different infrastructure adapters
type VideoPublisher interface {
	// Publish sends the metadata and reads meta.Media to EOF. It returns once
	// the service acknowledged the upload, or with the service error.
	Publish(ctx context.Context, meta *UploadMetadata) (*PublishedVideo, error)
}
