package notification

import (
	"context"

	"conference-clipper/application/pipeline"
	"conference-clipper/domain/notification"
)

// Service mails run summaries
type Service struct {
	sender     notification.EmailSender
	product    string
	year       int
	recipients []notification.Recipient
}

// NewService creates a new notification service
func NewService(sender notification.EmailSender, product string, year int, recipients []notification.Recipient) *Service {
	return &Service{
		sender:     sender,
		product:    product,
		year:       year,
		recipients: recipients,
	}
}

// SendSummary mails the outcome of a run to every configured recipient
func (s *Service) SendSummary(ctx context.Context, runID string, summary *pipeline.Summary) error {
	req := &notification.SummaryRequest{
		To:      s.recipients,
		Product: s.product,
		Year:    s.year,
		RunID:   runID,
		Rooms:   Reports(summary),
	}

	return s.sender.Send(ctx, req)
}

// Reports converts pipeline results into the per-room lines of the email
func Reports(summary *pipeline.Summary) []notification.RoomReport {
	reports := make([]notification.RoomReport, 0, len(summary.Rooms))
	for _, room := range summary.Rooms {
		report := notification.RoomReport{
			Room:     room.Room,
			State:    string(room.State),
			Uploaded: room.Uploaded(),
			Total:    len(room.Talks),
		}
		if room.Err != nil {
			report.Error = room.Err.Error()
		}
		for _, t := range room.Talks {
			if t.Upload == nil || t.Upload.URL == "" {
				continue
			}
			report.Videos = append(report.Videos, notification.VideoLink{Title: t.Upload.Title, URL: t.Upload.URL})
		}
		reports = append(reports, report)
	}
	return reports
}
