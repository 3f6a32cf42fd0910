package notification

import (
	"context"
)

// Recipient represents an email recipient with name and address
type Recipient struct {
	Name    string
	Address string
}

// VideoLink is one uploaded clip
type VideoLink struct {
	Title string
	URL   string
}

// RoomReport summarizes what happened in one room
type RoomReport struct {
	Room     string
	State    string
	Uploaded int
	Total    int
	Videos   []VideoLink
	Error    string // empty when the room succeeded
}

// SummaryRequest contains everything needed to mail a run summary
type SummaryRequest struct {
	To      []Recipient
	Product string // e.g. "BDX I/O"
	Year    int
	RunID   string
	Rooms   []RoomReport
}

// Validate checks that the summary request has all required fields
func (r *SummaryRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range r.To {
		if to.Address == "" {
			return ErrInvalidRecipient
		}
	}
	if r.Product == "" {
		return ErrNoProduct
	}
	if len(r.Rooms) == 0 {
		return ErrNoRooms
	}
	return nil
}

// Failed returns the number of rooms that reported an error
func (r *SummaryRequest) Failed() int {
	n := 0
	for _, room := range r.Rooms {
		if room.Error != "" {
			n++
		}
	}
	return n
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(ctx context.Context, req *SummaryRequest) error
}
