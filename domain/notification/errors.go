package notification

import "errors"

var (
	// ErrNoRecipients is returned when no To recipients are provided
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrInvalidRecipient is returned when a recipient has no email address
	ErrInvalidRecipient = errors.New("recipient must have an email address")

	// ErrNoProduct is returned when the conference name is missing
	ErrNoProduct = errors.New("conference name is required")

	// ErrNoRooms is returned when the summary has no room to report
	ErrNoRooms = errors.New("at least one room is required")

	// ErrSendFailed is returned when the email fails to send
	ErrSendFailed = errors.New("failed to send email")
)
