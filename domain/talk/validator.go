package talk

import (
	"fmt"
	"strings"

	"conference-clipper/domain/video"
)

// Validator turns raw records into talks. Rooms is an optional allowlist.
type Validator struct {
	Rooms []string
}

// NewValidator creates a validator with the given room allowlist (nil or empty allows every room)
func NewValidator(rooms []string) *Validator {
	return &Validator{Rooms: rooms}
}

// NewTalk validates a record and builds the talk from it
func (v *Validator) NewTalk(r Record) (Talk, error) {
	room := strings.TrimSpace(r.Room)
	title := strings.TrimSpace(r.Title)
	rawURL := strings.TrimSpace(r.URL)

	reject := func(field string, err error) (Talk, error) {
		return Talk{}, &ValidationError{Title: title, Field: field, Err: err}
	}

	if room == "" {
		return reject("room", ErrMissingField)
	}
	if title == "" {
		return reject("title", ErrMissingField)
	}

	start, err := parseTime(r.Start)
	if err != nil {
		return reject("start", err)
	}
	end, err := parseTime(r.End)
	if err != nil {
		return reject("end", err)
	}
	if end.Before(start) {
		return reject("end", fmt.Errorf("%w: %s < %s", ErrEndBeforeStart, end, start))
	}

	if rawURL == "" {
		return reject("url", ErrMissingField)
	}
	if !v.allows(room) {
		return reject("room", fmt.Errorf("%w: %q", ErrRoomNotAllowed, room))
	}

	return Talk{
		Room:  room,
		Title: title,
		Start: start,
		End:   end,
		URL:   CleanURL(rawURL),
	}, nil
}

func (v *Validator) allows(room string) bool {
	if len(v.Rooms) == 0 {
		return true
	}
	for _, allowed := range v.Rooms {
		if strings.EqualFold(strings.TrimSpace(allowed), room) {
			return true
		}
	}
	return false
}

func parseTime(s string) (video.Timestamp, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return video.Timestamp{}, ErrMissingField
	case video.UnknownTime:
		return video.Timestamp{}, ErrUnknownTime
	}

	ts, err := video.ParseTimestamp(s)
	if err != nil {
		return video.Timestamp{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	return ts, nil
}
