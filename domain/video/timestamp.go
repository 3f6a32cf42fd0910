package video

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UnknownTime is the placeholder the schedule uses for a time nobody filled in
const UnknownTime = "???"

// Timestamp represents a time of day (or an offset into a recording) with second resolution
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

// colonRegex matches H:MM:SS and HH:MM:SS
var colonRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`)

// scheduleRegex matches the schedule sheet format, e.g. 10h20m00s
var scheduleRegex = regexp.MustCompile(`^(\d{1,2})h(\d{2})m(\d{2})s$`)

// ParseTimestamp parses a timestamp in either 10h20m00s or HH:MM:SS format
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == UnknownTime {
		return Timestamp{}, fmt.Errorf("timestamp is unknown (%q)", s)
	}

	matches := colonRegex.FindStringSubmatch(s)
	if matches == nil {
		matches = scheduleRegex.FindStringSubmatch(s)
	}
	if matches == nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp format %q: expected HH:MM:SS or 10h20m00s", s)
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	if minutes > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: minutes must be 0-59", s)
	}
	if seconds > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: seconds must be 0-59", s)
	}

	return Timestamp{
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
	}, nil
}

// String returns the timestamp in HH:MM:SS format
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// Offset returns the timestamp in H:MM:SS format, as passed to ffmpeg -ss
func (t Timestamp) Offset() string {
	return fmt.Sprintf("%d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as total seconds
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// Sub returns t - other in seconds
func (t Timestamp) Sub(other Timestamp) int {
	return t.TotalSeconds() - other.TotalSeconds()
}

// Before returns true if t is before other
func (t Timestamp) Before(other Timestamp) bool {
	return t.TotalSeconds() < other.TotalSeconds()
}
