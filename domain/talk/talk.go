package talk

import (
	"conference-clipper/domain/video"
)

// Record is one raw row of the schedule, before parsing and validation
type Record struct {
	Room  string
	Title string
	Start string
	End   string
	URL   string
	Line  int // position in the source file, for error reports
}

// Talk is a validated schedule entry. It is built once by NewTalk and never mutated.
type Talk struct {
	Room  string
	Title string
	Start video.Timestamp
	End   video.Timestamp
	URL   string // source recording, timestamp link parameters removed
}

// Duration returns end - start in whole seconds. It may be zero or negative
// for talks built outside NewTalk; callers cutting clips must check it.
func (t Talk) Duration() int {
	return t.End.Sub(t.Start)
}

// Conference is a talk whose clip has been (or would have been) extracted
type Conference struct {
	Talk
	File string
}
