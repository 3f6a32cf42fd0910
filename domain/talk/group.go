package talk

import (
	"fmt"
	"strings"
)

// RoomGroup is the ordered list of talks recorded in one room
type RoomGroup struct {
	Room  string
	Talks []Talk
	dir   string
	stems []string
}

// GroupByRoom groups talks by room. Groups come out in first-seen order and
// talks keep their schedule order within a group.
func GroupByRoom(talks []Talk) []RoomGroup {
	index := make(map[string]int)
	var groups []RoomGroup

	for _, t := range talks {
		i, ok := index[t.Room]
		if !ok {
			i = len(groups)
			index[t.Room] = i
			groups = append(groups, RoomGroup{Room: t.Room})
		}
		groups[i].Talks = append(groups[i].Talks, t)
	}

	rooms := make([]string, len(groups))
	for i, g := range groups {
		rooms[i] = g.Room
	}
	dirs := uniqueNames(rooms)

	for i := range groups {
		groups[i].dir = dirs[i]
		groups[i].stems = uniqueNames(titles(groups[i].Talks))
	}
	return groups
}

// SourceURL is the recording the room is cut from: the first talk's URL
func (g RoomGroup) SourceURL() string {
	if len(g.Talks) == 0 {
		return ""
	}
	return g.Talks[0].URL
}

// DirName returns the directory name of the room. Rooms whose names only
// differ by unsafe characters or case get " (2)", " (3)", ... in group order.
func (g RoomGroup) DirName() string {
	if g.dir != "" {
		return g.dir
	}
	return SanitizeTitle(g.Room)
}

// FileStem returns the clip file name (without extension) for the i-th talk
func (g RoomGroup) FileStem(i int) string {
	if i < len(g.stems) {
		return g.stems[i]
	}
	return SanitizeTitle(g.Talks[i].Title)
}

func titles(talks []Talk) []string {
	out := make([]string, len(talks))
	for i, t := range talks {
		out[i] = t.Title
	}
	return out
}

// uniqueNames sanitizes names and appends " (n)" to repeated ones, ignoring
// case so the result is safe on case-insensitive filesystems
func uniqueNames(names []string) []string {
	used := make(map[string]bool)
	unique := make([]string, len(names))

	for i, name := range names {
		base := SanitizeTitle(name)
		n := base
		for k := 2; used[strings.ToLower(n)]; k++ {
			n = fmt.Sprintf("%s (%d)", base, k)
		}
		used[strings.ToLower(n)] = true
		unique[i] = n
	}
	return unique
}
