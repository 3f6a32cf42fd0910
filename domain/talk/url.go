package talk

import (
	"net/url"
	"regexp"
	"strings"
)

// timeParamRegex is the fallback for URLs net/url refuses to parse
var timeParamRegex = regexp.MustCompile(`[&?]t=[0-9hms]+`)

// CleanURL removes the timestamp a shared link carries (t=1h02m03s, #t=...),
// so that every talk of a room points at the same recording
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return timeParamRegex.ReplaceAllString(raw, "")
	}

	q := u.Query()
	if q.Has("t") {
		q.Del("t")
		u.RawQuery = q.Encode()
	}
	if strings.HasPrefix(u.Fragment, "t=") {
		u.Fragment = ""
	}

	return u.String()
}
