package search

import (
	"net/url"
	"regexp"
	"strings"
)

const videoIDLength = 11

var (
	videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	// fallbackRE handles links that net/url refuses to parse.
	fallbackRE = regexp.MustCompile(`(?:[?&]v=|/)([A-Za-z0-9_-]{11})(?:$|[?&#/])`)
)

// ExtractID returns the 11-character video token of a watch link, taken from the
// v= query parameter or the trailing path segment. It returns "" when there is none.
func ExtractID(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	u, err := url.Parse(link)
	if err != nil {
		if m := fallbackRE.FindStringSubmatch(link); m != nil {
			return m[1]
		}
		return ""
	}

	if v := u.Query().Get("v"); videoIDRE.MatchString(v) {
		return v
	}

	path := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 && len(path)-i-1 == videoIDLength {
		if seg := path[i+1:]; videoIDRE.MatchString(seg) {
			return seg
		}
	}
	return ""
}
