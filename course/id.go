package course

import (
	"fmt"
	"regexp"
	"strings"
)

func coursePattern(host string) *regexp.Regexp {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return regexp.MustCompile(`^(?:https?://)?(?:www\.)?` + regexp.QuoteMeta(host) + `/course/([^/]*)`)
}

// ExtractID returns the course id from a bare id or a course URL on host.
// Anything after '#' or '?' is dropped.
func ExtractID(idOrURL, host string) (string, error) {
	s := strings.TrimSpace(idOrURL)
	id := s
	if strings.Contains(s, "/") {
		m := coursePattern(host).FindStringSubmatch(s)
		if m == nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, idOrURL)
		}
		id = m[1]
	}
	id, _, _ = strings.Cut(id, "#")
	id, _, _ = strings.Cut(id, "?")
	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, idOrURL)
	}
	return id, nil
}
