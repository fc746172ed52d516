package linktype

import (
	"fmt"
	"strings"
)

// LinkType is the kind of course resource an anchor points to.
// Its value doubles as the HTML class used on the course page.
type LinkType string

const (
	Document LinkType = "document"
	Audio    LinkType = "audio"
	Video    LinkType = "video"
)

func (t LinkType) String() string {
	return string(t)
}

// Title returns the capitalized display name.
func (t LinkType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

func (t LinkType) IsValid() bool {
	switch t {
	case Document, Audio, Video:
		return true
	}
	return false
}

// Downloadable reports whether files of this type are fetched to disk.
// Video links are only listed.
func (t LinkType) Downloadable() bool {
	return t == Document || t == Audio
}

// Values returns every link type in classification order.
func Values() []LinkType {
	return []LinkType{Document, Audio, Video}
}

// Downloadables returns the types processed by a sync, in processing order.
func Downloadables() []LinkType {
	return []LinkType{Document, Audio}
}

func Parse(s string) (LinkType, error) {
	t := LinkType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown link type %q", s)
	}
	return t, nil
}
