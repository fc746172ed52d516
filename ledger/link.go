package ledger

import "github.com/vyomadl/vyoma-dl/pkg/enums/linktype"

// Link is the persisted state of one resource URL.
type Link struct {
	URL      string            `json:"url"`
	Type     linktype.LinkType `json:"type"`
	Path     string            `json:"path"`
	Date     string            `json:"date"`
	Complete bool              `json:"complete"`
}

func newLink(url string, t linktype.LinkType) Link {
	return Link{URL: url, Type: t}
}

func (l Link) demoted() Link {
	l.Path = ""
	l.Date = ""
	l.Complete = false
	return l
}
