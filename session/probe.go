package session

import "bytes"

// AuthProbe decides from a fetched page whether the session is signed in.
type AuthProbe interface {
	Authenticated(page []byte) bool
}

// MarkerProbe looks for literal markers in the page body. A page counts as
// signed in when SignedIn is present and SignedOut is absent.
type MarkerProbe struct {
	SignedIn  string
	SignedOut string
}

// DefaultProbe matches the account links rendered in the site header.
var DefaultProbe = MarkerProbe{SignedIn: "Sign Out", SignedOut: "Sign In"}

func (p MarkerProbe) Authenticated(page []byte) bool {
	if p.SignedIn == "" || !bytes.Contains(page, []byte(p.SignedIn)) {
		return false
	}
	return p.SignedOut == "" || !bytes.Contains(page, []byte(p.SignedOut))
}
