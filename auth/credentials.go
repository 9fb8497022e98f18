// Package auth implements credential lookup and the cookie jar / login
// bootstrap of component design §4.10.
package auth

import "github.com/linkchecker-go/linkcheck/urlutil"

// Credential is a (pattern, user, password) entry. The ordered list is a
// Pattern Set like intern/extern classification (data model §3).
type Credential struct {
	Pattern  urlutil.Pattern
	User     string
	Password string
}

// Store holds the ordered authentication list.
type Store struct {
	entries []Credential
}

// NewStore builds a Store from compiled credential entries, in
// configuration order (first match wins).
func NewStore(entries []Credential) *Store {
	return &Store{entries: entries}
}

// CredentialsFor implements credentials_for(url): the first pattern match
// in the ordered authentication list yields (user, password), else
// ("", "", false).
func (s *Store) CredentialsFor(canonicalURL string) (user, password string, ok bool) {
	if s == nil {
		return "", "", false
	}
	for _, c := range s.entries {
		if c.Pattern.Matches(canonicalURL) {
			return c.User, c.Password, true
		}
	}
	return "", "", false
}
