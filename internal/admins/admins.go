// Package admins implements the fixed admin allow-list.
package admins

import (
	coreconfig "github.com/m3rciful/quizbot/core/config"
)

// AllowList is an immutable set of Telegram usernames. Matching is exact and
// case-sensitive; a leading '@' in configured entries is ignored.
type AllowList struct {
	names map[string]struct{}
}

// New builds an allow-list from configured usernames.
func New(usernames []string) *AllowList {
	norm := coreconfig.NormalizeUsernames(usernames)
	names := make(map[string]struct{}, len(norm))
	for _, n := range norm {
		names[n] = struct{}{}
	}
	return &AllowList{names: names}
}

// Contains reports whether username is allow-listed. Empty names never match.
func (a *AllowList) Contains(username string) bool {
	if a == nil || username == "" {
		return false
	}
	_, ok := a.names[username]
	return ok
}

// Len returns the number of allow-listed usernames.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.names)
}
