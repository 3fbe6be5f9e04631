package helpers

import tele "gopkg.in/telebot.v4"

// SenderID returns the Telegram ID of the update author or 0 when unknown.
func SenderID(c tele.Context) int64 {
	if c == nil {
		return 0
	}
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// SenderUsername returns the author's @handle without the '@'.
// The second value is false when the user has no public username.
func SenderUsername(c tele.Context) (string, bool) {
	if c == nil {
		return "", false
	}
	u := c.Sender()
	if u == nil || u.Username == "" {
		return "", false
	}
	return u.Username, true
}
