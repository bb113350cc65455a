package models

import "time"

// ShareLink grants anyone holding Token read access to one file until
// ExpiresAt. Expiry is evaluated on read; expired links are never rewritten.
type ShareLink struct {
	ID        string
	FileID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Active reports whether the link is still usable at now.
func (l *ShareLink) Active(now time.Time) bool {
	return now.Before(l.ExpiresAt)
}

// SharedFile is a share link together with the file it points at.
type SharedFile struct {
	Link ShareLink
	File File
}
