package models

import "time"

// FileView is the external representation of a File. Exactly one of
// Content and ContentURL is non-nil for a well-formed file.
type FileView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       FileType  `json:"type"`
	FolderID   *string   `json:"folderId"`
	OwnerID    string    `json:"ownerId"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Content    *string   `json:"content"`
	ContentURL *string   `json:"contentUrl"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// NewPagination computes TotalPages as ceil(total/limit).
func NewPagination(total int64, page, limit int) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// Page is a listing response.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ShareResult is returned when a share link is issued.
type ShareResult struct {
	ShareURL  string    `json:"shareUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}
