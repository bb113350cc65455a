package models

import "time"

// SortOrder values accepted by listings.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListQuery carries normalised sorting and paging for any listing.
// SortBy is an external field name (e.g. "createdAt"); repositories map it
// to a column through an allow-list.
type ListQuery struct {
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Offset is the number of rows to skip for the requested page.
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// FileFilter narrows a file listing. Nil fields are not applied.
type FileFilter struct {
	FolderID      *string
	IsFavorite    *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
