// Package models defines server-side data models persisted in the database
// and the views returned to callers.
package models

import "time"

// FileType tags what a file holds and therefore where its payload lives.
type FileType string

const (
	FileTypeDocument FileType = "document"
	FileTypePDF      FileType = "pdf"
	FileTypeImage    FileType = "image"
)

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeDocument, FileTypePDF, FileTypeImage:
		return true
	}
	return false
}

// IsBinary reports whether files of this type keep their payload in the byte store.
func (t FileType) IsBinary() bool {
	return t == FileTypePDF || t == FileTypeImage
}

// File is a catalogued file owned by exactly one identity.
type File struct {
	ID   string
	Name string
	Type FileType
	// FolderID is a weak reference; it is never validated on write and may
	// dangle after the folder is deleted.
	FolderID   *string
	OwnerID    string
	Content    Content
	IsFavorite bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BlobLocation returns the byte-store key of a binary file, or "" when the
// file is a document or its blob reference is missing.
func (f *File) BlobLocation() string {
	if b, ok := f.Content.(Blob); ok {
		return b.Location
	}
	return ""
}
