package services

import "github.com/dmitrijs2005/gophdrive/internal/server/models"

// Access decides which retrieval endpoint a view's contentUrl points at.
type Access struct {
	shareToken string
}

// OwnerAccess points content URLs at the authenticated owner endpoint.
func OwnerAccess() Access { return Access{} }

// ShareAccess points content URLs at the public endpoint of token.
func ShareAccess(token string) Access { return Access{shareToken: token} }

func (a Access) contentURL(fileID string) string {
	if a.shareToken != "" {
		return "/files/share/" + a.shareToken + "/content"
	}
	return "/files/" + fileID + "/content"
}

// ResolveContent builds the external view of f. Documents carry their text
// and no URL; blobs carry a URL and no text, or neither when the blob
// reference is missing. Every file response is produced here.
func ResolveContent(f *models.File, a Access) models.FileView {
	v := models.FileView{
		ID:         f.ID,
		Name:       f.Name,
		Type:       f.Type,
		FolderID:   f.FolderID,
		OwnerID:    f.OwnerID,
		IsFavorite: f.IsFavorite,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
	switch c := f.Content.(type) {
	case models.Document:
		text := c.Text
		v.Content = &text
	case models.Blob:
		if c.Location != "" {
			u := a.contentURL(f.ID)
			v.ContentURL = &u
		}
	}
	return v
}

func resolveAll(files []*models.File, a Access) []models.FileView {
	views := make([]models.FileView, 0, len(files))
	for _, f := range files {
		views = append(views, ResolveContent(f, a))
	}
	return views
}
