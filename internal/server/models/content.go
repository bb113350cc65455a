package models

// Content is where a file's payload lives: inline in the metadata record
// (Document) or in the byte store (Blob). Exactly one variant is set for
// every File, chosen by its FileType at creation.
type Content interface {
	isContent()
}

// Document is text stored inline in the file record.
type Document struct {
	Text string
}

// Blob references a payload in the byte store by its key. An empty
// Location means the payload reference is missing.
type Blob struct {
	Location string
}

func (Document) isContent() {}
func (Blob) isContent()     {}

// ContentFromColumns rebuilds the Content variant from the two nullable
// storage columns. The file type decides which column is authoritative.
func ContentFromColumns(t FileType, inline, location *string) Content {
	if t == FileTypeDocument {
		if inline == nil {
			return Document{}
		}
		return Document{Text: *inline}
	}
	if location == nil {
		return Blob{}
	}
	return Blob{Location: *location}
}

// ContentColumns is the inverse of ContentFromColumns: it returns the
// inline text and blob location to persist, one of which is always nil.
func ContentColumns(c Content) (inline *string, location *string) {
	switch v := c.(type) {
	case Document:
		text := v.Text
		return &text, nil
	case Blob:
		if v.Location == "" {
			return nil, nil
		}
		loc := v.Location
		return nil, &loc
	default:
		return nil, nil
	}
}
