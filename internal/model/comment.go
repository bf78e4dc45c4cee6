package model

// Comment is one migrated comment in the bundle's wire format. The first
// comment of every source issue becomes the issue body and is never emitted
// here; see the convert package.
type Comment struct {
	ID        int     `json:"id"`
	IssueID   int     `json:"issue"`
	User      *string `json:"user"`
	Content   string  `json:"content"`
	CreatedOn *string `json:"created_on"`
	UpdatedOn *string `json:"updated_on"`
}

// Attachment links a materialized file back to its issue and uploader.
// Path is the bundle-relative location of the stored file, always under
// the attachments/ directory.
type Attachment struct {
	Filename string  `json:"filename"`
	IssueID  int     `json:"issue"`
	Path     string  `json:"path"`
	User     *string `json:"user"`
}
