package convert

import (
	"github.com/siftertools/sift2bb/internal/model"
	"github.com/siftertools/sift2bb/internal/sifter"
)

// Bundle runs the conversion pass over every issue in the document, in
// document order, and returns the assembled bundle plus the ordered list
// of attachment downloads still to be materialized. Attachment records
// stay out of the bundle until their payloads exist; the caller appends
// the successful ones, preserving this list's order.
func (c *Converter) Bundle(doc *sifter.Document) (*model.Bundle, []*Download, error) {
	bundle := model.NewBundle()
	bundle.Components = c.lookups.ComponentTable()
	bundle.Milestones = c.lookups.MilestoneTable()

	var downloads []*Download
	for _, n := range doc.Issues() {
		issue, err := c.Issue(n)
		if err != nil {
			return nil, nil, err
		}
		bundle.Issues = append(bundle.Issues, issue)
		bundle.Comments = append(bundle.Comments, c.Comments(n, issue.ID)...)

		dls, err := c.Attachments(n, issue.ID)
		if err != nil {
			return nil, nil, err
		}
		downloads = append(downloads, dls...)
	}

	return bundle, downloads, nil
}
