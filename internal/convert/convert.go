// Package convert transforms source issue nodes into target bundle
// records. The rules with teeth live here: reference resolution, bug/task
// classification, the first-comment-becomes-body split, watcher
// deduplication, and collision-free attachment naming.
package convert

import (
	"fmt"

	"github.com/siftertools/sift2bb/internal/mapping"
	"github.com/siftertools/sift2bb/internal/model"
	"github.com/siftertools/sift2bb/internal/sifter"
)

// Converter turns source issue nodes into bundle records using the run's
// reference tables and export-derived lookups.
type Converter struct {
	tables  *mapping.Tables
	lookups *mapping.Lookups

	// Derived attachment filenames, keyed by node. A name is derived at
	// most once per attachment; regenerating the random token on a second
	// read would break the uniqueness guarantee.
	filenames map[*sifter.Node]string
}

// New returns a Converter over the given tables and lookups.
func New(tables *mapping.Tables, lookups *mapping.Lookups) *Converter {
	return &Converter{
		tables:    tables,
		lookups:   lookups,
		filenames: make(map[*sifter.Node]string),
	}
}

// textPtr reads a text field from n into a nullable string. A nil node
// stands in for a nonexistent first comment and yields absent for every
// field.
func textPtr(n *sifter.Node, name string) *string {
	if n == nil {
		return nil
	}
	s, ok := n.Text(name)
	if !ok {
		return nil
	}
	return &s
}

// memberPtr resolves a member-id field through the roster into a nullable
// handle. Absent or unmapped ids degrade to nil.
func (c *Converter) memberPtr(n *sifter.Node, field string) *string {
	if n == nil {
		return nil
	}
	id, ok := n.Int(field)
	if !ok {
		return nil
	}
	handle, ok := c.tables.Member(id)
	if !ok {
		return nil
	}
	return &handle
}

// Issue converts one source issue node into a target issue record.
//
// The first comment under the issue is the issue description, not a
// comment: its body and updated-at become content and content_updated_on.
// An issue with no comments gets empty content. The watcher list covers
// every comment on the issue, first included, deduplicated by commenter id
// in order of first appearance; commenters missing from the roster are
// dropped rather than rendered as null entries.
func (c *Converter) Issue(n *sifter.Node) (*model.Issue, error) {
	id, ok := n.Int("id")
	if !ok {
		return nil, fmt.Errorf("issue is missing an id")
	}

	priorityCode, ok := n.Int("priority-id")
	if !ok {
		return nil, fmt.Errorf("issue %d: missing priority", id)
	}
	priority, err := c.tables.Priority(priorityCode)
	if err != nil {
		return nil, fmt.Errorf("issue %d: %w", id, err)
	}

	statusCode, ok := n.Int("status-id")
	if !ok {
		return nil, fmt.Errorf("issue %d: missing status", id)
	}
	status, err := c.tables.Status(statusCode)
	if err != nil {
		return nil, fmt.Errorf("issue %d: %w", id, err)
	}

	kind := model.KindTask
	var component *string
	if catID, ok := n.Int("category-id"); ok {
		if bugID, found := c.lookups.BugCategory(); found && catID == bugID {
			kind = model.KindBug
		}
		if name, ok := c.lookups.Component(catID); ok {
			component = &name
		}
	}

	var milestone *string
	if msID, ok := n.Int("milestone-id"); ok {
		if name, ok := c.lookups.Milestone(msID); ok {
			milestone = &name
		}
	}

	comments := n.Children("comment")
	var first *sifter.Node
	if len(comments) > 0 {
		first = comments[0]
	}

	var content string
	if body := textPtr(first, "body"); body != nil {
		content = *body
	}

	title, _ := n.Text("subject")

	return &model.Issue{
		ID:               id,
		Title:            title,
		Kind:             kind,
		Status:           status,
		Priority:         priority,
		Assignee:         c.memberPtr(n, "assignee-id"),
		Reporter:         c.memberPtr(n, "opener-id"),
		Component:        component,
		Milestone:        milestone,
		Version:          nil,
		Content:          content,
		ContentUpdatedOn: textPtr(first, "updated-at"),
		CreatedOn:        textPtr(n, "created-at"),
		EditedOn:         textPtr(n, "updated-at"),
		UpdatedOn:        textPtr(n, "updated-at"),
		Watchers:         c.watchers(comments),
		Voters:           []string{},
	}, nil
}

// watchers collects the distinct resolved commenter handles across all
// comments, in order of first appearance.
func (c *Converter) watchers(comments []*sifter.Node) []string {
	handles := []string{}
	seen := make(map[int]bool)
	for _, cn := range comments {
		id, ok := cn.Int("commenter-id")
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if handle, ok := c.tables.Member(id); ok {
			handles = append(handles, handle)
		}
	}
	return handles
}

// Comments converts the comments of one issue, skipping the first (it
// became the issue body) and any comment without a body.
func (c *Converter) Comments(n *sifter.Node, issueID int) []*model.Comment {
	var out []*model.Comment
	comments := n.Children("comment")
	for i, cn := range comments {
		if i == 0 {
			continue
		}
		body, ok := cn.Text("body")
		if !ok {
			continue
		}
		id, ok := cn.Int("id")
		if !ok {
			continue
		}
		out = append(out, &model.Comment{
			ID:        id,
			IssueID:   issueID,
			User:      c.memberPtr(cn, "commenter-id"),
			Content:   body,
			CreatedOn: textPtr(cn, "created-at"),
			UpdatedOn: textPtr(cn, "updated-at"),
		})
	}
	return out
}
