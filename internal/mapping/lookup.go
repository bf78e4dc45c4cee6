package mapping

import (
	"strings"

	"github.com/siftertools/sift2bb/internal/model"
	"github.com/siftertools/sift2bb/internal/sifter"
)

// Lookups are the export-derived id tables built in the first pass over
// the document: milestone id to name, category id to component name, and
// the distinguished bug category.
type Lookups struct {
	milestones map[int]string
	components map[int]string

	bugID    int
	bugFound bool

	milestoneTable []model.Milestone
	componentTable []model.Component
}

// BuildLookups runs the first pass over the document. Every category whose
// name case-insensitively equals "bug" sets the bug-category id and is
// excluded from the component table; all other categories become
// components. If no category matches, every issue will classify as a task.
func BuildLookups(doc *sifter.Document) *Lookups {
	l := &Lookups{
		milestones:     make(map[int]string),
		components:     make(map[int]string),
		milestoneTable: []model.Milestone{},
		componentTable: []model.Component{},
	}

	for _, m := range doc.Milestones() {
		id, idOK := m.Int("id")
		name, nameOK := m.Text("name")
		if !idOK || !nameOK {
			continue
		}
		l.milestones[id] = name
		l.milestoneTable = append(l.milestoneTable, model.Milestone{Name: name})
	}

	for _, c := range doc.Categories() {
		id, idOK := c.Int("id")
		name, nameOK := c.Text("name")
		if !idOK || !nameOK {
			continue
		}
		if strings.EqualFold(name, "bug") {
			l.bugID = id
			l.bugFound = true
			continue
		}
		l.components[id] = name
		l.componentTable = append(l.componentTable, model.Component{Name: name})
	}

	return l
}

// Milestone resolves a milestone id to its name.
func (l *Lookups) Milestone(id int) (string, bool) {
	name, ok := l.milestones[id]
	return name, ok
}

// Component resolves a category id to its component name. The bug category
// id never resolves here.
func (l *Lookups) Component(id int) (string, bool) {
	name, ok := l.components[id]
	return name, ok
}

// BugCategory returns the discovered bug-category id, if any.
func (l *Lookups) BugCategory() (int, bool) {
	return l.bugID, l.bugFound
}

// MilestoneTable returns the milestone side table in source order.
func (l *Lookups) MilestoneTable() []model.Milestone {
	return l.milestoneTable
}

// ComponentTable returns the component side table in source order.
func (l *Lookups) ComponentTable() []model.Component {
	return l.componentTable
}
