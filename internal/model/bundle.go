package model

// Component is a side-table entry sourced 1:1 from non-bug categories.
type Component struct {
	Name string `json:"name"`
}

// Milestone is a side-table entry sourced 1:1 from source milestones.
type Milestone struct {
	Name string `json:"name"`
}

// Version is a side-table entry. The source tracker has no versions; the
// collection exists because the import format requires it.
type Version struct {
	Name string `json:"name"`
}

// Log is a change-log entry. The import format reserves the collection but
// the source export carries no log data, so it is always empty.
type Log struct{}

// Meta declares importer defaults for the bundle.
type Meta struct {
	DefaultKind Kind `json:"default_kind"`
}

// Bundle is the root aggregate of one migration run: everything that gets
// serialized into db-1.0.json. All collections are kept in source document
// order and initialized non-nil so empty ones serialize as [] rather than
// null.
type Bundle struct {
	Issues      []*Issue      `json:"issues"`
	Comments    []*Comment    `json:"comments"`
	Attachments []*Attachment `json:"attachments"`
	Logs        []Log         `json:"logs"`
	Meta        Meta          `json:"meta"`
	Components  []Component   `json:"components"`
	Milestones  []Milestone   `json:"milestones"`
	Versions    []Version     `json:"versions"`
}

// NewBundle returns an empty bundle with all collections allocated and the
// meta record populated.
func NewBundle() *Bundle {
	return &Bundle{
		Issues:      []*Issue{},
		Comments:    []*Comment{},
		Attachments: []*Attachment{},
		Logs:        []Log{},
		Meta:        Meta{DefaultKind: DefaultKind},
		Components:  []Component{},
		Milestones:  []Milestone{},
		Versions:    []Version{},
	}
}
