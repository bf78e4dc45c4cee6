package mapping

import (
	"strings"
	"testing"

	"github.com/siftertools/sift2bb/internal/model"
	"github.com/siftertools/sift2bb/internal/sifter"
)

func testTables() *Tables {
	return NewTables(
		map[int]string{59211: "grdscrc", 46868: "jdkoeck"},
		DefaultPriorities(),
		DefaultStatuses(),
	)
}

func TestStatusCollapse(t *testing.T) {
	tables := testTables()

	tests := []struct {
		code int
		want model.Status
	}{
		{1, model.StatusOpen},
		{2, model.StatusOpen},
		{3, model.StatusResolved},
		{4, model.StatusClosed},
	}

	for _, tt := range tests {
		got, err := tables.Status(tt.code)
		if err != nil {
			t.Errorf("Status(%d) unexpected error: %v", tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Status(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestUnknownStatusCodeIsError(t *testing.T) {
	if _, err := testTables().Status(9); err == nil {
		t.Error("Status(9) expected error, got nil")
	}
}

func TestPriorityTable(t *testing.T) {
	tables := testTables()

	tests := []struct {
		code int
		want model.Priority
	}{
		{1, model.PriorityBlocker},
		{2, model.PriorityCritical},
		{3, model.PriorityMajor},
		{4, model.PriorityMinor},
		{5, model.PriorityTrivial},
	}

	for _, tt := range tests {
		got, err := tables.Priority(tt.code)
		if err != nil {
			t.Errorf("Priority(%d) unexpected error: %v", tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Priority(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}

	if _, err := tables.Priority(6); err == nil {
		t.Error("Priority(6) expected error, got nil")
	}
}

func TestMemberResolvesToAbsentNotError(t *testing.T) {
	tables := testTables()

	if h, ok := tables.Member(59211); !ok || h != "grdscrc" {
		t.Errorf("Member(59211) = %q, %v; want grdscrc, true", h, ok)
	}
	if _, ok := tables.Member(99999); ok {
		t.Error("Member(99999) ok = true, want false")
	}
}

const lookupExport = `<project>
  <milestones type="array">
    <milestone><id type="integer">3</id><name>Beta</name></milestone>
    <milestone><id type="integer">4</id><name>Launch</name></milestone>
  </milestones>
  <categories type="array">
    <category><id type="integer">8</id><name>Feature</name></category>
    <category><id type="integer">7</id><name>BUG</name></category>
    <category><id type="integer">9</id><name>Chore</name></category>
  </categories>
</project>`

func buildTestLookups(t *testing.T, xml string) *Lookups {
	t.Helper()
	doc, err := sifter.Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return BuildLookups(doc)
}

func TestBuildLookups(t *testing.T) {
	l := buildTestLookups(t, lookupExport)

	if name, ok := l.Milestone(3); !ok || name != "Beta" {
		t.Errorf("Milestone(3) = %q, %v; want Beta, true", name, ok)
	}
	if _, ok := l.Milestone(99); ok {
		t.Error("Milestone(99) ok = true, want false")
	}

	// Case-insensitive bug discovery.
	bugID, found := l.BugCategory()
	if !found || bugID != 7 {
		t.Errorf("BugCategory() = %d, %v; want 7, true", bugID, found)
	}

	// The bug category never resolves as a component and never appears in
	// the side table.
	if _, ok := l.Component(7); ok {
		t.Error("Component(7) resolved the bug category")
	}
	components := l.ComponentTable()
	if len(components) != 2 {
		t.Fatalf("ComponentTable() has %d entries, want 2", len(components))
	}
	if components[0].Name != "Feature" || components[1].Name != "Chore" {
		t.Errorf("ComponentTable() = %v, want [Feature Chore]", components)
	}

	milestones := l.MilestoneTable()
	if len(milestones) != 2 || milestones[0].Name != "Beta" || milestones[1].Name != "Launch" {
		t.Errorf("MilestoneTable() = %v, want [Beta Launch]", milestones)
	}
}

func TestBuildLookupsWithoutBugCategory(t *testing.T) {
	l := buildTestLookups(t, `<project>
  <categories type="array">
    <category><id type="integer">8</id><name>Feature</name></category>
  </categories>
</project>`)

	if _, found := l.BugCategory(); found {
		t.Error("BugCategory() found = true, want false")
	}
	if name, ok := l.Component(8); !ok || name != "Feature" {
		t.Errorf("Component(8) = %q, %v; want Feature, true", name, ok)
	}
}
