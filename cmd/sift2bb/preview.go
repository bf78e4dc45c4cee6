package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftertools/sift2bb/internal/convert"
	"github.com/siftertools/sift2bb/internal/mapping"
	"github.com/siftertools/sift2bb/internal/model"
	"github.com/siftertools/sift2bb/internal/output"
	"github.com/siftertools/sift2bb/internal/render"
	"github.com/siftertools/sift2bb/internal/sifter"
)

type previewSummary struct {
	Issues      int            `json:"issues"`
	Comments    int            `json:"comments"`
	Attachments int            `json:"attachments"`
	Bugs        int            `json:"bugs"`
	Tasks       int            `json:"tasks"`
	ByStatus    map[string]int `json:"by_status"`
	Components  []string       `json:"components"`
	Milestones  []string       `json:"milestones"`
	BugCategory bool           `json:"bug_category_found"`
	Unresolved  int            `json:"unresolved_members"`
}

var previewCmd = &cobra.Command{
	Use:   "preview <export.xml>",
	Short: "Inspect an export without migrating it",
	Long: `Parse a Sifter export, run the conversion in memory, and report what a
migration would produce. No attachments are downloaded and nothing is
written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		f, err := os.Open(args[0])
		if err != nil {
			return cmdErr(fmt.Errorf("opening export: %w", err), output.ErrNotFound)
		}
		doc, err := sifter.Parse(f)
		f.Close()
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		lookups := mapping.BuildLookups(doc)
		conv := convert.New(cfg.Tables(), lookups)
		bundle, downloads, err := conv.Bundle(doc)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		summary := summarize(bundle, lookups, len(downloads))

		var message string
		if !w.JSONMode {
			message, err = render.Markdown(previewMarkdown(args[0], summary))
			if err != nil {
				return cmdErr(fmt.Errorf("rendering preview: %w", err), output.ErrGeneral)
			}
		}
		w.Success(summary, message)
		return nil
	},
}

func summarize(bundle *model.Bundle, lookups *mapping.Lookups, attachments int) previewSummary {
	s := previewSummary{
		Issues:      len(bundle.Issues),
		Comments:    len(bundle.Comments),
		Attachments: attachments,
		ByStatus:    map[string]int{},
		Components:  []string{},
		Milestones:  []string{},
	}

	for _, issue := range bundle.Issues {
		if issue.Kind == model.KindBug {
			s.Bugs++
		} else {
			s.Tasks++
		}
		s.ByStatus[string(issue.Status)]++
		if issue.Reporter == nil {
			s.Unresolved++
		}
	}
	for _, c := range bundle.Components {
		s.Components = append(s.Components, c.Name)
	}
	for _, m := range bundle.Milestones {
		s.Milestones = append(s.Milestones, m.Name)
	}
	_, s.BugCategory = lookups.BugCategory()
	return s
}

func previewMarkdown(path string, s previewSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Export preview: %s\n\n", path)
	fmt.Fprintf(&b, "- **Issues:** %d (%d bugs, %d tasks)\n", s.Issues, s.Bugs, s.Tasks)
	fmt.Fprintf(&b, "- **Comments:** %d\n", s.Comments)
	fmt.Fprintf(&b, "- **Attachments:** %d\n", s.Attachments)
	for _, status := range []model.Status{model.StatusOpen, model.StatusResolved, model.StatusClosed} {
		if n := s.ByStatus[string(status)]; n > 0 {
			fmt.Fprintf(&b, "- **%s:** %d\n", status, n)
		}
	}
	b.WriteString("\n")

	if len(s.Components) > 0 {
		fmt.Fprintf(&b, "**Components:** %s\n\n", strings.Join(s.Components, ", "))
	}
	if len(s.Milestones) > 0 {
		fmt.Fprintf(&b, "**Milestones:** %s\n\n", strings.Join(s.Milestones, ", "))
	}
	if !s.BugCategory {
		b.WriteString("No category named \"bug\" found: every issue will import as a task.\n\n")
	}
	if s.Unresolved > 0 {
		fmt.Fprintf(&b, "%d issue(s) have a reporter missing from the roster.\n", s.Unresolved)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
