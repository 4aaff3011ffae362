package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/session-scheduler/internal/conflict"
)

func newValidateCommand(a *app) *cobra.Command {
	var (
		schedulingOnly bool
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "validate <project-file>",
		Short: "Check a project's grid for conflicts",
		Long: `Run the full validation battery over a project and report every
finding, grouped by session. Warnings acknowledged in a session's note
are suppressed; errors never are.

Examples:
  # Full report
  scheduler validate event.yaml

  # Only findings that block scheduling
  scheduler validate --scheduling-only event.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProject(args[0])
			if err != nil {
				return err
			}
			svc := a.newEngine(nil)
			report, err := svc.Validate(p, schedulingOnly)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(report.Findings, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderFindings(cmd, report.Findings)
			if len(report.Changed) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "changed since last validation: %v\n", report.Changed)
			}
			if len(report.Findings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no findings")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&schedulingOnly, "scheduling-only", false, "only report findings that affect scheduling")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit findings as JSON")

	return cmd
}

// renderFindings prints findings grouped by severity, errors first.
func renderFindings(cmd *cobra.Command, findings []conflict.Finding) {
	ordered := make([]conflict.Finding, len(findings))
	copy(ordered, findings)
	rank := map[conflict.Severity]int{
		conflict.SeverityError:   0,
		conflict.SeverityWarning: 1,
		conflict.SeverityCheck:   2,
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if rank[ordered[i].Severity] != rank[ordered[j].Severity] {
			return rank[ordered[i].Severity] < rank[ordered[j].Severity]
		}
		return ordered[i].Session < ordered[j].Session
	})
	for _, finding := range ordered {
		fmt.Fprintln(cmd.OutOrStdout(), finding.String())
	}
}
