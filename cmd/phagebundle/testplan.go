package main

import (
	"github.com/spf13/cobra"

	"github.com/phagepick/decision-bundle/internal/testplan"
)

// #region testplan
func (a *app) testplanCmd() *cobra.Command {
	var (
		rankingPath, evidencePath, outPath string
		topN, width                        int
		pretty                             bool
	)
	cmd := &cobra.Command{
		Use:   "testplan",
		Short: "Render a Markdown wet-lab test plan from a decision bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := testplan.LoadRanking(rankingPath)
			if err != nil {
				return err
			}
			ev, err := testplan.LoadEvidence(evidencePath)
			if err != nil {
				return err
			}
			md, err := testplan.Write(outPath, rows, ev, topN, a.now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !pretty {
				printf(out, "Wrote %s\n", outPath)
				return nil
			}
			rendered, err := testplan.Pretty(md, width)
			if err != nil {
				return err
			}
			printf(out, "%s", rendered)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rankingPath, "ranking", "", "ranking CSV")
	f.StringVar(&evidencePath, "evidence", "", "evidence bundle JSON")
	f.StringVar(&outPath, "out", "", "Markdown output path")
	f.IntVar(&topN, "top-n", testplan.DefaultTopN, "number of ranked phages in the plan")
	f.BoolVar(&pretty, "print", false, "render the plan to the terminal")
	f.IntVar(&width, "width", 0, "terminal word-wrap width for --print")
	markRequired(cmd, "ranking", "evidence", "out")
	return cmd
}

// #endregion testplan
