package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phagepick/decision-bundle/internal/validate"
)

// Exit codes of the validate command.
const (
	exitFatal   = 1
	exitInvalid = 2
)

// #region validate
func (a *app) validateCmd() *cobra.Command {
	var rankingPath, evidencePath, schemaPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a ranking CSV and evidence bundle",
		Long: `Checks the ranking header and row types and validates the evidence
bundle against the JSON Schema. Every violation is reported, an unreadable
ranking or evidence file included, and the command exits 2 when any was found.

--schema defaults to the schema embedded in the binary (see "phagebundle
schema"). A schema that cannot be read or compiled exits 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := validate.LoadSchema(schemaPath)
			if err != nil {
				return &exitError{code: exitFatal, err: err}
			}
			rep := validate.Run(rankingPath, evidencePath, schema)
			if err := rep.Write(cmd.OutOrStdout()); err != nil {
				return &exitError{code: exitFatal, err: err}
			}
			if !rep.OK() {
				a.log.Debug("bundle failed validation",
					zap.Int("ranking_errors", len(rep.Ranking)),
					zap.Int("evidence_errors", len(rep.Evidence)))
				return &exitError{code: exitInvalid, err: rep.Err()}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rankingPath, "ranking", "", "ranking CSV")
	f.StringVar(&evidencePath, "evidence", "", "evidence bundle JSON")
	f.StringVar(&schemaPath, "schema", "", "JSON Schema file (default: embedded schema)")
	markRequired(cmd, "ranking", "evidence")
	return cmd
}

// #endregion validate

// #region schema
func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the embedded evidence-bundle JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(validate.DefaultSchema)
			return err
		},
	}
}

// #endregion schema
