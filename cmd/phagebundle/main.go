package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/phagepick/decision-bundle/internal/logging"
)

// #region exit
// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// #endregion exit

// #region main
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// #endregion main

// #region root
// app is the state shared by every subcommand.
type app struct {
	v   *viper.Viper
	log *zap.Logger
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:   viper.New(),
		log: zap.NewNop(),
		now: time.Now,
	}

	root := &cobra.Command{
		Use:   "phagebundle",
		Short: "Assemble, validate and review phage–host decision bundles",
		Long: `phagebundle ranks candidate phages against a bacterial host from
precomputed feature artefacts and publishes a ranking table together with an
evidence bundle.

Feature producers, the bundle validator, the test-plan renderer, the run ledger
and golden-fixture replay are available as subcommands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(a.v.GetString("log-level"), a.v.GetString("log-format"), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log encoding (console or json)")
	pf.String("ledger", "", "SQLite run ledger path")
	_ = a.v.BindPFlags(pf)
	a.v.SetEnvPrefix("PHAGEBUNDLE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.assembleCmd(),
		a.validateCmd(),
		a.testplanCmd(),
		a.inspectCmd(),
		a.replayCmd(),
		a.featuresCmd(),
		schemaCmd(),
	)
	return root
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// #endregion root
