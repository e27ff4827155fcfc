package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"pinwatch/internal/config"
	"pinwatch/internal/telemetry"
)

// Process exit codes.
const (
	exitClean    = 0
	exitFindings = 1
	exitFatal    = 2
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func fatal(err error) error {
	return &exitError{code: exitFatal, err: err}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "pinwatch",
		Short: "Detect installed npm packages pinned to known-malicious versions",
		Long: `pinwatch compares the packages installed in a project (node_modules and
package-lock.json) against a list of known-malicious package versions and
reports every exact match. It is meant to catch supply-chain compromises
before they are published as advisories.

Exit codes: 0 no findings, 1 findings, 2 fatal error.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(cmd)
			if err := config.Load(cfgFile); err != nil {
				return fatal(err)
			}
			cfg := config.FromViper()
			if err := cfg.Validate(); err != nil {
				return fatal(err)
			}
			telemetry.InitLogger(cfg.Verbose, cfg.LogFile)
			color.NoColor = cfg.NoColor || !isTerminal(cmd.OutOrStdout())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pinwatch.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().String("known-bad", "", "Known-bad list (JSON or YAML); default is a project-local known-bad.json/yaml, then the built-in list")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(newScanCmd(), newListCmd())
	return rootCmd
}

// bindFlags lets every flag of cmd override the viper key of the same
// name, with dashes as underscores (--max-depth sets max_depth).
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}
		viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitClean
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintln(stderr, "Run 'pinwatch --help' for usage.")
	return exitFatal
}
