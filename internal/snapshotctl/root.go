package snapshotctl

import (
	"fmt"
	"path"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/snapshot-testing-go/config"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/fsstore"
)

const (
	flagDir        = "dir"
	flagFailureDir = "failure-dir"
	flagConfig     = "config"
	flagNoColor    = "no-color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// app carries the store resolved from flags, environment and config file.
type app struct {
	cfg        config.Config
	store      fsstore.Store
	configFile string
	dir        string
	failureDir string
	noColor    bool
}

// NewRootCommand builds the snapshotctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "snapshotctl",
		Short: "Inspect and maintain snapshot test references",
		Long: `snapshotctl works on the reference artifacts of a file-system snapshot store.
Settings come from the SNAPSHOT_* environment variables, an optional YAML or TOML config file,
and the flags, in increasing order of precedence.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.dir, flagDir, "", "snapshot directory (default from config, "+config.DefaultSnapshotDir+")")
	flags.StringVar(&a.failureDir, flagFailureDir, "", "failure directory inside the snapshot directory (default "+config.DefaultFailureDir+")")
	flags.StringVar(&a.configFile, flagConfig, "", "YAML or TOML config file")
	flags.BoolVar(&a.noColor, flagNoColor, false, "disable colored output")

	root.AddCommand(
		a.listCommand(),
		a.failuresCommand(),
		a.diffCommand(),
		a.acceptCommand(),
		a.cleanCommand(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.noColor {
		color.NoColor = true
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	if a.configFile != "" {
		if cfg, err = cfg.Overlay(a.configFile); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed(flagDir) {
		cfg.SnapshotDir = a.dir
	}

	if cmd.Flags().Changed(flagFailureDir) {
		cfg.FailureDir = a.failureDir
	}

	if err = cfg.Validate(); err != nil {
		return err
	}

	store, err := fsstore.New(cfg.SnapshotDir)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.store = store

	return nil
}

// referenceOf maps a failure artifact location to the reference it failed against.
func (a *app) referenceOf(failureLocation string) (string, bool) {
	return strings.CutPrefix(failureLocation, a.failurePrefix())
}

// failureOf maps a reference location to its failure artifact.
func (a *app) failureOf(referenceLocation string) string {
	return path.Join(a.cfg.FailureDir, referenceLocation)
}

func (a *app) failurePrefix() string {
	return path.Clean(a.cfg.FailureDir) + "/"
}

func plural(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}

	return fmt.Sprintf("%d %ss", n, singular)
}
