package snapshotctl

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

// ErrNoFailure is returned when a reference has no failure artifact to show or accept.
var ErrNoFailure = errors.New("no failure artifact for reference")

// ErrNothingSelected is returned by accept without locations and without --all.
var ErrNothingSelected = errors.New("name the references to accept or pass --all")

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [dir]",
		Short: "List reference artifacts, optionally below one suite directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = strings.Trim(args[0], "/")
			}

			references, err := a.references(cmd, dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, location := range references {
				fmt.Fprintln(out, location)
			}

			fmt.Fprintln(out, bold(plural(len(references), "reference")))

			return nil
		},
	}
}

func (a *app) failuresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "failures",
		Short: "List failure artifacts kept from mismatching assertions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			failures, err := a.failures(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, reference := range failures {
				fmt.Fprintln(out, red("✗"), reference)
			}

			fmt.Fprintln(out, bold(plural(len(failures), "failure")))

			return nil
		},
	}
}

func (a *app) diffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [reference...]",
		Short: "Show the difference between references and their failure artifacts",
		Long:  "Without arguments, all failure artifacts are shown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			references, err := a.selectFailures(cmd, args, true)
			if err != nil {
				return err
			}

			for _, reference := range references {
				if err = a.printDiff(cmd, reference); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func (a *app) acceptCommand() *cobra.Command {
	var all bool

	command := &cobra.Command{
		Use:   "accept [reference...]",
		Short: "Replace references with their failure artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return ErrNothingSelected
			}

			references, err := a.selectFailures(cmd, args, all)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			for _, reference := range references {
				failureLocation := a.failureOf(reference)

				candidate, _, readErr := a.store.Read(ctx, failureLocation, snapshot.KindBinary, extensionOf(reference))
				if readErr != nil {
					return readErr
				}

				if writeErr := a.store.Write(ctx, reference, candidate); writeErr != nil {
					return writeErr
				}

				if removeErr := a.store.Remove(ctx, failureLocation); removeErr != nil {
					return removeErr
				}

				fmt.Fprintln(out, green("accepted"), reference)
			}

			fmt.Fprintln(out, bold(plural(len(references), "reference")+" updated"))

			return nil
		},
	}

	command.Flags().BoolVar(&all, "all", false, "accept every failure artifact")

	return command
}

func (a *app) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove all failure artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			failures, err := a.failures(cmd)
			if err != nil {
				return err
			}

			for _, reference := range failures {
				if removeErr := a.store.Remove(cmd.Context(), a.failureOf(reference)); removeErr != nil {
					return removeErr
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), bold("removed "+plural(len(failures), "failure artifact")))

			return nil
		},
	}
}

// references lists reference locations below dir, without failure artifacts.
func (a *app) references(cmd *cobra.Command, dir string) ([]string, error) {
	locations, err := a.store.List(cmd.Context(), dir)
	if err != nil {
		return nil, err
	}

	references := make([]string, 0, len(locations))
	for _, location := range locations {
		if _, isFailure := a.referenceOf(location); !isFailure {
			references = append(references, location)
		}
	}

	return references, nil
}

// failures lists the references that have a failure artifact.
func (a *app) failures(cmd *cobra.Command) ([]string, error) {
	locations, err := a.store.List(cmd.Context(), path.Clean(a.cfg.FailureDir))
	if err != nil {
		return nil, err
	}

	references := make([]string, 0, len(locations))
	for _, location := range locations {
		if reference, ok := a.referenceOf(location); ok {
			references = append(references, reference)
		}
	}

	return references, nil
}

// selectFailures returns the named references, each of which must have a failure artifact,
// or all failures when none is named and all is set.
func (a *app) selectFailures(cmd *cobra.Command, args []string, all bool) ([]string, error) {
	if len(args) == 0 && all {
		return a.failures(cmd)
	}

	references := make([]string, 0, len(args))
	for _, reference := range args {
		reference = strings.Trim(reference, "/")

		exists, err := a.store.Exists(cmd.Context(), a.failureOf(reference))
		if err != nil {
			return nil, err
		}

		if !exists {
			return nil, fmt.Errorf("%w: %q", ErrNoFailure, reference)
		}

		references = append(references, reference)
	}

	return references, nil
}

func (a *app) printDiff(cmd *cobra.Command, reference string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	expected, found, err := a.store.Read(ctx, reference, snapshot.KindBinary, extensionOf(reference))
	if err != nil {
		return err
	}

	actual, _, err := a.store.Read(ctx, a.failureOf(reference), snapshot.KindBinary, extensionOf(reference))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, bold(reference))

	if !found {
		fmt.Fprintln(out, yellow("no reference recorded yet"))
		return nil
	}

	if !utf8.Valid(expected.Bytes()) || !utf8.Valid(actual.Bytes()) {
		fmt.Fprintln(out, diffing.Bytes(expected, actual).Message())
		return nil
	}

	unified := diffing.Unified(expected.Text(), actual.Text())
	printUnified(out, unified)
	fmt.Fprintln(out, cyan(diffing.Stats(unified).String()))

	return nil
}

func printUnified(out io.Writer, unified string) {
	for _, line := range strings.Split(strings.TrimRight(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprintln(out, bold(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintln(out, cyan(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(out, green(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(out, red(line))
		default:
			fmt.Fprintln(out, line)
		}
	}
}

func extensionOf(location string) string {
	return strings.TrimPrefix(path.Ext(location), ".")
}
