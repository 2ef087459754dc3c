package snaptest

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

// ErrEmptyDiffTool is returned when a diff tool command is empty.
var ErrEmptyDiffTool = errors.New("diff tool command must not be empty")

// DiffTool shows a reference and a candidate side by side. It never influences pass or fail.
type DiffTool interface {
	// Command returns the command line that opens the two files, for display in failure messages.
	Command(referencePath, candidatePath string) string

	// Launch starts the tool without waiting for it to exit.
	Launch(ctx context.Context, referencePath, candidatePath string) error
}

// CommandDiffTool is an external program invoked as "<command> [args...] <reference> <candidate>".
type CommandDiffTool struct {
	name string
	args []string
}

// NewCommandDiffTool parses a command such as "ksdiff" or "code --wait --diff".
func NewCommandDiffTool(command string) (CommandDiffTool, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return CommandDiffTool{}, ErrEmptyDiffTool
	}

	return CommandDiffTool{name: fields[0], args: fields[1:]}, nil
}

// MustCommandDiffTool is NewCommandDiffTool for commands known to be valid.
func MustCommandDiffTool(command string) CommandDiffTool {
	tool, err := NewCommandDiffTool(command)
	if err != nil {
		panic(err)
	}

	return tool
}

// Command implements DiffTool.
func (t CommandDiffTool) Command(referencePath, candidatePath string) string {
	parts := append([]string{t.name}, t.args...)
	parts = append(parts, strconv.Quote(referencePath), strconv.Quote(candidatePath))

	return strings.Join(parts, " ")
}

// Launch implements DiffTool. The exit status of the tool is ignored.
func (t CommandDiffTool) Launch(ctx context.Context, referencePath, candidatePath string) error {
	args := append(append([]string{}, t.args...), referencePath, candidatePath)

	// the tool outlives the assertion, so only the values of ctx are kept
	cmd := exec.CommandContext(context.WithoutCancel(ctx), t.name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}
