package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/internal/tui"
)

// idArgs requires exactly len(names) positional arguments, each a positive
// integer id.
func idArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(len(names))(cmd, args); err != nil {
			return err
		}
		for i, name := range names {
			if _, err := parseID(name, args[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

// leadingIDArg requires at least one argument whose first element is an id
func leadingIDArg(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
			return err
		}
		_, err := parseID(name, args[0])
		return err
	}
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError("invalid %s %q: must be a positive integer", name, s)
	}
	return id, nil
}

// mustID parses an argument that idArgs already validated
func mustID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

// confirm asks before a destructive action unless --yes was given.
// Without a terminal the flag is required.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	yes, _ := cmd.Flags().GetBool("yes")
	if yes {
		return true, nil
	}
	if !tui.ShouldPrompt() {
		return false, usageError("pass --yes to confirm when not running interactively")
	}
	return tui.PromptForConfirmation(prompt, false)
}

// usageError reports bad command input; it maps to the usage exit code
func usageError(format string, a ...any) error {
	return tberrors.New(tberrors.ErrCodeStoreInvalidInput, fmt.Sprintf(format, a...))
}
