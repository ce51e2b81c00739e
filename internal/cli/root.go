// Package cli implements taskctl, a command line front end for the task
// service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/store"
	"tasklist/internal/task"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errSetup marks failures that happen before a command runs, such as an
// unreadable config or an unreachable store.
var errSetup = errors.New("setup failed")

type app struct {
	configPath string
	jsonOutput bool

	store task.Store
	svc   *task.Service
}

// Run executes taskctl with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return ExitCode(err)
	}
	return exitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errSetup), task.IsInfrastructure(err):
		return exitSysError
	default:
		return exitUserError
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskctl",
		Short: "taskctl manages the task list",
		Long: `taskctl lists, adds, completes and deletes tasks in the store
configured in the config file (postgres or sqlite).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.close()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	root.AddCommand(a.listCommand())
	root.AddCommand(a.addCommand())
	root.AddCommand(a.setCompletedCommand("done", "Mark a task as completed", true))
	root.AddCommand(a.setCompletedCommand("undo", "Mark a task as not completed", false))
	root.AddCommand(a.deleteCommand())

	return root
}

// open loads config and opens the store for the command about to run.
func (a *app) open(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("%w: load config: %w", errSetup, err)
	}

	s, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("%w: open store: %w", errSetup, err)
	}

	a.store = s
	a.svc = task.NewService(s)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}
