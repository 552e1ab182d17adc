package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mlfoundry/modeltrack/pkg/tracking"
)

// runsCommand creates the runs inspection command.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect tracked runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsBrowseCommand())

	return cmd
}

// runsListCommand creates the "runs list" subcommand.
func (c *CLI) runsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List runs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, closeStore, err := c.openTracker(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := tracker.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}

			for _, run := range runs {
				printInfo("%s  %s  %s", run.ID, run.Status, run.Name)
				printDetail("started %s, %d artifact path(s)",
					run.StartTime.Format(time.RFC3339), len(run.ArtifactPaths))
			}
			return nil
		},
	}
}

// runsShowCommand creates the "runs show" subcommand.
func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its logged artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, closeStore, err := c.openTracker(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			run, err := tracker.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printKeyValue("run id", run.ID)
			printKeyValue("name", run.Name)
			printKeyValue("status", string(run.Status))
			printKeyValue("started", run.StartTime.Format(time.RFC3339))
			if !run.EndTime.IsZero() {
				printKeyValue("ended", run.EndTime.Format(time.RFC3339))
			}

			for _, path := range run.ArtifactPaths {
				printInfo("%s", path)
				files, err := tracker.ListArtifacts(cmd.Context(), run.ID, path)
				if err != nil {
					return err
				}
				for _, f := range files {
					printFile(fmt.Sprintf("%s/%s", path, f))
				}
			}
			return nil
		},
	}
}

// runsBrowseCommand creates the interactive "runs browse" subcommand.
func (c *CLI) runsBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse runs interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, closeStore, err := c.openTracker(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := tracker.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}

			m := newRunListModel(runs)
			final, err := tea.NewProgram(m).Run()
			if err != nil {
				return err
			}

			if sel, ok := final.(runListModel); ok && sel.Selected != nil {
				printKeyValue("selected", sel.Selected.ID)
			}
			return nil
		},
	}
}

// openTracker loads config and builds the tracker for a command invocation.
func (c *CLI) openTracker(cmd *cobra.Command) (*tracking.Tracker, func() error, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return c.newTracker(cmd.Context(), cfg)
}
