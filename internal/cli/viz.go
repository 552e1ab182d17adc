package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlfoundry/modeltrack/pkg/errors"
	"github.com/mlfoundry/modeltrack/pkg/lineage"
	"github.com/mlfoundry/modeltrack/pkg/requirements"
)

// vizCommand creates the viz command, rendering a run's lineage graph.
func (c *CLI) vizCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "viz <run-id>",
		Short: "Render a run's artifact lineage as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]

			tracker, closeStore, err := c.openTracker(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			run, err := tracker.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}

			manifests := make(map[string][]string, len(run.ArtifactPaths))
			for _, path := range run.ArtifactPaths {
				local, err := tracker.DownloadArtifact(cmd.Context(), runID, path+"/"+requirements.RequirementsFile)
				if err != nil {
					return err
				}
				lines, err := requirements.ReadLines(local)
				if err != nil {
					return err
				}
				manifests[path] = lines
			}

			dot := lineage.ToDOT(runID, manifests)

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				sp := newSpinnerWithContext(cmd.Context(), "Rendering lineage graph")
				sp.Start()
				data, err = lineage.RenderSVG(dot)
				sp.Stop()
				if err != nil {
					return err
				}
			default:
				return errors.New(errors.ErrCodeUnsupported, "unknown format %q (want dot or svg)", format)
			}

			if output == "" {
				output = runID + "." + format
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}

			printSuccess("Rendered %d nodes", lineage.NodeCount(dot))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <run-id>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot or svg")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return filterPrefix([]string{"dot", "svg"}, toComplete), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// filterPrefix returns the candidates matching the completion prefix.
func filterPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
