package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/adapters/emit"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [units...]",
		Short: "Compile the project's units and print their link directives",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Build(cmd.Context(), c.buildOptions(cmd, args))
			return err
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [units...]",
		Short: "Rebuild whenever a tracked source changes",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), c.buildOptions(cmd, args))
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", emit.FormatCargo,
		"Output format: "+strings.Join(emit.Formats, ", "))
	cmd.Flags().String("out-dir", "", "Directory receiving objects and archives (overrides the project file)")
	cmd.Flags().BoolP("no-cache", "n", false, "Recompile every unit even when its inputs are unchanged")
	cmd.Flags().StringSliceP("unit", "u", nil, "Build only the named units (repeatable)")
}

func (c *CLI) buildOptions(cmd *cobra.Command, args []string) app.BuildOptions {
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out-dir")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	units, _ := cmd.Flags().GetStringSlice("unit")

	return app.BuildOptions{
		ConfigPath: c.configPath,
		Format:     format,
		OutDir:     outDir,
		NoCache:    noCache,
		Units:      append(units, args...),
	}
}
