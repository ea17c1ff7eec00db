package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [units...]",
		Short: "Remove build outputs and cached build info",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out-dir")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				ConfigPath: c.configPath,
				OutDir:     outDir,
				Units:      args,
			})
		},
	}
	cmd.Flags().String("out-dir", "", "Directory to clean (overrides the project file)")
	return cmd
}
