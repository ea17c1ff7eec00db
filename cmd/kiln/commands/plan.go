package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [units...]",
		Short: "Show the commands and link directives a build would use",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			outDir, _ := cmd.Flags().GetString("out-dir")
			units, _ := cmd.Flags().GetStringSlice("unit")

			_, err := c.app.Plan(cmd.Context(), app.PlanOptions{
				ConfigPath: c.configPath,
				Format:     format,
				OutDir:     outDir,
				Units:      append(units, args...),
			})
			return err
		},
	}
	cmd.Flags().StringP("format", "f", app.PlanText, "Output format: text or json")
	cmd.Flags().String("out-dir", "", "Directory receiving objects and archives (overrides the project file)")
	cmd.Flags().StringSliceP("unit", "u", nil, "Plan only the named units (repeatable)")
	return cmd
}
