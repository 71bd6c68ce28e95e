package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fluxorio/ppqsort/pkg/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(a.settings)
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write the default settings to path (.yaml or .json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.Default()); err != nil {
				return err
			}
			a.logger.Infof("wrote default settings to %s", args[0])
			return nil
		},
	})

	return cmd
}
