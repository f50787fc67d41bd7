package cmd

import (
	"context"

	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/control"
	"github.com/ipmifan/ipmifan/internal/format"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/spf13/cobra"
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Enable automatic fan control",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := selectBackend(context.Background())
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		if err := control.EnableAutomaticMode(backend); err != nil {
			return err
		}

		output := configuration.CurrentConfig.Output
		if output == configuration.OutputTable {
			ui.Success("Automatic fan control enabled")
			return nil
		}

		data := struct {
			Result string `json:"result" yaml:"result"`
			Mode   string `json:"mode" yaml:"mode"`
		}{Result: "success", Mode: "automatic"}
		return format.PrintData(output, data)
	},
}

func init() {
	rootCmd.AddCommand(autoCmd)
}
