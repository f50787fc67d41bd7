package cmd

import (
	"context"

	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/control"
	"github.com/ipmifan/ipmifan/internal/format"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display current fan speeds and temperatures",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := selectBackend(context.Background())
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		snapshot, err := control.ReadStatus(backend)
		if err != nil {
			return err
		}

		output := configuration.CurrentConfig.Output
		if output == configuration.OutputTable {
			format.PrintTable(format.TemperatureTable(snapshot.Temperatures))
			format.PrintTable(format.FanTable(snapshot.Fans))
			return nil
		}
		return format.PrintData(output, snapshot)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
