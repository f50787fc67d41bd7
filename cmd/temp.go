package cmd

import (
	"context"

	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/format"
	"github.com/ipmifan/ipmifan/internal/ipmi"
	"github.com/spf13/cobra"
)

var tempCmd = &cobra.Command{
	Use:   "temp",
	Short: "Display current temperature sensors",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := selectBackend(context.Background())
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		readings, err := backend.ReadTemperatures()
		if err != nil {
			return err
		}

		data := struct {
			Temperatures []ipmi.TemperatureReading `json:"temperatures" yaml:"temperatures"`
		}{Temperatures: readings}

		return format.Render(configuration.CurrentConfig.Output, data, format.TemperatureTable(readings))
	},
}

func init() {
	rootCmd.AddCommand(tempCmd)
}
