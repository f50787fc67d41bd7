package cmd

import (
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/control"
	"github.com/ipmifan/ipmifan/internal/format"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/spf13/cobra"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the configured response curve to console",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfiguration(); err != nil {
			return err
		}
		controller := configuration.CurrentConfig.Controller

		format.PrintTable(format.ResultTable(
			[]string{"Target", "Min Speed", "Max Speed"},
			[]string{
				strconv.FormatFloat(controller.TargetTemp, 'f', 1, 64),
				strconv.FormatFloat(controller.MinSpeed, 'f', 1, 64),
				strconv.FormatFloat(controller.MaxSpeed, 'f', 1, 64),
			},
		))

		// one sample per half degree, from below the target up past the
		// curve's saturation point
		var values []float64
		for temp := controller.TargetTemp - 5; temp <= controller.TargetTemp+25; temp += 0.5 {
			values = append(values, control.BaselineSpeed(temp, controller.TargetTemp, controller.MinSpeed, controller.MaxSpeed))
		}

		caption := "Fan Speed % / Temperature"
		graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(curveCmd)
}
