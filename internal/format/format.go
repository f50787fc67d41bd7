package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/ipmi"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/tomlazar/table"
	"gopkg.in/yaml.v3"
)

// NoColor disables table coloration, set from the root command flags
var NoColor bool

// Render prints the given structured data in the selected output format.
// For the table format the provided table is printed, for json/yaml the data
// is marshalled as-is.
func Render(output string, data interface{}, tab table.Table) error {
	if output == configuration.OutputTable {
		PrintTable(tab)
		return nil
	}
	return PrintData(output, data)
}

// PrintData marshals the given data as json or yaml and prints it
func PrintData(output string, data interface{}) error {
	switch output {
	case configuration.OutputJson:
		encoded, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
	case configuration.OutputYaml:
		encoded, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		fmt.Print(string(encoded))
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
	return nil
}

// PrintTable renders the given table to the terminal
func PrintTable(tab table.Table) {
	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		panic(err)
	}
	ui.Printfln(buf.String())
}

// TemperatureTable builds the table representation of temperature readings
func TemperatureTable(readings []ipmi.TemperatureReading) table.Table {
	rows := make([][]string, 0, len(readings))
	for _, reading := range readings {
		rows = append(rows, []string{
			reading.ID,
			reading.Name,
			strconv.FormatFloat(reading.Value, 'f', 1, 64),
			reading.Unit,
			reading.Status,
		})
	}
	return table.Table{
		Headers: []string{"ID", "Name", "Temperature", "Unit", "Status"},
		Rows:    rows,
	}
}

// FanTable builds the table representation of fan readings
func FanTable(readings []ipmi.FanReading) table.Table {
	rows := make([][]string, 0, len(readings))
	for _, reading := range readings {
		rows = append(rows, []string{
			reading.ID,
			reading.Name,
			strconv.FormatFloat(reading.Speed, 'f', 0, 64),
			reading.Unit,
			reading.Status,
		})
	}
	return table.Table{
		Headers: []string{"ID", "Name", "Speed", "Unit", "Status"},
		Rows:    rows,
	}
}

// ResultTable builds a single-row key/value table for command results
func ResultTable(headers []string, row []string) table.Table {
	return table.Table{
		Headers: headers,
		Rows:    [][]string{row},
	}
}
