// cmd_utils.go - Hilfsfunktionen fuer Commands
// Hauptfunktionen: newTable, parseValues, parseInts, newInvoker
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ollama/opexec/dispatch"
)

// newTable - Tabelle im Stil von "ollama list"
func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	return table
}

// parseValues - Parst Zahlen aus Argumenten; Kommas trennen ebenfalls
func parseValues(args []string) ([]float64, error) {
	var values []float64
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q", field)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

// newInvoker - Dispatcher mit den eingebauten Kerneln und dem Default-Logger
func newInvoker() *dispatch.Invoker {
	return dispatch.NewInvoker(nil, dispatch.WithLogger(slog.Default()))
}
