// cmd_list.go - Table und Env Commands
// Hauptfunktionen: TableHandler, EnvHandler
package cmd

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/envconfig"
)

// TableHandler - Listet die registrierten Kernel pro Familie auf
func TableHandler(cmd *cobra.Command, args []string) error {
	t := dispatch.Builtin()

	var data [][]string
	for _, f := range dispatch.Families() {
		if len(args) > 0 && !strings.HasPrefix(f.String(), args[0]) {
			continue
		}

		var names []string
		for _, dt := range t.Supported(f) {
			names = append(names, dt.String())
		}
		data = append(data, []string{f.String(), strings.Join(names, ", ")})
	}

	table := newTable(cmd.OutOrStdout(), []string{"FAMILY", "TYPES"})
	table.AppendBulk(data)
	table.Render()

	return nil
}

// EnvHandler - Zeigt die aktuelle Konfiguration
func EnvHandler(cmd *cobra.Command, args []string) error {
	vars := envconfig.AsMap()

	var data [][]string
	values := envconfig.Values()
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		data = append(data, []string{name, values[name], vars[name].Description})
	}

	table := newTable(cmd.OutOrStdout(), []string{"NAME", "VALUE", "DESCRIPTION"})
	table.AppendBulk(data)
	table.Render()

	return nil
}

// newTableCmd - Erstellt den table Command
func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table [FAMILY]",
		Short: "List dispatch families and their element types",
		Args:  cobra.MaximumNArgs(1),
		RunE:  TableHandler,
	}
}

// newEnvCmd - Erstellt den env Command
func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show configuration",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}
}
