// cmd_sort.go - Sort Command
// Hauptfunktionen: SortHandler
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/ml"
)

// SortHandler - Sortiert die Werte ueber den Dispatcher. Mit --dims wird
// entlang der Achsen sortiert (sort_tad), sonst das ganze Array.
func SortHandler(cmd *cobra.Command, args []string) error {
	dtypeName, _ := cmd.Flags().GetString("dtype")
	descending, _ := cmd.Flags().GetBool("descending")
	dims, _ := cmd.Flags().GetIntSlice("shape")
	axes, _ := cmd.Flags().GetIntSlice("dims")
	fortran, _ := cmd.Flags().GetBool("fortran")

	dtype, err := ml.ParseDType(dtypeName)
	if err != nil {
		return err
	}

	values, err := parseValues(args)
	if err != nil {
		return err
	}

	if len(dims) == 0 {
		dims = []int{len(values)}
	}
	shape := ml.NewShape(dims...)
	if fortran {
		shape.Order = ml.OrderF
	}

	t, err := ml.FromFloat64s(dtype, values, shape)
	if err != nil {
		return err
	}

	req := &dispatch.Request{Family: dispatch.FamilySort, Input: t, Descending: descending}
	if len(axes) > 0 {
		req.Family = dispatch.FamilySortTAD
		req.Dims = axes
	} else if shape.Rank() != 1 {
		return errors.New("--shape needs --dims")
	}

	if _, err := newInvoker().Dispatch(req); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ml.Dump(t))
	return nil
}

// newSortCmd - Erstellt den sort Command
func newSortCmd() *cobra.Command {
	sortCmd := &cobra.Command{
		Use:   "sort VALUES...",
		Short: "Sort values through the type dispatcher",
		Args:  cobra.MinimumNArgs(1),
		RunE:  SortHandler,
	}

	sortCmd.Flags().String("dtype", "float32", "Element type of the values")
	sortCmd.Flags().Bool("descending", false, "Sort in descending order")
	sortCmd.Flags().IntSlice("shape", nil, "Tensor shape (e.g. 2,3)")
	sortCmd.Flags().IntSlice("dims", nil, "Sort each sub-array along these axes")
	sortCmd.Flags().Bool("fortran", false, "Interpret the values in column-major order")

	return sortCmd
}
