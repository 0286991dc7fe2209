// cmd_compress.go - Compress Command (Bitmap-Kodierung)
// Hauptfunktionen: CompressHandler
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/ollama/opexec/dispatch"
	"github.com/ollama/opexec/envconfig"
	"github.com/ollama/opexec/kernels"
	"github.com/ollama/opexec/ml"
)

// CompressHandler - Kodiert die Werte als Schwellwert-Bitmap, dekodiert
// sie wieder und zeigt Groesse und Fehler
func CompressHandler(cmd *cobra.Command, args []string) error {
	dtypeName, _ := cmd.Flags().GetString("dtype")
	threshold, _ := cmd.Flags().GetFloat32("threshold")
	schemeName, _ := cmd.Flags().GetString("scheme")

	if !cmd.Flags().Changed("threshold") {
		threshold = envconfig.BitmapThreshold()
	}
	if !cmd.Flags().Changed("scheme") {
		schemeName = envconfig.BitmapScheme()
	}

	dtype, err := ml.ParseDType(dtypeName)
	if err != nil {
		return err
	}

	scheme, err := kernels.ParseScheme(schemeName)
	if err != nil {
		return err
	}

	values, err := parseValues(args)
	if err != nil {
		return err
	}

	input, err := ml.FromFloat64s(dtype, values, ml.NewShape(len(values)))
	if err != nil {
		return err
	}
	original := input.Floats()

	encoded, err := ml.NewTensor(ml.DTypeInt32, ml.NewShape(kernels.BitmapWords(input.Len(), dtype, scheme)))
	if err != nil {
		return err
	}

	inv := newInvoker()
	res, err := inv.Dispatch(&dispatch.Request{
		Family:    dispatch.FamilyEncodeBitmap,
		Input:     input,
		Output:    encoded,
		Threshold: threshold,
		Scheme:    scheme,
	})
	if err != nil {
		return err
	}

	decoded, err := ml.NewTensor(dtype, input.Shape())
	if err != nil {
		return err
	}
	if _, err := inv.Dispatch(&dispatch.Request{Family: dispatch.FamilyDecodeBitmap, Input: encoded, Output: decoded}); err != nil {
		return err
	}

	words, _ := ml.Data[int32](encoded)
	header, err := kernels.ReadBitmapHeader(words)
	if err != nil {
		return err
	}

	restored := decoded.Floats()
	var l2err float64
	if len(original) > 0 {
		l2err = floats.Distance(original, restored, 2)
	}

	rawBytes := input.Len() * dtype.Size()
	encBytes := header.Words() * 4
	ratio := "-"
	if encBytes > 0 && rawBytes > 0 {
		ratio = strconv.FormatFloat(float64(rawBytes)/float64(encBytes), 'f', 2, 64)
	}

	table := newTable(cmd.OutOrStdout(), []string{"ELEMENTS", "FLAGGED", "SCHEME", "BYTES", "ENCODED", "RATIO", "NORM", "ERROR"})
	table.Append([]string{
		strconv.Itoa(header.Count),
		strconv.Itoa(res.Count),
		header.Scheme.String(),
		strconv.Itoa(rawBytes),
		strconv.Itoa(encBytes),
		ratio,
		strconv.FormatFloat(floats.Norm(original, 2), 'g', 6, 64),
		strconv.FormatFloat(l2err, 'g', 6, 64),
	})
	table.Render()

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "decoded: ", ml.Dump(decoded))
	if scheme == kernels.SchemeQuantized {
		fmt.Fprintln(cmd.OutOrStdout(), "residual:", ml.Dump(input))
	}

	return nil
}

// newCompressCmd - Erstellt den compress Command
func newCompressCmd() *cobra.Command {
	compressCmd := &cobra.Command{
		Use:   "compress VALUES...",
		Short: "Encode values as a threshold bitmap and decode them again",
		Args:  cobra.MinimumNArgs(1),
		RunE:  CompressHandler,
	}

	compressCmd.Flags().String("dtype", "float32", "Element type of the values (float16, bfloat16, float32, float64)")
	compressCmd.Flags().Float32("threshold", 1e-3, "Magnitude at which an element is transmitted")
	compressCmd.Flags().String("scheme", "exact", "Bitmap scheme: exact or quantized")

	return compressCmd
}
