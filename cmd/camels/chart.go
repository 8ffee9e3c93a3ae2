package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/camels-de1h/internal/storage"
)

func newChartCmd(a *app) *cobra.Command {
	var kind, out string
	cmd := &cobra.Command{
		Use:   "chart IDENTIFIER",
		Short: "Render a station's series as an interactive HTML chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.stations.Open(args[0])
			if err != nil {
				return err
			}
			line, err := st.RenderChart(kind)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s_chart.html", st.ID())
			}
			if out == "-" {
				return line.Render(cmd.OutOrStdout())
			}
			if err := storage.WriteAtomic(out, func(w io.Writer) error { return line.Render(w) }); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "both", "discharge (q), water_level (w) or both")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default {nuts_id}_chart.html)`)
	return cmd
}
