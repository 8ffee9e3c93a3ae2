package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/camels-de1h/internal/adapter/kafka"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/pipeline"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		regions    []string
		batchSize  int
		noRegister bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import raw provider files from the input directory",
		Long: "Import reads every {provider_id}.csv below INPUT_DIR/Q_and_W/{state folder},\n" +
			"maps the provider ID to a NUTS ID, validates and saves the hourly series,\n" +
			"and copies {provider_id}_meta.csv as the station's raw metadata.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rs []domain.Region
			for _, s := range regions {
				r, err := domain.ParseRegion(s)
				if err != nil {
					return err
				}
				rs = append(rs, r)
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = a.cfg.ImportBatchSize
			}
			if batchSize < 1 {
				return fmt.Errorf("batch size %d: must be positive: %w", batchSize, domain.ErrInvalidArgument)
			}
			addMissing := a.cfg.ImportAddMissing && !noRegister

			var loader pipeline.BatchLoader = pipeline.NewLogLoader(a.logger)
			if a.cfg.KafkaEnabled {
				writer := kafkaadapter.NewWriter(a.cfg, a.logger)
				defer func() {
					if err := writer.Close(); err != nil {
						a.logger.Error("kafka writer close error", "error", err)
					}
				}()
				loader = writer
			}

			p := pipeline.New(
				pipeline.NewDirExtractor(a.layout, rs...),
				pipeline.NewTransformer(a.maps, a.stations, addMissing, a.logger),
				loader, a.logger, a.metrics, batchSize,
			)
			sum, err := p.Run(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "stations: %d found, %d imported, %d failed; %d change events\n",
				sum.Extracted, sum.Imported, sum.Failed, sum.Events)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&regions, "region", nil, "only import these region codes (repeatable)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "stations per batch (default IMPORT_BATCH_SIZE)")
	cmd.Flags().BoolVar(&noRegister, "no-register", false, "fail stations whose provider ID is not yet mapped")
	return cmd
}
