package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/american-pricer/src/eventpubsub"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/utils"
	"github.com/jiaming2012/american-pricer/src/worker"
)

var (
	batchIn         string
	batchOut        string
	batchWorkers    int
	batchTimeSteps  int
	batchPriceSteps int
)

var batchCmd = &cobra.Command{
	Use:   "batch --in contracts.csv [--out results.csv]",
	Short: "Prices or inverts every contract in a CSV file in parallel.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchWorkers != 0 {
			cfg.Batch.Workers = batchWorkers
		}

		if batchTimeSteps != 0 {
			cfg.Grid.TimeSteps = batchTimeSteps
		}

		if batchPriceSteps != 0 {
			cfg.Grid.PriceSteps = batchPriceSteps
		}

		if err := newService(); err != nil {
			return err
		}

		rows, err := utils.ReadContractRowsFromFile(batchIn)
		if err != nil {
			return err
		}

		progress := func(ev models.ContractPricedEvent) {
			log.Debugf("[%d/%d] %s: %s", ev.Index+1, ev.Total, ev.ContractID, ev.Status)
		}

		if err := eventpubsub.Subscribe(eventpubsub.ContractPricedEvent, progress); err != nil {
			return fmt.Errorf("batch: %w", err)
		}

		result, err := worker.RunBatch(cmd.Context(), svc, rows, cfg.Batch.Workers)
		eventpubsub.WaitAsync()
		if err != nil {
			return err
		}

		if batchOut != "" {
			f, err := os.Create(batchOut)
			if err != nil {
				return fmt.Errorf("batch: failed to create %s: %w", batchOut, err)
			}
			defer f.Close()

			if err := utils.WriteContractResults(f, result.Rows); err != nil {
				return err
			}

			log.Infof("wrote %d results to %s", len(result.Rows), batchOut)
		} else {
			fmt.Print(result.String())
		}

		summary, err := result.Summary()
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"batchId":          result.BatchID,
			"total":            summary.Total,
			"failed":           summary.Failed,
			"meanPrice":        summary.MeanPrice,
			"medianIterations": summary.MedianIterations,
		}).Info("batch summary")

		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchIn, "in", "", "CSV file of contracts.")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "CSV file for results; prints a table when empty.")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Number of parallel workers (defaults to the config).")
	batchCmd.Flags().IntVar(&batchTimeSteps, "time-steps", 0, "Number of time steps (defaults to the config).")
	batchCmd.Flags().IntVar(&batchPriceSteps, "price-steps", 0, "Number of price levels (defaults to the config).")
	batchCmd.MarkFlagRequired("in")
}
