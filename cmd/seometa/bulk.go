package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/seometa/models"
	"github.com/use-agent/seometa/report"
	"github.com/use-agent/seometa/spreadsheet"
)

func newBulkCmd() *cobra.Command {
	var (
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "bulk <input.xlsx|input.csv>",
		Short: "Analyze every URL in a spreadsheet's url column",
		Long: `bulk reads the "url" column of an .xlsx or .csv file, analyzes up to 100
non-blank entries concurrently and writes one row per entry, in input order.
The output format follows the -o extension (.csv or .xlsx).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			initLogger(cfg.Log, os.Stderr)

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			values, err := spreadsheet.ReadColumn(in, spreadsheet.FormatFromFilename(args[0]), cfg.Batch.URLColumn)
			_ = in.Close()
			if err != nil {
				return err
			}

			req, err := models.NewBatchRequest(values)
			if err != nil {
				return err
			}

			res := newRunner(cfg, nil).Run(cmd.Context(), req)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			if err := writeTable(output, report.Assemble(res.Results)); err != nil {
				return err
			}
			slog.Info("results written",
				"path", output,
				"succeeded", res.Summary.Succeeded,
				"failed", res.Summary.Failed,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d succeeded, %d failed\n", output, res.Summary.Succeeded, res.Summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "results.xlsx", "output file (.xlsx or .csv)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the batch result as JSON instead of writing a file")
	return cmd
}

func writeTable(path string, t *report.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if spreadsheet.FormatFromFilename(path) == spreadsheet.FormatCSV {
		return spreadsheet.WriteCSV(f, t)
	}
	return spreadsheet.WriteXLSX(f, t)
}
