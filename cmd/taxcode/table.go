package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/services"
)

// reportTables maps the table argument to its report.
var reportTables = map[string]func(services.ReportService, context.Context) (*models.Table, error){
	"attention":       services.ReportService.AttentionList,
	"ip-vat":          services.ReportService.VATIPIssues,
	"historical-meta": services.ReportService.HistoricalMeta,
}

type tableOutput struct {
	Columns []string        `json:"tableColumns"`
	Rows    []models.Record `json:"rows"`
}

func tableCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "table <attention|ip-vat|historical-meta>",
		Short:     "Print a report table as JSON",
		ValidArgs: []string{"attention", "ip-vat", "historical-meta"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			table, err := reportTables[args[0]](a.reports, cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tableOutput{
				Columns: table.Columns(),
				Rows:    table.Records(),
			})
		},
	}
}
