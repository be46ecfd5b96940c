package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/services"
)

// queryFlags are the query inputs shared by enrich, candidates and predict.
// Boolean inputs stay strings so an omitted flag is distinct from false.
type queryFlags struct {
	company       string
	vendor        string
	vatRate       string
	apAr          string
	reverseCharge string
	goods         string
	services      string
}

func (f *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.company, "company", "", "company code")
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "vendor number")
	cmd.Flags().StringVar(&f.vatRate, "vat-rate", "", "VAT rate as written on the invoice")
	cmd.Flags().StringVar(&f.apAr, "ap-ar", "", "AP/AR/FI indicator (default AP)")
	cmd.Flags().StringVar(&f.reverseCharge, "reverse-charge", "", "reverse charge (true, false or omitted)")
	cmd.Flags().StringVar(&f.goods, "goods", "", "goods (true, false or omitted)")
	cmd.Flags().StringVar(&f.services, "services", "", "services (true, false or omitted)")

	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("vat-rate")
}

func (f *queryFlags) query() (models.TaxCodeQuery, error) {
	q := models.TaxCodeQuery{
		CompanyCode:  f.company,
		VendorNumber: f.vendor,
		VATRate:      f.vatRate,
		APAR:         f.apAr,
	}

	var err error
	if q.IsReverseCharge, err = models.ParseFlag(f.reverseCharge); err != nil {
		return q, fmt.Errorf("--reverse-charge: %w", err)
	}
	if q.Goods, err = models.ParseFlag(f.goods); err != nil {
		return q, fmt.Errorf("--goods: %w", err)
	}
	if q.Services, err = models.ParseFlag(f.services); err != nil {
		return q, fmt.Errorf("--services: %w", err)
	}
	return q, nil
}

func enrichCmd() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Resolve a query against the reference data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			enriched, err := a.taxCode.Enrich(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), enriched)
		},
	}
	flags.bind(cmd)
	return cmd
}

// candidatesOutput is the JSON printed by the candidates command.
type candidatesOutput struct {
	Enriched           models.EnrichedQuery       `json:"enriched"`
	Candidates         []models.TaxCodeCatalogRow `json:"candidates"`
	DescriptionColumns []string                   `json:"descriptionColumns"`
	Descriptions       []models.Record            `json:"descriptions"`
}

func newCandidatesOutput(r *services.CandidateResult) candidatesOutput {
	return candidatesOutput{
		Enriched:           r.Enriched,
		Candidates:         r.Candidates,
		DescriptionColumns: r.Descriptions.Columns(),
		Descriptions:       r.Descriptions.Records(),
	}
}

func candidatesCmd() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "List the catalog tax codes consistent with a query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.taxCode.Candidates(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), newCandidatesOutput(result))
		},
	}
	flags.bind(cmd)
	return cmd
}

// predictOutput is the JSON printed by the predict command.
type predictOutput struct {
	candidatesOutput
	Prediction models.Prediction `json:"prediction"`
}

func predictCmd() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Enrich a query, filter candidates and call the predictor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.taxCode.Predict(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), predictOutput{
				candidatesOutput: newCandidatesOutput(&result.CandidateResult),
				Prediction:       result.Prediction,
			})
		},
	}
	flags.bind(cmd)
	return cmd
}
