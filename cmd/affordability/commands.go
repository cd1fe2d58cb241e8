package main

import (
	"errors"
	"fmt"

	"github.com/iwvelando/home-affordability/internal/session"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
	"github.com/iwvelando/home-affordability/pkg/output"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newQuoteCommand(a *app) *cobra.Command {
	var downPayment, sellerConcession float64
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute loan figures for an explicit down payment and seller concession",
		Args:  cobra.NoArgs,
	}
	bf := addBuyerFlags(cmd, false)
	cmd.Flags().Float64Var(&downPayment, "down-payment", 10, "down payment percent")
	cmd.Flags().Float64Var(&sellerConcession, "seller-concession", 0, "seller concession percent")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := validation.ValidatePercentage("down payment", downPayment, true); err != nil {
			return err
		}
		if err := validation.ValidatePercentage("seller concession", sellerConcession, false); err != nil {
			return err
		}
		req, err := bf.resolve(a, cmd.Flags())
		if err != nil {
			return err
		}

		quote, err := loans.Compute(req.Buyer.Inputs(
			mathutil.ToFraction(downPayment),
			mathutil.ToFraction(sellerConcession),
		))
		if err != nil {
			return err
		}

		if a.outputFormat == constants.OutputFormatCSV {
			return output.CsvQuote(a.out, quote)
		}
		output.PrettyQuote(a.out, quote)
		return nil
	}
	return cmd
}

func newEvaluateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Check one formula against the loan limits and list corrections",
		Args:  cobra.NoArgs,
	}
	bf := addBuyerFlags(cmd, true)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		req, err := bf.resolve(a, cmd.Flags())
		if err != nil {
			return err
		}

		quote, verdict, err := a.resolver.Evaluate(req)
		if err != nil {
			return err
		}
		formula, _ := a.resolver.Catalog().Lookup(req.FormulaID)
		return a.writeResults([]eligibility.Result{{Formula: formula, Quote: quote, Verdict: verdict}}, false)
	}
	return cmd
}

func newAlternativesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alternatives",
		Short: "Evaluate every formula in the catalog",
		Args:  cobra.NoArgs,
	}
	bf := addBuyerFlags(cmd, false)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		req, err := bf.resolve(a, cmd.Flags())
		if err != nil {
			return err
		}

		results, err := a.resolver.EvaluateAll(cmd.Context(), req.Buyer, req.Units)
		if err != nil {
			return err
		}
		return a.writeResults(results, true)
	}
	return cmd
}

func newResolveCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Apply suggested corrections until the formula is eligible",
		Args:  cobra.NoArgs,
	}
	bf := addBuyerFlags(cmd, true)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		req, err := bf.resolve(a, cmd.Flags())
		if err != nil {
			return err
		}

		s := session.New(a.logger, a.resolver)
		snap, err := s.Evaluate(req)
		if err != nil {
			return err
		}
		if err := a.writeStep(snap); err != nil {
			return err
		}

		for snap.State == session.StateCorrectionOffered {
			snap, err = s.ApplySuggested()
			if errors.Is(err, session.ErrTooManyAttempts) {
				a.logger.Warn("stopped applying corrections",
					zap.String("op", "resolve"),
					zap.String("session", s.ID()),
					zap.Int("attempts", constants.MaxCorrectionAttempts),
				)
				break
			}
			if err != nil {
				return err
			}
			if err := a.writeStep(snap); err != nil {
				return err
			}
		}

		final := s.Snapshot()
		if final.State != session.StateResolved {
			return fmt.Errorf("no eligible loan found for formula %s: %s", final.Request.FormulaID, final.Verdict.Status)
		}
		return nil
	}
	return cmd
}

func newFormulasCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formulas",
		Short: "List the formula catalog in order",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			output.PrettyFormulas(a.out, a.resolver.Catalog().Formulas())
			return nil
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.conf.WriteYAML(a.out)
		},
	}
}

func (a *app) writeResults(results []eligibility.Result, table bool) error {
	if a.outputFormat == constants.OutputFormatCSV {
		return output.CsvResults(a.out, results)
	}
	if table {
		output.PrettyResults(a.out, results)
		return nil
	}
	for _, r := range results {
		output.PrettyResult(a.out, r)
	}
	return nil
}

func (a *app) writeStep(snap session.Snapshot) error {
	formula, _ := a.resolver.Catalog().Lookup(snap.Request.FormulaID)
	if snap.Request.DownPaymentOverride != nil {
		formula.DownPaymentPct = *snap.Request.DownPaymentOverride
	}
	if a.outputFormat != constants.OutputFormatCSV {
		fmt.Fprintf(a.out, "Step %d (%s)\n", snap.Attempts, snap.State)
	}
	return a.writeResults([]eligibility.Result{{Formula: formula, Quote: snap.Quote, Verdict: snap.Verdict}}, false)
}
