package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/market"
	"dealdesk/pkg/core/store"
	"dealdesk/pkg/core/underwrite"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var saveDir string

var runCmd = &cobra.Command{
	Use:   "run <deal.yaml>",
	Short: "Underwrite a deal file and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deal.Load(args[0])
		if err != nil {
			return err
		}
		rep, err := underwrite.Run(d)
		if err != nil {
			return err
		}
		if saveDir != "" {
			var repo *store.ReportRepo
			if os.Getenv("DATABASE_URL") != "" {
				if err := store.InitDB(cmd.Context(), ""); err != nil {
					return err
				}
				defer store.Close()
				repo = store.NewReportRepo(store.GetPool(), saveDir)
			} else {
				repo = store.NewReportRepo(nil, saveDir)
			}
			if err := repo.Save(cmd.Context(), rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved report %s\n", rep.ID)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), rep)
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&saveDir, "save", "", "persist the report (directory for the file store)")
}

func printReport(out io.Writer, r *underwrite.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\n", r.Deal.Name, r.ID)
	fmt.Fprintf(w, "Purchase price\t%s\n", money(r.Deal.Acquisition.PurchasePrice))
	fmt.Fprintf(w, "Year-1 NOI\t%s\n", money(r.Statement.NOI))
	fmt.Fprintf(w, "Cap rate\t%s\n", pct(r.Metrics.CapRate))
	if r.Metrics.HasDebt {
		fmt.Fprintf(w, "DSCR\t%.2fx\n", r.Metrics.DSCR)
		fmt.Fprintf(w, "Cash-on-cash\t%s\n", pct(r.Metrics.CashOnCash))
	}
	if p := r.Projection; p != nil {
		fmt.Fprintf(w, "Unlevered IRR\t%s\n", pct(p.Returns.UnleveredIRR))
		fmt.Fprintf(w, "Levered IRR\t%s\n", pct(p.Returns.LeveredIRR))
		fmt.Fprintf(w, "Equity multiple\t%.2fx\n", p.Returns.EquityMultiple)
	}
	if wf := r.Waterfall; wf != nil {
		fmt.Fprintf(w, "LP IRR / GP IRR\t%s / %s\n", pct(wf.Summary.LPIRR), pct(wf.Summary.GPIRR))
		fmt.Fprintf(w, "GP promote\t%s\n", money(wf.Summary.GPPromote))
	}
	if t := r.Tax; t != nil {
		fmt.Fprintf(w, "After-tax IRR\t%s\n", pct(t.AfterTaxIRR))
	}
	if v := r.Valuation; v != nil {
		for _, a := range v.Approaches {
			fmt.Fprintf(w, "%s\t%s\n", a.Approach, money(a.Value))
		}
		fmt.Fprintf(w, "Reconciled value\t%s\n", money(v.Reconciled))
		if v.MaxPrice != nil {
			fmt.Fprintf(w, "Max price at target IRR\t%s\n", money(v.MaxPrice.MaxPrice))
		}
	}
	if r.Market != nil {
		fmt.Fprintf(w, "Market score\t%.1f (%s)\n", r.Market.Score, r.Market.Grade)
	}
	if r.Investment != nil {
		fmt.Fprintf(w, "Recommendation\t%s (%.1f)\n", r.Investment.Recommendation, r.Investment.Score)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "WARNING\t%s\n", warn)
	}
}

func money(v float64) string { return fmt.Sprintf("$%.0f", v) }
func pct(v float64) string   { return fmt.Sprintf("%.2f%%", v*100) }

var (
	signalCap, signalDSCR, signalCoC float64
)

var scoreCmd = &cobra.Command{
	Use:   "score <market.yaml>",
	Short: "Score a market snapshot, optionally with deal signals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var m market.Data
		if err := yaml.UnmarshalStrict(data, &m); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		ms := market.ScoreMarket(m, nil)
		var sig *market.DealSignals
		if signalCap > 0 || signalDSCR > 0 || signalCoC > 0 {
			sig = &market.DealSignals{CapRate: signalCap, DSCR: signalDSCR, CashOnCash: signalCoC}
		}
		inv := market.CalculateInvestmentScore(ms, sig)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"market": ms, "investment": inv})
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintln(w, "FACTOR\tRAW\tNORMALIZED\tWEIGHT\tPOINTS")
		for _, f := range ms.Factors {
			fmt.Fprintf(w, "%s\t%.4g\t%.2f\t%.0f\t%.1f\n", f.Name, f.Raw, f.Normalized, f.Weight, f.Contribution)
		}
		fmt.Fprintf(w, "Market score\t%.1f\t%s\n", ms.Score, ms.Grade)
		fmt.Fprintf(w, "Investment score\t%.1f\t%s\n", inv.Score, inv.Recommendation)
		for _, line := range inv.Rationale {
			fmt.Fprintf(w, "\t%s\n", line)
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().Float64Var(&signalCap, "cap-rate", 0, "deal going-in cap rate")
	scoreCmd.Flags().Float64Var(&signalDSCR, "dscr", 0, "deal year-1 DSCR")
	scoreCmd.Flags().Float64Var(&signalCoC, "cash-on-cash", 0, "deal year-1 cash-on-cash")
}
