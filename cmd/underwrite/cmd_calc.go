package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/sensitivity"

	"github.com/spf13/cobra"
)

var (
	loan    debt.Loan
	monthly bool
)

var amortizeCmd = &cobra.Command{
	Use:   "amortize",
	Short: "Print a loan amortization schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := debt.Amortize(loan)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), sched)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		defer w.Flush()
		if monthly {
			fmt.Fprintln(w, "MONTH\tPAYMENT\tINTEREST\tPRINCIPAL\tBALANCE\t")
			for _, p := range sched.Periods {
				fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t\n", p.Month, p.Payment, p.Interest, p.Principal, p.Balance)
			}
		} else {
			fmt.Fprintln(w, "YEAR\tDEBT SERVICE\tINTEREST\tPRINCIPAL\tBALANCE\t")
			for y := 1; y <= loan.TermYears; y++ {
				fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t\n", y,
					sched.AnnualDebtService(y), sched.AnnualInterest(y), sched.AnnualPrincipal(y), sched.BalanceAtYearEnd(y))
			}
		}
		fmt.Fprintf(w, "Payment\t%.2f\t\t\t\t\n", sched.AmortizingPayment)
		if sched.IOPayment > 0 {
			fmt.Fprintf(w, "IO payment\t%.2f\t\t\t\t\n", sched.IOPayment)
		}
		fmt.Fprintf(w, "Balloon\t%.2f\t\t\t\t\n", sched.BalloonBalance)
		return nil
	},
}

func init() {
	f := amortizeCmd.Flags()
	f.Float64Var(&loan.Principal, "principal", 0, "loan amount")
	f.Float64Var(&loan.AnnualRate, "rate", 0, "annual interest rate, decimal")
	f.IntVar(&loan.AmortizationYears, "years", 30, "amortization period in years")
	f.IntVar(&loan.TermYears, "term", 10, "loan term in years")
	f.IntVar(&loan.InterestOnlyMonths, "io", 0, "interest-only months")
	f.BoolVar(&monthly, "monthly", false, "print every payment")
	_ = amortizeCmd.MarkFlagRequired("principal")
	_ = amortizeCmd.MarkFlagRequired("rate")
}

var rowsFlag, colsFlag string

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity <deal.yaml>",
	Short: "Levered IRR grid over two flexed inputs",
	Long:  "Axes are field=v1,v2,... with field one of: " + strings.Join(sensitivity.Fields(), ", "),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deal.Load(args[0])
		if err != nil {
			return err
		}
		rows, err := parseAxis(rowsFlag)
		if err != nil {
			return err
		}
		cols, err := parseAxis(colsFlag)
		if err != nil {
			return err
		}
		grid, err := sensitivity.Run(cmd.Context(), d, rows, cols)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), grid)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		defer w.Flush()
		fmt.Fprintf(w, "%s \\ %s\t", rows.Field, cols.Field)
		for _, v := range cols.Values {
			fmt.Fprintf(w, "%.4g\t", v)
		}
		fmt.Fprintln(w)
		for i, row := range grid.Cells {
			fmt.Fprintf(w, "%.4g\t", rows.Values[i])
			for _, c := range row {
				if c.Error != "" {
					fmt.Fprint(w, "n/a\t")
					continue
				}
				fmt.Fprintf(w, "%s\t", pct(c.LeveredIRR))
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

func init() {
	sensitivityCmd.Flags().StringVar(&rowsFlag, "rows", "", "row axis, e.g. exit_cap_rate=0.055,0.06,0.065")
	sensitivityCmd.Flags().StringVar(&colsFlag, "cols", "", "column axis, e.g. interest_rate=0.06,0.065,0.07")
	_ = sensitivityCmd.MarkFlagRequired("rows")
	_ = sensitivityCmd.MarkFlagRequired("cols")
}

// parseAxis reads "field=v1,v2,...".
func parseAxis(s string) (sensitivity.Axis, error) {
	field, list, ok := strings.Cut(s, "=")
	if !ok {
		return sensitivity.Axis{}, fmt.Errorf("%w: %q is not field=values", sensitivity.ErrInvalidAxis, s)
	}
	ax := sensitivity.Axis{Field: strings.TrimSpace(field)}
	for _, part := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return sensitivity.Axis{}, fmt.Errorf("%w: %q: %v", sensitivity.ErrInvalidAxis, part, err)
		}
		ax.Values = append(ax.Values, v)
	}
	return ax, nil
}
