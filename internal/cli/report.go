package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

func newAccountsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List every account balances can be derived for",
		Args:  cobra.NoArgs,
		RunE: run(open, func(cmd *cobra.Command, a *app.App, _ []string) error {
			accounts, err := a.Ledger.Accounts(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable("ID", "Name", "Kind")
			for _, acc := range accounts {
				t.Row(acc.ID, acc.Name, string(acc.Kind))
			}

			fmt.Fprintln(cmd.OutOrStdout(), t.Render())

			return nil
		}),
	}
}

func newBalancesCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances ACCOUNT_ID",
		Short: "Show the cash and goods balances of an account",
		Long: `Show the balances of a customer, a bank account, the cash box
("cash_box") or the warehouse ("warehouse"). Weights are reported in --unit.`,
		Args: cobra.ExactArgs(1),
	}

	unit := cmd.Flags().StringP("unit", "u", "", "Weight unit to report in (mg, g, kg, ton, lb)")

	cmd.RunE = run(open, func(cmd *cobra.Command, a *app.App, args []string) error {
		u := a.BaseUnit
		if *unit != "" {
			parsed, err := ledger.ParseWeightUnit(*unit)
			if err != nil {
				return err
			}

			u = parsed
		}

		balances, err := a.Ledger.Balances(cmd.Context(), args[0], u)
		if err != nil {
			return err
		}

		book, err := a.Ledger.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if len(balances.Cash) == 0 && len(balances.Products) == 0 {
			fmt.Fprintln(out, "no movements")
			return nil
		}

		t := newTable("Balance", "Value")

		for _, id := range sortedKeys(balances.Cash) {
			code := id
			if c, ok := book.Currency(id); ok {
				code = c.Code
			}

			t.Row(code, statement.FormatAmount(balances.Cash[id], code))
		}

		for _, id := range sortedKeys(balances.Products) {
			name, measure := id, ""
			if p, ok := book.ProductType(id); ok {
				name = p.Name
				if p.Measure == ledger.MeasureWeight {
					measure = string(u)
				}
			}

			t.Row(name, statement.FormatMeasure(balances.Products[id], measure))
		}

		fmt.Fprintln(out, t.Render())

		return nil
	})

	return cmd
}

func newDocumentsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List main and standalone documents",
		Args:  cobra.NoArgs,
	}

	var (
		customer string
		typ      string
		from     string
		to       string
		all      bool
	)

	cmd.Flags().StringVar(&customer, "customer", "", "Only documents of this customer id")
	cmd.Flags().StringVar(&typ, "type", "", "Only documents of this type")
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&all, "all", false, "Include posting legs and batch lines")

	cmd.RunE = run(open, func(cmd *cobra.Command, a *app.App, _ []string) error {
		filter := ledger.ListFilter{DocumentsOnly: !all}

		if customer != "" {
			filter.CustomerID = new(customer)
		}

		if typ != "" {
			t := ledger.Type(typ)
			if !t.Valid() {
				return fmt.Errorf("unknown type %q", typ)
			}

			filter.Type = &t
		}

		var err error

		if filter.StartDate, err = dateFlag("from", from, false); err != nil {
			return err
		}

		if filter.EndDate, err = dateFlag("to", to, true); err != nil {
			return err
		}

		records, err := a.Ledger.List(cmd.Context(), filter)
		if err != nil {
			return err
		}

		t := newTable("Date", "Number", "Type", "Customer", "Amount", "Description")
		for _, r := range records {
			t.Row(
				r.Date.Format(time.DateOnly),
				r.DocumentNumber,
				string(r.Type),
				r.CustomerID,
				r.Amount.String(),
				r.Description,
			)
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.Render())

		return nil
	})

	return cmd
}

func newRepairCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Remove records whose parent document no longer exists",
		Args:  cobra.NoArgs,
	}

	dryRun := cmd.Flags().Bool("dry-run", false, "Only list the orphaned records")

	cmd.RunE = run(open, func(cmd *cobra.Command, a *app.App, _ []string) error {
		out := cmd.OutOrStdout()

		if *dryRun {
			orphans, err := a.Ledger.FindOrphans(cmd.Context())
			if err != nil {
				return err
			}

			for _, r := range orphans {
				fmt.Fprintf(out, "%s %s %s\n", r.ID, r.DocumentNumber, r.Type)
			}

			fmt.Fprintf(out, "%d orphaned records\n", len(orphans))

			return nil
		}

		n, err := a.Ledger.RepairOrphans(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "removed %d orphaned records\n", n)

		return nil
	})

	return cmd
}

func newStatementsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Write one CSV statement per account",
		Args:  cobra.NoArgs,
	}

	var (
		out      string
		from     string
		to       string
		accounts []string
	)

	cmd.Flags().StringVarP(&out, "out", "o", "./statements", "Output directory")
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&accounts, "account", nil, "Account ids to include (default: every account that moved)")

	cmd.RunE = run(open, func(cmd *cobra.Command, a *app.App, _ []string) error {
		req := statement.Request{AccountIDs: accounts, Unit: a.BaseUnit}

		var err error

		if req.StartDate, err = dateFlag("from", from, false); err != nil {
			return err
		}

		if req.EndDate, err = dateFlag("to", to, true); err != nil {
			return err
		}

		items, err := a.Statements.Export(cmd.Context(), req, out)
		if err != nil {
			return err
		}

		book, err := a.Ledger.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), statement.Summary(items, book, a.BaseUnit))

		return nil
	})

	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// dateFlag parses an optional YYYY-MM-DD flag. With endOfDay the last
// instant of that day is returned so the range includes it.
func dateFlag(name, value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("--%s: use YYYY-MM-DD", name)
	}

	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return &t, nil
}
