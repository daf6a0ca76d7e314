package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func newImportCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Book a bank export as cash movements",
		Long: `Read a bank export and post every line as a cash movement on --account.
Nothing is written when a line looks like a movement that is already booked;
the conflicts are listed instead. Pass --force to book them anyway.`,
		Args: cobra.ExactArgs(1),
	}

	var (
		bank    string
		account string
		force   bool
	)

	cmd.Flags().StringVar(&bank, "bank", string(importer.BankCGD), "Bank export format")
	cmd.Flags().StringVar(&account, "account", ledger.CashBox, "Bank account id (or cash_box)")
	cmd.Flags().BoolVar(&force, "force", false, "Book lines even when they look like duplicates")

	cmd.RunE = run(open, func(cmd *cobra.Command, a *app.App, args []string) error {
		ctx := cmd.Context()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		lines, err := a.Importer.Import(importer.Bank(bank), f)
		if err != nil {
			return err
		}

		opts := importer.DraftOptions{AccountID: account}

		if account != ledger.CashBox {
			book, err := a.Ledger.Snapshot(ctx)
			if err != nil {
				return err
			}

			ba, ok := book.BankAccount(account)
			if !ok {
				return fmt.Errorf("bank account %q: %w", account, ledger.ErrNotFound)
			}

			opts.CurrencyID = ba.CurrencyID
		}

		descriptions := make([]string, 0, len(lines))
		for _, l := range lines {
			descriptions = append(descriptions, l.Description)
		}

		suggestions := a.Matching.SuggestAll(ctx, descriptions)
		opts.Suggest = func(d string) string { return suggestions[d] }

		drafts := importer.Drafts(lines, opts)
		out := cmd.OutOrStdout()

		if force {
			groups, err := a.Ledger.PostAll(ctx, drafts)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "imported %d movements\n", len(groups))

			return nil
		}

		result, err := a.Ledger.ImportCash(ctx, drafts)
		if err != nil {
			return err
		}

		if len(result.Conflicts) > 0 {
			for _, c := range result.Conflicts {
				fmt.Fprintf(out, "conflict: %s %s %s matches %s\n",
					c.Incoming.Date.Format("2006-01-02"), c.Incoming.Amount, c.Incoming.Description, c.Existing.DocumentNumber)
			}

			return fmt.Errorf("%d lines already booked, nothing imported", len(result.Conflicts))
		}

		fmt.Fprintf(out, "imported %d movements\n", len(result.Imported))

		return nil
	})

	return cmd
}
