// Package cli implements the ledgerctl commands.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/app"
)

// Opener builds the application for one command run. The command closes it.
type Opener func(ctx context.Context) (*app.App, error)

func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect and maintain the ledger",
		Long: `ledgerctl works on the same store as the API and the TUI.
It reports balances, lists documents, repairs orphaned records and seeds
reference data from a TOML file.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newAccountsCmd(open),
		newBalancesCmd(open),
		newDocumentsCmd(open),
		newRepairCmd(open),
		newSeedCmd(open),
		newImportCmd(open),
		newStatementsCmd(open),
	)

	return root
}

// run opens the app, hands it to fn and closes it afterwards.
func run(open Opener, fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := open(cmd.Context())
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}
		defer a.Close()

		return fn(cmd, a, args)
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return lipgloss.NewStyle().Padding(0, 1)
		})
}
