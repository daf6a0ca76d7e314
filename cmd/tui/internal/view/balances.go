package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

type balanceSelection struct {
	AccountID string
	Unit      string
}

type balancesState int

const (
	balancesStateLoading balancesState = iota
	balancesStateSelect
	balancesStateShow
)

// BalancesModel shows the derived balances of one account and the records
// that moved it.
type BalancesModel struct {
	CommonModel
	ledger *ledger.Service

	state balancesState
	form  *huh.Form
	names names
	table table.Model

	// sel is shared with the form, which writes through it.
	sel      *balanceSelection
	balances ledger.Balances

	err error
}

func NewBalancesModel(svc *ledger.Service) BalancesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Number", Width: 12},
			{Title: "Type", Width: 17},
			{Title: "Cash", Width: 14},
			{Title: "Cash balance", Width: 14},
			{Title: "Goods", Width: 12},
			{Title: "Goods balance", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return BalancesModel{
		ledger: svc,
		table:  t,
		names:  newNames(nil),
		sel:    &balanceSelection{Unit: string(ledger.UnitKilogram)},
	}
}

func (m BalancesModel) Title() string { return "Balances" }

func (m BalancesModel) ShortHelp() string {
	if m.state == balancesStateShow {
		return "Esc: pick another account"
	}

	return "Esc: back"
}

func (m BalancesModel) Init() tea.Cmd {
	return snapshotCmd(m.ledger)
}

func (m BalancesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.names = newNames(msg.book)
		m.form = m.buildForm()
		m.state = balancesStateSelect

		return m, m.form.Init()

	case balancesMsg:
		m.err = msg.err
		m.balances = msg.balances
		m.setRows(msg.lines)
		m.state = balancesStateShow

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == balancesStateShow {
				m.err = nil
				m.form = m.buildForm()
				m.state = balancesStateSelect

				return m, m.form.Init()
			}

			return m, Back
		}
	}

	switch m.state {
	case balancesStateSelect:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		return m, m.loadCmd()

	case balancesStateShow:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m BalancesModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account").
				Options(m.names.accountOptions()...).
				Value(&m.sel.AccountID),
			huh.NewSelect[string]().
				Title("Report weights in").
				Options(unitOptions()...).
				Value(&m.sel.Unit),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *BalancesModel) setRows(lines []ledger.StatementLine) {
	rows := make([]table.Row, 0, len(lines))

	for _, l := range lines {
		r := l.Record
		rows = append(rows, table.Row{
			FormatDate(r.Date),
			r.DocumentNumber,
			string(r.Type),
			m.names.balance(r.CurrencyID, l.CashDelta),
			m.names.balance(r.CurrencyID, l.Cash),
			statement.FormatMeasure(l.GoodsDelta, ""),
			statement.FormatMeasure(l.Goods, ""),
		})
	}

	m.table.SetRows(rows)
}

func (m BalancesModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	switch m.state {
	case balancesStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	case balancesStateSelect:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	summary := panelStyle.Render(m.summary())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, summary, "", m.table.View()),
	)
}

func (m BalancesModel) summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n\n", lipgloss.NewStyle().Bold(true).Render(m.names.customer(m.sel.AccountID)))

	if len(m.balances.Cash) == 0 && len(m.balances.Products) == 0 {
		sb.WriteString("No movements")
		return sb.String()
	}

	for _, id := range sortedKeys(m.balances.Cash) {
		fmt.Fprintf(&sb, "%-12s %s\n", m.names.currency(id), m.names.balance(id, m.balances.Cash[id]))
	}

	for _, id := range sortedKeys(m.balances.Products) {
		unit := ""
		if p, ok := m.names.book.ProductType(id); ok && p.Measure == ledger.MeasureWeight {
			unit = m.sel.Unit
		}

		fmt.Fprintf(&sb, "%-12s %s\n", m.names.product(id), statement.FormatMeasure(m.balances.Products[id], unit))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

type balancesMsg struct {
	balances ledger.Balances
	lines    []ledger.StatementLine
	err      error
}

func (m BalancesModel) loadCmd() tea.Cmd {
	accountID := m.sel.AccountID
	unit := ledger.WeightUnit(m.sel.Unit)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		balances, err := m.ledger.Balances(ctx, accountID, unit)
		if err != nil {
			return balancesMsg{err: err}
		}

		lines, err := m.ledger.Statement(ctx, accountID, unit)

		return balancesMsg{balances: balances, lines: lines, err: err}
	}
}
