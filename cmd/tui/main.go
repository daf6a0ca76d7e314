package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
)

type model struct {
	app *app.App

	current view.View
}

// menuEntry pairs a menu key with the screen it opens. Screens are rebuilt
// on every visit so they start from fresh data.
type menuEntry struct {
	key   string
	label string
	open  func(*app.App) view.View
}

var menu = []menuEntry{
	{"1", "Post Document", func(a *app.App) view.View { return view.NewPostModel(a.Ledger) }},
	{"2", "Documents", func(a *app.App) view.View { return view.NewDocumentsModel(a.Ledger) }},
	{"3", "Balances", func(a *app.App) view.View { return view.NewBalancesModel(a.Ledger) }},
	{"4", "Import Bank Statement", func(a *app.App) view.View {
		return view.NewImportModel(a.Ledger, a.Importer, a.Matching)
	}},
	{"5", "Counterparty Rules", func(a *app.App) view.View { return view.NewRulesModel(a.Ledger, a.Matching) }},
	{"6", "Account Statements", func(a *app.App) view.View {
		return view.NewStatementsModel(a.Statements, a.Ledger, a.BaseUnit)
	}},
	{"7", "Reference Data", func(a *app.App) view.View { return view.NewReferenceModel(a.Ledger) }},
	{"8", "Repair Orphans", func(a *app.App) view.View { return view.NewRepairModel(a.Ledger) }},
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == nil {
			if msg.String() == "q" {
				return m, tea.Quit
			}

			for _, e := range menu {
				if msg.String() == e.key {
					m.current = e.open(m.app)
					return m, m.current.Init()
				}
			}

			return m, nil
		}
	case view.BackMsg:
		m.current = nil
		return m, nil
	}

	if m.current == nil {
		return m, nil
	}

	next, cmd := m.current.Update(msg)
	m.current = next.(view.View)

	return m, cmd
}

var helpStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(1)

func (m model) View() string {
	if m.current == nil {
		s := m.app.Config.App.Name + "\n\n"
		for _, e := range menu {
			s += e.key + ". " + e.label + "\n"
		}

		s += "\nq. Quit"

		return lipgloss.NewStyle().Padding(2).Render(s)
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.current.Title())

	return lipgloss.JoinVertical(lipgloss.Left, title, m.current.View(), helpStyle.Render(m.current.ShortHelp()))
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(model{app: a})
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
