package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type ruleInput struct {
	Pattern    string
	CustomerID string
}

// RulesModel teaches the importer which customer a bank description
// belongs to.
type RulesModel struct {
	CommonModel
	ledger   *ledger.Service
	matching *matching.Service

	names names
	rules []ledger.CounterpartyRule
	form  *huh.Form
	input *ruleInput

	status string
	err    error
}

func NewRulesModel(svc *ledger.Service, matchSvc *matching.Service) RulesModel {
	return RulesModel{ledger: svc, matching: matchSvc, names: newNames(nil), input: &ruleInput{}}
}

func (m RulesModel) Title() string { return "Counterparty Rules" }

func (m RulesModel) ShortHelp() string {
	return "Navigate form | Esc: back"
}

func (m RulesModel) Init() tea.Cmd {
	return snapshotCmd(m.ledger)
}

func (m RulesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.names = newNames(msg.book)
		m.rules = msg.book.CounterpartyRules
		m.input = &ruleInput{}
		m.form = m.buildForm()

		return m, m.form.Init()

	case learnMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Descriptions containing %q now go to %s", msg.pattern, m.names.customer(msg.customerID))
		}

		return m, snapshotCmd(m.ledger)

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.learnCmd()
}

func (m RulesModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Description contains").
				Placeholder("TRF CARLOS").
				Value(&m.input.Pattern).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("pattern cannot be empty")
					}

					return nil
				}),
			huh.NewSelect[string]().
				Title("Customer").
				Options(m.names.customerOptions()...).
				Value(&m.input.CustomerID),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m RulesModel) View() string {
	var sb strings.Builder

	if len(m.rules) == 0 {
		sb.WriteString("No rules yet.\n")
	}

	for _, r := range m.rules {
		fmt.Fprintf(&sb, "%-30s -> %s\n", r.Pattern, m.names.customer(r.CustomerID))
	}

	parts := []string{panelStyle.Render(strings.TrimRight(sb.String(), "\n"))}

	if m.form != nil {
		parts = append(parts, "", m.form.View())
	}

	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		parts = append(parts, successStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

type learnMsg struct {
	pattern    string
	customerID string
	err        error
}

func (m RulesModel) learnCmd() tea.Cmd {
	input := *m.input

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.matching.Learn(ctx, input.Pattern, input.CustomerID)

		return learnMsg{pattern: strings.TrimSpace(input.Pattern), customerID: input.CustomerID, err: err}
	}
}
