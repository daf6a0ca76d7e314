package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

// RepairModel lists records whose parent is gone and removes them on
// confirmation.
type RepairModel struct {
	CommonModel
	ledger *ledger.Service

	orphans []ledger.Record
	loading bool
	status  string
	err     error
}

func NewRepairModel(svc *ledger.Service) RepairModel {
	return RepairModel{ledger: svc, loading: true}
}

func (m RepairModel) Title() string { return "Repair Orphans" }

func (m RepairModel) ShortHelp() string {
	if len(m.orphans) > 0 {
		return "y: remove all | Esc: back"
	}

	return "Esc: back"
}

func (m RepairModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m RepairModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case orphansMsg:
		m.loading = false
		m.orphans = msg.records
		m.err = msg.err

		return m, nil

	case repairedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Removed %d orphaned records.", msg.removed)
		}

		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "y":
			if len(m.orphans) > 0 {
				return m, m.repairCmd()
			}
		}
	}

	return m, nil
}

func (m RepairModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return style.Render("Scanning records...")
	}

	var sb strings.Builder

	if m.status != "" {
		sb.WriteString(successStyle.Render(m.status) + "\n\n")
	}

	if m.err != nil {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	if len(m.orphans) == 0 {
		sb.WriteString("No orphaned records.")
		return style.Render(sb.String())
	}

	fmt.Fprintf(&sb, "%d records point to a document that no longer exists:\n\n", len(m.orphans))

	for _, r := range m.orphans {
		fmt.Fprintf(&sb, "  %s  %-12s %-17s %s\n", FormatDate(r.Date), r.DocumentNumber, r.Type, r.Description)
	}

	sb.WriteString("\nPress y to remove them.")

	return style.Render(sb.String())
}

type orphansMsg struct {
	records []ledger.Record
	err     error
}

type repairedMsg struct {
	removed int
	err     error
}

func (m RepairModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.ledger.FindOrphans(ctx)

		return orphansMsg{records: records, err: err}
	}
}

func (m RepairModel) repairCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		n, err := m.ledger.RepairOrphans(ctx)

		return repairedMsg{removed: n, err: err}
	}
}
