package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

// StatementsModel writes one CSV statement per account for a period and
// shows the closing balances.
type StatementsModel struct {
	CommonModel
	statements *statement.Service
	ledger     *ledger.Service
	unit       ledger.WeightUnit

	state exportState
	err   error

	form    *huh.Form
	values  *statementsForm
	spinner spinner.Model
	summary string
}

type statementsForm struct {
	Period Period
	Start  string
	End    string
	Path   string
}

// window returns the statement bounds. all is set when the whole book is
// wanted.
func (f statementsForm) window(now time.Time) (start, end time.Time, all bool, err error) {
	if f.Period == PeriodCustom {
		start, end, err = customRange(f.Start, f.End)
		return start, end, false, err
	}

	start, end, ok := periodRange(f.Period, now)

	return start, end, !ok, nil
}

func NewStatementsModel(svc *statement.Service, l *ledger.Service, unit ledger.WeightUnit) StatementsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := StatementsModel{
		statements: svc,
		ledger:     l,
		unit:       unit,
		state:      exportStateForm,
		values:     &statementsForm{Period: PeriodThisMonth, Path: "./statements"},
		spinner:    s,
	}
	m.form = m.buildForm()

	return m
}


func (m StatementsModel) Title() string { return "Account Statements" }

func (m StatementsModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}
	return "Esc: back | Enter: confirm"
}

func (m StatementsModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m StatementsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m StatementsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	start, end, all, err := m.values.window(time.Now())
	if err != nil {
		m.err = err
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	m.state = exportStateExporting
	m.err = nil

	req := statement.Request{Unit: m.unit}
	if !all {
		req.StartDate = &start
		req.EndDate = &end
	}

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(req, m.values.Path))
}

func (m StatementsModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		if result.err != nil {
			m.err = result.err
		}
		m.summary = result.body
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m StatementsModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}
	return m, nil
}

func (m StatementsModel) buildForm() *huh.Form {
	v := m.values

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Period]().
				Key("period").
				Title("Period").
				Options(periodOptions()...).
				Value(&v.Period),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("start").
				Title("Start Date").
				Placeholder("YYYY-MM-DD").
				Value(&v.Start).
				Validate(func(s string) error {
					_, err := parseDay(s)
					return err
				}),
			huh.NewInput().
				Key("end").
				Title("End Date").
				Placeholder("YYYY-MM-DD").
				Value(&v.End).
				Validate(func(s string) error {
					_, _, err := customRange(v.Start, s)
					return err
				}),
		).WithHideFunc(func() bool { return v.Period != PeriodCustom }),
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./statements").
				Value(&v.Path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m StatementsModel) View() string {
	switch m.state {
	case exportStateForm:
		view := m.form.View()
		if m.err != nil {
			view += "\n" + errorStyle.Render(m.err.Error())
		}

		return lipgloss.NewStyle().Padding(1).Render(view)

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Writing statements...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m StatementsModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Statements written")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Summary:",
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	body string
	err  error
}

const exportTimeout = 2 * time.Minute

func (m StatementsModel) runExportCmd(req statement.Request, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		items, err := m.statements.Export(ctx, req, path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		book, err := m.ledger.Snapshot(ctx)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if len(items) == 0 {
			return exportResultMsg{body: "No account moved in this period."}
		}

		return exportResultMsg{body: statement.Summary(items, book, m.unit)}
	}
}
