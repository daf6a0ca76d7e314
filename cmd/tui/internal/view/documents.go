package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type documentsState int

const (
	documentsStateBrowse documentsState = iota
	documentsStateEdit
	documentsStateConfirmDelete
)

// DocumentsModel lists main and standalone documents. Legs and batch lines
// are reached through their main document.
type DocumentsModel struct {
	CommonModel
	ledger *ledger.Service

	state   documentsState
	table   table.Model
	records []ledger.Record
	names   names
	form    *huh.Form

	typeFilterIdx int
	dateFilterIdx int
	showChildren  bool

	filter  ledger.ListFilter
	loading bool
	err     error
	status  string

	edit *editForm
}

type editForm struct {
	Description string
	Date        string
}

func NewDocumentsModel(svc *ledger.Service) DocumentsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Number", Width: 12},
		{Title: "Type", Width: 17},
		{Title: "Customer", Width: 20},
		{Title: "Amount", Width: 14},
		{Title: "Goods", Width: 18},
		{Title: "Description", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DocumentsModel{
		ledger:  svc,
		table:   t,
		filter:  ledger.ListFilter{DocumentsOnly: true},
		loading: true,
		names:   newNames(nil),
	}
}

func (m DocumentsModel) Title() string { return "Documents" }

func (m DocumentsModel) ShortHelp() string {
	switch m.state {
	case documentsStateEdit:
		return "Navigate form | Esc: cancel"
	case documentsStateConfirmDelete:
		return "y: delete | n: keep"
	}

	return "Esc: back | e: edit | x: delete | t: type | d: date | c: children | r: refresh"
}

func (m DocumentsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DocumentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDocumentsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.records = msg.records
		m.names = newNames(msg.book)
		m.refreshTable()

		return m, nil

	case documentsSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = documentsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case documentsStateBrowse:
		return m.updateBrowse(msg)
	case documentsStateEdit:
		return m.updateEdit(msg)
	case documentsStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m, nil
}

func (m DocumentsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			r := m.selected()

			switch {
			case r == nil:
			case r.Role.IsLeg():
				m.status = "Legs are deleted through their main document."
			default:
				m.state = documentsStateConfirmDelete
			}

			return m, nil
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % (len(ledger.Types) + 1)
			m.applyFilter(time.Now())

			return m, m.loadCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter(time.Now())

			return m, m.loadCmd()
		case "c":
			m.showChildren = !m.showChildren
			m.filter.DocumentsOnly = !m.showChildren

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DocumentsModel) selected() *ledger.Record {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return nil
	}

	return &m.records[idx]
}

func (m DocumentsModel) enterEditMode() (tea.Model, tea.Cmd) {
	r := m.selected()
	if r == nil {
		return m, nil
	}

	if r.Role.IsLeg() {
		m.status = "Legs are edited through their main document."
		return m, nil
	}

	m.edit = &editForm{Description: r.Description, Date: FormatDate(r.Date)}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.edit.Description),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.edit.Date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = documentsStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m DocumentsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = documentsStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m DocumentsModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		return m, m.deleteCmd()
	case "n", "esc":
		m.state = documentsStateBrowse
	}

	return m, nil
}

func (m DocumentsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading documents...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	typeLabel := "All"
	if m.typeFilterIdx > 0 {
		typeLabel = string(ledger.Types[m.typeFilterIdx-1])
	}

	dateLabels := []string{"All Time", "This Month", "Last Month"}

	childrenLabel := "hidden"
	if m.showChildren {
		childrenLabel = "shown"
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s | [c] Children: %s",
		activeStyle(typeLabel),
		activeStyle(dateLabels[m.dateFilterIdx]),
		activeStyle(childrenLabel),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if r := m.selected(); r != nil {
		switch m.state {
		case documentsStateEdit:
			panel := panelStyle.Width(48).Render(
				fmt.Sprintf("Edit %s %s\n\n%s", r.Type, r.DocumentNumber, m.form.View()),
			)
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
		case documentsStateConfirmDelete:
			panel := panelStyle.Width(48).Render(
				fmt.Sprintf("Delete %s %s and everything posted with it?\n\n(y/n)", r.Type, r.DocumentNumber),
			)
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
		}
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *DocumentsModel) applyFilter(now time.Time) {
	if m.typeFilterIdx == 0 {
		m.filter.Type = nil
	} else {
		m.filter.Type = new(ledger.Types[m.typeFilterIdx-1])
	}

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *DocumentsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		rows = append(rows, table.Row{
			FormatDate(r.Date),
			r.DocumentNumber,
			string(r.Type),
			m.names.customer(r.CustomerID),
			m.names.amount(r),
			m.names.goods(r),
			r.Description,
		})
	}

	m.table.SetRows(rows)
}

// editParams rebuilds the posting from r with the edited fields applied.
func editParams(r ledger.Record, description string, date time.Time) ledger.PostParams {
	p := ledger.ParamsOf(r)
	p.Description = description
	p.Date = date

	return p
}

type loadDocumentsMsg struct {
	records []ledger.Record
	book    *ledger.Book
	err     error
}

func (m DocumentsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.ledger.List(ctx, filter)
		if err != nil {
			return loadDocumentsMsg{err: err}
		}

		book, err := m.ledger.Snapshot(ctx)

		return loadDocumentsMsg{records: records, book: book, err: err}
	}
}

type documentsSaveMsg struct {
	status string
	err    error
}

func (m DocumentsModel) saveCmd() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}

	record := *r
	desc := strings.TrimSpace(m.edit.Description)
	date, _ := time.Parse(time.DateOnly, strings.TrimSpace(m.edit.Date))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.ledger.Edit(ctx, record.ID, editParams(record, desc, date)); err != nil {
			return documentsSaveMsg{err: err}
		}

		return documentsSaveMsg{status: "Saved " + record.DocumentNumber}
	}
}

func (m DocumentsModel) deleteCmd() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}

	record := *r

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		removed, err := m.ledger.Delete(ctx, record.ID)
		if err != nil {
			return documentsSaveMsg{err: err}
		}

		return documentsSaveMsg{status: fmt.Sprintf("Deleted %d records", len(removed))}
	}
}
