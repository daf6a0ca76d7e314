package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type postState int

const (
	postStateLoading postState = iota
	postStateForm
	postStateResult
)

// postForm holds the raw values bound to the huh fields.
type postForm struct {
	Type        string
	CustomerID  string
	AccountID   string
	CurrencyID  string
	ProductID   string
	Amount      string
	Weight      string
	WeightUnit  string
	Quantity    string
	UnitPrice   string
	Date        string
	Description string
}

// params converts the form into posting params. Empty numeric fields stay
// unset so the ledger can tell an omitted measure from a zero one.
func (f postForm) params() (ledger.PostParams, error) {
	p := ledger.PostParams{
		Type:          ledger.Type(f.Type),
		CustomerID:    f.CustomerID,
		AccountID:     f.AccountID,
		CurrencyID:    f.CurrencyID,
		ProductTypeID: f.ProductID,
		WeightUnit:    ledger.WeightUnit(f.WeightUnit),
		Description:   strings.TrimSpace(f.Description),
	}

	var err error

	if p.Amount, err = optionalDecimal(f.Amount); err != nil {
		return p, fmt.Errorf("amount: %w", err)
	}

	if p.Weight, err = nullDecimal(f.Weight); err != nil {
		return p, fmt.Errorf("weight: %w", err)
	}

	if p.Quantity, err = nullDecimal(f.Quantity); err != nil {
		return p, fmt.Errorf("quantity: %w", err)
	}

	if p.UnitPrice, err = nullDecimal(f.UnitPrice); err != nil {
		return p, fmt.Errorf("unit price: %w", err)
	}

	if s := strings.TrimSpace(f.Date); s != "" {
		if p.Date, err = time.Parse(time.DateOnly, s); err != nil {
			return p, fmt.Errorf("date: use YYYY-MM-DD")
		}
	}

	if !p.Weight.Valid {
		p.WeightUnit = ""
	}

	if p.Type.Family() != ledger.FamilyCash {
		p.AccountID = ""
	}

	return p, nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}

	return decimal.NewFromString(s)
}

func nullDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	return decimal.NewNullDecimal(d), nil
}

func validDecimal(s string) error {
	_, err := optionalDecimal(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}

	return nil
}

type PostModel struct {
	CommonModel
	ledger *ledger.Service

	state  postState
	form   *huh.Form
	values *postForm
	names  names

	status string
	err    error
}

func NewPostModel(svc *ledger.Service) PostModel {
	return PostModel{ledger: svc, values: &postForm{}, names: newNames(nil)}
}

func (m PostModel) Title() string { return "Post Document" }

func (m PostModel) ShortHelp() string {
	if m.state == postStateResult {
		return "Enter: post another | Esc: back"
	}

	return "Navigate form | Esc: back"
}

func (m PostModel) Init() tea.Cmd {
	return snapshotCmd(m.ledger)
}

func (m PostModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = postStateResult

			return m, nil
		}

		m.names = newNames(msg.book)
		m.values = &postForm{
			Type:       string(ledger.TypeCashIn),
			AccountID:  ledger.CashBox,
			WeightUnit: string(ledger.UnitKilogram),
			Date:       FormatDate(time.Now()),
		}
		m.form = m.buildForm()
		m.state = postStateForm

		return m, m.form.Init()

	case postResultMsg:
		m.state = postStateResult
		m.err = msg.err
		m.status = ""

		if msg.err == nil {
			m.status = fmt.Sprintf("Posted %s (%d records)", msg.records[0].DocumentNumber, len(msg.records))
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == postStateResult && msg.Type == tea.KeyEnter {
			m.err = nil
			return m, snapshotCmd(m.ledger)
		}
	}

	if m.state != postStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.postCmd()
}

func (m PostModel) buildForm() *huh.Form {
	v := m.values

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Type").Options(typeOptions()...).Value(&v.Type),
			huh.NewSelect[string]().Title("Customer").Options(m.names.customerOptions()...).Value(&v.CustomerID),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&v.Date),
			huh.NewInput().Title("Description").Value(&v.Description),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Currency").Options(m.names.currencyOptions()...).Value(&v.CurrencyID),
			huh.NewSelect[string]().Title("Cash account").Options(m.names.treasuryOptions()...).Value(&v.AccountID),
			huh.NewInput().Title("Amount").Value(&v.Amount).Validate(validDecimal),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Product").Options(m.names.productOptions()...).Value(&v.ProductID),
			huh.NewInput().Title("Weight").Description("Leave empty for counted goods").Value(&v.Weight).Validate(validDecimal),
			huh.NewSelect[string]().Title("Weight unit").Options(unitOptions()...).Value(&v.WeightUnit),
			huh.NewInput().Title("Quantity").Value(&v.Quantity).Validate(validDecimal),
			huh.NewInput().Title("Unit price").Description("Derives the amount when set").Value(&v.UnitPrice).Validate(validDecimal),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m PostModel) View() string {
	switch m.state {
	case postStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	case postStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Enter to try again, Esc to go back)",
		)
	}

	return lipgloss.NewStyle().Padding(2).Render(
		successStyle.Render(m.status) + "\n\n(Enter to post another, Esc to go back)",
	)
}

type postResultMsg struct {
	records []ledger.Record
	err     error
}

func (m PostModel) postCmd() tea.Cmd {
	values := *m.values

	return func() tea.Msg {
		p, err := values.params()
		if err != nil {
			return postResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.ledger.Post(ctx, p)

		return postResultMsg{records: records, err: err}
	}
}
