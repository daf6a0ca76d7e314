package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type referenceKind string

const (
	referenceCustomer referenceKind = "Customer"
	referenceCurrency referenceKind = "Currency"
	referenceBank     referenceKind = "Bank account"
	referenceProduct  referenceKind = "Product type"
)

type referenceInput struct {
	Kind     string
	Name     string
	Code     string
	Phone    string
	Currency string
	IBAN     string
	Measure  string
}

// ReferenceModel adds customers, currencies, bank accounts and product types.
type ReferenceModel struct {
	CommonModel
	ledger *ledger.Service

	names names
	form  *huh.Form
	input *referenceInput

	status string
	err    error
}

func NewReferenceModel(svc *ledger.Service) ReferenceModel {
	return ReferenceModel{ledger: svc, names: newNames(nil), input: &referenceInput{}}
}

func (m ReferenceModel) Title() string { return "Reference Data" }

func (m ReferenceModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m ReferenceModel) Init() tea.Cmd {
	return snapshotCmd(m.ledger)
}

func (m ReferenceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.names = newNames(msg.book)
		m.input = &referenceInput{Kind: string(referenceCustomer), Measure: string(ledger.MeasureWeight)}
		m.form = m.buildForm()

		return m, m.form.Init()

	case referenceSavedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "Added " + msg.label
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

	return m, m.saveCmd()
}

func (m ReferenceModel) buildForm() *huh.Form {
	in := m.input

	kinds := []referenceKind{referenceCustomer, referenceCurrency, referenceBank, referenceProduct}
	kindOpts := make([]huh.Option[string], 0, len(kinds))

	for _, k := range kinds {
		kindOpts = append(kindOpts, huh.NewOption(string(k), string(k)))
	}

	is := func(k referenceKind) func() bool {
		return func() bool { return in.Kind != string(k) }
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Add").Options(kindOpts...).Value(&in.Kind),
		),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&in.Name).Validate(required),
			huh.NewInput().Title("Phone").Value(&in.Phone),
		).WithHideFunc(is(referenceCustomer)),
		huh.NewGroup(
			huh.NewInput().Title("ISO code").Placeholder("EUR").CharLimit(3).Value(&in.Code).Validate(func(s string) error {
				if len(strings.TrimSpace(s)) != 3 {
					return fmt.Errorf("use the three letter code")
				}

				return nil
			}),
			huh.NewInput().Title("Name").Value(&in.Name).Validate(required),
		).WithHideFunc(is(referenceCurrency)),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&in.Name).Validate(required),
			huh.NewSelect[string]().Title("Currency").Options(m.names.currencyOptions()...).Value(&in.Currency),
			huh.NewInput().Title("IBAN").Value(&in.IBAN),
		).WithHideFunc(is(referenceBank)),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&in.Name).Validate(required),
			huh.NewSelect[string]().Title("Measured by").Options(
				huh.NewOption("weight", string(ledger.MeasureWeight)),
				huh.NewOption("count", string(ledger.MeasureCount)),
			).Value(&in.Measure),
		).WithHideFunc(is(referenceProduct)),
	).WithWidth(50).WithShowHelp(false)
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}

	return nil
}

func (m ReferenceModel) View() string {
	book := m.names.book

	counts := fmt.Sprintf("%d customers | %d currencies | %d bank accounts | %d product types",
		len(book.Customers), len(book.Currencies), len(book.BankAccounts), len(book.ProductTypes))

	parts := []string{lipgloss.NewStyle().Faint(true).Render(counts), ""}

	if m.form != nil {
		parts = append(parts, m.form.View())
	}

	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		parts = append(parts, successStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

type referenceSavedMsg struct {
	label string
	err   error
}

func (m ReferenceModel) saveCmd() tea.Cmd {
	in := *m.input

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var err error

		switch referenceKind(in.Kind) {
		case referenceCustomer:
			_, err = m.ledger.CreateCustomer(ctx, ledger.CreateCustomerParams{Name: in.Name, Phone: in.Phone})
		case referenceCurrency:
			_, err = m.ledger.CreateCurrency(ctx, ledger.CreateCurrencyParams{Code: in.Code, Name: in.Name})
		case referenceBank:
			_, err = m.ledger.CreateBankAccount(ctx, ledger.CreateBankAccountParams{
				Name:       in.Name,
				CurrencyID: in.Currency,
				IBAN:       in.IBAN,
			})
		case referenceProduct:
			_, err = m.ledger.CreateProductType(ctx, ledger.CreateProductTypeParams{
				Name:    in.Name,
				Measure: ledger.Measure(in.Measure),
			})
		}

		return referenceSavedMsg{label: strings.ToLower(in.Kind) + " " + strings.TrimSpace(in.Name), err: err}
	}
}
