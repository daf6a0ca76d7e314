package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Load(ctx context.Context) (*Book, error)
	Save(ctx context.Context, book *Book) error
}

type Service struct {
	repo     Repository
	poster   Poster
	baseUnit WeightUnit
}

type Option func(*Service)

// WithPoster replaces the clock and id source used for new records.
func WithPoster(p Poster) Option {
	return func(s *Service) { s.poster = p }
}

// WithBaseUnit sets the unit weights are reported in when the caller does not
// ask for one.
func WithBaseUnit(u WeightUnit) Option {
	return func(s *Service) { s.baseUnit = u }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		poster:   NewPoster(),
		baseUnit: UnitKilogram,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type ListFilter struct {
	CustomerID *string
	Type       *Type
	StartDate  *time.Time
	EndDate    *time.Time
	// DocumentsOnly hides children and lists main and standalone documents.
	DocumentsOnly bool
}

// Document is a record together with the children posted under it.
type Document struct {
	Record
	Children []Record `json:"children"`
}

func (s *Service) load(ctx context.Context) (*Book, error) {
	book, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading book: %w", err)
	}

	if book == nil {
		book = &Book{}
	}

	return book.Clone(), nil
}

func (s *Service) save(ctx context.Context, book *Book) error {
	if err := s.repo.Save(ctx, book); err != nil {
		return fmt.Errorf("saving book: %w", err)
	}

	return nil
}

func (s *Service) Post(ctx context.Context, params PostParams) ([]Record, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.poster.Post(book, params)
	if err != nil {
		metrics.ObserveRejection(string(KindOf(err)))
		return nil, err
	}

	book.Records = append(book.Records, recs...)
	if err := s.save(ctx, book); err != nil {
		return nil, err
	}

	metrics.ObservePosting(string(params.Type))

	return recs, nil
}

func (s *Service) PostBatch(ctx context.Context, params BatchParams) ([]Record, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.poster.PostBatch(book, params)
	if err != nil {
		metrics.ObserveRejection(string(KindOf(err)))
		return nil, err
	}

	book.Records = append(book.Records, recs...)
	if err := s.save(ctx, book); err != nil {
		return nil, err
	}

	for _, item := range params.Items {
		metrics.ObservePosting(string(item.Type))
	}

	return recs, nil
}

// Edit rewrites a document and returns the records that now stand for it.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, params PostParams) ([]Record, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.poster.Edit(book, id, params)
	if err != nil {
		metrics.ObserveRejection(string(KindOf(err)))
		return nil, err
	}

	book.Records = replace(book.Records, recs)
	if err := s.save(ctx, book); err != nil {
		return nil, err
	}

	return recs, nil
}

// replace swaps records by id and appends the ones not present yet.
func replace(records, updated []Record) []Record {
	byID := make(map[uuid.UUID]Record, len(updated))
	for _, r := range updated {
		byID[r.ID] = r
	}

	out := make([]Record, 0, len(records)+len(updated))

	for _, r := range records {
		if u, ok := byID[r.ID]; ok {
			out = append(out, u)
			delete(byID, r.ID)

			continue
		}

		out = append(out, r)
	}

	for _, r := range updated {
		if _, ok := byID[r.ID]; ok {
			out = append(out, r)
		}
	}

	return out
}

// Delete removes a document and everything that cascades from it. It returns
// the removed records.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) ([]Record, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	kept, removed, err := Delete(book.Records, id)
	if err != nil {
		return nil, err
	}

	book.Records = kept
	if err := s.save(ctx, book); err != nil {
		return nil, err
	}

	return removed, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	r, ok := book.Record(id)
	if !ok {
		return nil, ErrNotFound
	}

	return &Document{Record: r, Children: book.Children(id)}, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var out []Record

	for _, r := range book.Records {
		if filter.matches(r) {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		return compareDocumentNumbers(a.DocumentNumber, b.DocumentNumber)
	})

	return out, nil
}

func (f ListFilter) matches(r Record) bool {
	if f.DocumentsOnly && r.ParentDocumentID != nil {
		return false
	}

	if f.CustomerID != nil && r.CustomerID != *f.CustomerID {
		return false
	}

	if f.Type != nil && r.Type != *f.Type {
		return false
	}

	if f.StartDate != nil && r.Date.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && r.Date.After(*f.EndDate) {
		return false
	}

	return true
}

func (s *Service) unit(u WeightUnit) WeightUnit {
	if u == "" {
		return s.baseUnit
	}

	return u
}

func (s *Service) Balances(ctx context.Context, accountID string, unit WeightUnit) (Balances, error) {
	book, err := s.load(ctx)
	if err != nil {
		return Balances{}, err
	}

	if !hasAccount(book, accountID) {
		return Balances{}, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
	}

	return DeriveBalances(book.Records, accountID, s.unit(unit)), nil
}

func (s *Service) Statement(ctx context.Context, accountID string, unit WeightUnit) ([]StatementLine, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if !hasAccount(book, accountID) {
		return nil, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
	}

	return DeriveStatement(book.Records, accountID, s.unit(unit)), nil
}

// hasAccount accepts reference-table accounts and any id records are posted
// against, so balances stay reachable for customers removed from the table.
func hasAccount(book *Book, id string) bool {
	if slices.ContainsFunc(book.Accounts(), func(a Account) bool { return a.ID == id }) {
		return true
	}

	return slices.ContainsFunc(book.Records, func(r Record) bool {
		return r.CustomerID == id || r.AccountID == id
	})
}

func (s *Service) FindOrphans(ctx context.Context) ([]Record, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return FindOrphans(book.Records), nil
}

// RepairOrphans deletes children whose main document is gone and reports how
// many were removed.
func (s *Service) RepairOrphans(ctx context.Context) (int, error) {
	book, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	kept, removed := RepairOrphans(book.Records)
	if len(removed) == 0 {
		return 0, nil
	}

	book.Records = kept
	if err := s.save(ctx, book); err != nil {
		return 0, err
	}

	slog.Info("removed orphaned records", "count", len(removed))
	metrics.ObserveOrphansRemoved(len(removed))

	return len(removed), nil
}

type ImportResult struct {
	Imported  [][]Record
	New       []PostParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming PostParams
	Existing Record
}

// ImportCash posts bank statement lines as cash movements. If any line looks
// like a movement that is already booked, nothing is written and the
// conflicts are returned together with the lines that are new.
func (s *Service) ImportCash(ctx context.Context, drafts []PostParams) (*ImportResult, error) {
	if len(drafts) == 0 {
		return &ImportResult{}, nil
	}

	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	type dupKey struct {
		Date        string
		Amount      string
		Type        Type
		AccountID   string
		Description string
	}

	keyOf := func(date time.Time, amount decimal.Decimal, t Type, account, desc string) dupKey {
		return dupKey{
			Date:        date.Format(time.DateOnly),
			Amount:      amount.Abs().String(),
			Type:        t,
			AccountID:   account,
			Description: strings.TrimSpace(desc),
		}
	}

	lookup := make(map[dupKey]Record)

	for _, r := range book.Records {
		if !r.IsMainDocument || r.Type.Family() != FamilyCash {
			continue
		}

		lookup[keyOf(r.Date, r.Amount, r.Type, r.AccountID, r.Description)] = r
	}

	var (
		newParams []PostParams
		conflicts []Conflict
	)

	for _, d := range drafts {
		account := d.AccountID
		if account == "" {
			account = CashBox
		}

		existing, found := lookup[keyOf(d.Date, derivedAmount(d), d.Type, account, d.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: d, Existing: existing})
			continue
		}

		newParams = append(newParams, d)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	groups, err := s.postAll(book, newParams)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, book); err != nil {
		return nil, err
	}

	return &ImportResult{Imported: groups}, nil
}

// PostAll posts every action in one save, without duplicate checks. Either
// all of them are booked or none.
func (s *Service) PostAll(ctx context.Context, params []PostParams) ([][]Record, error) {
	if len(params) == 0 {
		return nil, nil
	}

	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.postAll(book, params)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, book); err != nil {
		return nil, err
	}

	return groups, nil
}

func (s *Service) postAll(book *Book, params []PostParams) ([][]Record, error) {
	groups := make([][]Record, 0, len(params))

	for i, p := range params {
		recs, err := s.poster.Post(book, p)
		if err != nil {
			metrics.ObserveRejection(string(KindOf(err)))
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		book.Records = append(book.Records, recs...)
		groups = append(groups, recs)
	}

	for _, p := range params {
		metrics.ObservePosting(string(p.Type))
	}

	return groups, nil
}

// Snapshot returns a copy of the whole book.
func (s *Service) Snapshot(ctx context.Context) (*Book, error) {
	return s.load(ctx)
}

func (s *Service) Accounts(ctx context.Context) ([]Account, error) {
	book, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return book.Accounts(), nil
}
