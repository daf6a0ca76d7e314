package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

// Rules is where counterparty rules live; *ledger.Service keeps them in the
// book.
type Rules interface {
	CounterpartyRules(ctx context.Context) ([]ledger.CounterpartyRule, error)
	SaveCounterpartyRule(ctx context.Context, pattern, customerID string) error
}

type Store struct {
	rules Rules
}

func New(rules Rules) *Store {
	return &Store{rules: rules}
}

// FindMatch returns the customer of the longest pattern contained in
// rawDescription, ignoring case. Ties go to the newest rule.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (string, error) {
	rules, err := s.rules.CounterpartyRules(ctx)
	if err != nil {
		return "", fmt.Errorf("finding match: %w", err)
	}

	haystack := strings.ToLower(rawDescription)

	var best *ledger.CounterpartyRule

	for i := range rules {
		r := &rules[i]
		if r.Pattern == "" || !strings.Contains(haystack, strings.ToLower(r.Pattern)) {
			continue
		}

		if best == nil ||
			len(r.Pattern) > len(best.Pattern) ||
			(len(r.Pattern) == len(best.Pattern) && r.CreatedAt.After(best.CreatedAt)) {
			best = r
		}
	}

	if best == nil {
		return "", nil
	}

	return best.CustomerID, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern, customerID string) error {
	if err := s.rules.SaveCounterpartyRule(ctx, rawPattern, customerID); err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}
