// Package matching suggests which customer a raw bank description belongs to.
package matching

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyPattern = errors.New("pattern and customer are required")

type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, customerID string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a customer id for the given raw description.
// Returns empty string if no match found.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (string, error) {
	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn remembers that descriptions containing rawPattern belong to customerID.
func (s *Service) Learn(ctx context.Context, rawPattern, customerID string) error {
	if strings.TrimSpace(rawPattern) == "" || customerID == "" {
		return ErrEmptyPattern
	}

	return s.repo.CreateMapping(ctx, rawPattern, customerID)
}

// SuggestAll resolves many descriptions at once. Lookup failures leave the
// description unmatched.
func (s *Service) SuggestAll(ctx context.Context, rawDescriptions []string) map[string]string {
	out := make(map[string]string, len(rawDescriptions))

	for _, raw := range rawDescriptions {
		if _, seen := out[raw]; seen {
			continue
		}

		customerID, err := s.repo.FindMatch(ctx, raw)
		if err != nil {
			customerID = ""
		}

		out[raw] = customerID
	}

	return out
}
