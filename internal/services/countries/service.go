package countries

import (
	"context"
	"fmt"
	"strings"

	"veglia/internal/domain"
	"veglia/internal/ports"
)

type Service struct {
	repo ports.CountryRepository
}

func New(repo ports.CountryRepository) *Service { return &Service{repo: repo} }

func (s *Service) Countries(ctx context.Context) ([]domain.CountryOfInterest, error) {
	return s.repo.List(ctx)
}

// SetCountries replaces the selection. Codes are ISO 3166-1 alpha-2,
// normalized to upper case; duplicates collapse silently.
func (s *Service) SetCountries(ctx context.Context, codes []string) error {
	seen := make(map[string]bool, len(codes))
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		c := strings.ToUpper(strings.TrimSpace(code))
		if len(c) != 2 || !isAlpha(c) {
			return fmt.Errorf("invalid country code %q", code)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		normalized = append(normalized, c)
	}
	return s.repo.Replace(ctx, normalized)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
