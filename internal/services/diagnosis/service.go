// Package diagnosis orchestrates the confirmed-positive upload: snapshot the
// stored history, prepare the bounded payload and hand it to the transport.
package diagnosis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"veglia/internal/ports"
	"veglia/internal/upload"
)

// StatusMarker is the slice of the exposure orchestrator the upload needs:
// committing Positive shares the same single-writer discipline as check
// cycles.
type StatusMarker interface {
	MarkPositive(ctx context.Context) error
}

type Service struct {
	summaries ports.SummaryRepository
	countries ports.CountryRepository
	policy    ports.PolicyProvider
	transport ports.UploadTransport
	status    StatusMarker
	log       *zap.Logger
}

func New(summaries ports.SummaryRepository, countries ports.CountryRepository, policy ports.PolicyProvider, transport ports.UploadTransport, status StatusMarker, log *zap.Logger) *Service {
	return &Service{
		summaries: summaries,
		countries: countries,
		policy:    policy,
		transport: transport,
		status:    status,
		log:       log,
	}
}

// Upload prepares and submits the diagnosis payload authorized by token.
// On transport failure nothing is modified, so a retry runs with identical
// inputs. Only a successful submit transitions the status to Positive.
func (s *Service) Upload(ctx context.Context, token string) error {
	serverDate, err := s.transport.ServerTime(ctx)
	if err != nil {
		return fmt.Errorf("server time: %w", err)
	}
	policy, err := s.policy.Current(ctx)
	if err != nil {
		return fmt.Errorf("risk policy: %w", err)
	}
	summaries, err := s.summaries.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("summary snapshot: %w", err)
	}
	selected, err := s.countries.List(ctx)
	if err != nil {
		return fmt.Errorf("countries of interest: %w", err)
	}

	codes := make([]string, 0, len(selected))
	for _, c := range selected {
		codes = append(codes, c.Code)
	}
	payload := upload.Payload{
		ServerDate: serverDate,
		Summaries:  upload.Prepare(summaries, policy, serverDate),
		Countries:  codes,
	}

	if err := s.transport.Submit(ctx, token, payload); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := s.status.MarkPositive(ctx); err != nil {
		return err
	}
	s.log.Info("diagnosis upload completed",
		zap.Int("summaries", len(payload.Summaries)),
		zap.Int("countries", len(codes)))
	return nil
}
