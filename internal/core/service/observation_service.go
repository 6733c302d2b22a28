package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/pkg/metrics"
)

// DefaultObservationTTL bounds how long a recorded (order, status) pair is
// remembered by the dedup store.
const DefaultObservationTTL = 24 * time.Hour

type observationService struct {
	repo  ports.ObservationRepository
	dedup ports.DedupChecker
	ttl   time.Duration
	log   zerolog.Logger
}

// NewObservationService returns an ObservationRecorder implementation.
// dedup may be nil, in which case every observation is stored.
func NewObservationService(repo ports.ObservationRepository, dedup ports.DedupChecker, ttl time.Duration, log zerolog.Logger) ports.ObservationRecorder {
	if ttl <= 0 {
		ttl = DefaultObservationTTL
	}
	return &observationService{
		repo:  repo,
		dedup: dedup,
		ttl:   ttl,
		log:   log.With().Str("component", "observations").Logger(),
	}
}

// Record stores an observed status change once per (order, status).
func (s *observationService) Record(ctx context.Context, obs domain.StatusObservation) error {
	if !obs.Status.Valid() {
		s.log.Debug().Int("order_id", obs.OrderID).Str("status", string(obs.Status)).Msg("recording unknown status")
	}

	// 1. Idempotency check: silently skip duplicates.
	claimed := false
	if s.dedup != nil {
		fresh, err := s.dedup.Claim(ctx, obs.OrderID, obs.Status, s.ttl)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Int("order_id", obs.OrderID).Msg("dedup check failed, recording anyway")
		case !fresh:
			metrics.ObservationsRecordedTotal.WithLabelValues("duplicate").Inc()
			s.log.Debug().Int("order_id", obs.OrderID).Str("status", string(obs.Status)).Msg("duplicate observation skipped")
			return nil
		default:
			claimed = true
		}
	}

	// 2. Append to the audit trail.
	if err := s.repo.Insert(ctx, obs); err != nil {
		metrics.ObservationsRecordedTotal.WithLabelValues("error").Inc()
		// A failed insert must not leave the pair marked as recorded.
		if claimed {
			if relErr := s.dedup.Release(context.WithoutCancel(ctx), obs.OrderID, obs.Status); relErr != nil {
				s.log.Warn().Err(relErr).Int("order_id", obs.OrderID).Msg("dedup release failed")
			}
		}
		return fmt.Errorf("record observation: %w", err)
	}

	metrics.ObservationsRecordedTotal.WithLabelValues("recorded").Inc()
	s.log.Info().
		Int("order_id", obs.OrderID).
		Str("status", string(obs.Status)).
		Str("source", obs.Source).
		Msg("observation recorded")
	return nil
}
