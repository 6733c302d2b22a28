package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
)

func observed(orderID int, status domain.OrderStatus) domain.StatusObservation {
	return domain.StatusObservation{OrderID: orderID, Status: status, ObservedAt: testNow, Source: "test"}
}

func TestObservationService_RecordsOncePerStatus(t *testing.T) {
	repo := &stubObservationRepo{}
	svc := NewObservationService(repo, &stubDedup{}, 0, zerolog.Nop())
	ctx := context.Background()

	for _, obs := range []domain.StatusObservation{
		observed(42, domain.StatusPreparing),
		observed(42, domain.StatusPreparing),
		observed(42, domain.StatusReady),
		observed(43, domain.StatusPreparing),
	} {
		if err := svc.Record(ctx, obs); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	if len(repo.inserted) != 3 {
		t.Fatalf("expected 3 inserts, got %d", len(repo.inserted))
	}
	got, _ := repo.ListByOrder(ctx, 42)
	if len(got) != 2 || got[1].Status != domain.StatusReady {
		t.Fatalf("unexpected observations for order 42: %+v", got)
	}
}

func TestObservationService_DedupFailureStillRecords(t *testing.T) {
	repo := &stubObservationRepo{}
	svc := NewObservationService(repo, &stubDedup{err: errors.New("redis down")}, 0, zerolog.Nop())

	if err := svc.Record(context.Background(), observed(42, domain.StatusPreparing)); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected observation to be stored, got %d", len(repo.inserted))
	}
}

func TestObservationService_WithoutDedup(t *testing.T) {
	repo := &stubObservationRepo{}
	svc := NewObservationService(repo, nil, 0, zerolog.Nop())

	_ = svc.Record(context.Background(), observed(42, domain.StatusPreparing))
	_ = svc.Record(context.Background(), observed(42, domain.StatusPreparing))

	if len(repo.inserted) != 2 {
		t.Fatalf("expected every observation to be stored, got %d", len(repo.inserted))
	}
}

func TestObservationService_RepositoryError(t *testing.T) {
	repoErr := errors.New("insert failed")
	svc := NewObservationService(&stubObservationRepo{insertErr: repoErr}, &stubDedup{}, 0, zerolog.Nop())

	err := svc.Record(context.Background(), observed(42, domain.StatusPreparing))
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestObservationService_RetriesAfterFailedInsert(t *testing.T) {
	repo := &stubObservationRepo{failNext: 1, transientErr: errors.New("mongo down")}
	dedup := &stubDedup{}
	svc := NewObservationService(repo, dedup, 0, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Record(ctx, observed(42, domain.StatusPreparing)); err == nil {
		t.Fatalf("expected first Record to fail")
	}
	if dedup.released != 1 {
		t.Fatalf("expected claim to be released, released=%d", dedup.released)
	}

	if err := svc.Record(ctx, observed(42, domain.StatusPreparing)); err != nil {
		t.Fatalf("second Record returned error: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected observation stored after recovery, got %d", len(repo.inserted))
	}

	// Once stored, the pair is deduplicated again.
	_ = svc.Record(ctx, observed(42, domain.StatusPreparing))
	if len(repo.inserted) != 1 {
		t.Fatalf("expected duplicate to be skipped, got %d inserts", len(repo.inserted))
	}
}
