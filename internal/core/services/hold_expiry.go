package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
	"github.com/ingressolabs/ticketsales/internal/monitoring"
)

const expiryBatchSize = 100

// RunHoldExpiry periodically cancels pending purchases whose reservation
// hold has outlived the configured timeout and releases their tickets. This
// is also the reconciliation path for purchases stranded pending by a
// transient gateway failure.
func (s *PurchaseService) RunHoldExpiry(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	log.Printf("Hold-expiry sweeper started: canceling pending purchases older than %s", s.holdTimeout)

	for {
		select {
		case <-ctx.Done():
			log.Println("Hold-expiry sweeper stopped")
			return
		case <-ticker.C:
			s.ExpireStaleHolds(ctx)
		}
	}
}

// ExpireStaleHolds runs one sweep pass. Exposed so an operator endpoint or a
// test can trigger a sweep without waiting for the ticker.
func (s *PurchaseService) ExpireStaleHolds(ctx context.Context) {
	ids, err := s.purchases.FindStalePending(ctx, s.holdTimeout, expiryBatchSize)
	if err != nil {
		log.Printf("Error fetching stale pending purchases: %v", err)
		return
	}

	if len(ids) == 0 {
		return
	}

	log.Printf("Found %d stale pending purchases, expiring holds...", len(ids))

	expired := 0
	for _, id := range ids {
		if err := s.expireHold(ctx, id); err != nil {
			if errors.Is(err, domain.ErrStateConflict) {
				// Lost the race against a concluding charge; the
				// conditional updates already protected the purchase.
				continue
			}
			log.Printf("Failed to expire hold for purchase %s: %v", id, err)
			continue
		}
		expired++
	}

	if expired > 0 {
		monitoring.TrackHoldExpired(expired)
		log.Printf("Expired %d purchase holds", expired)
	}
}

func (s *PurchaseService) expireHold(ctx context.Context, id uuid.UUID) error {
	purchase, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return err
	}

	tickets, err := s.tickets.FindByIDs(ctx, purchase.TicketIDs)
	if err != nil {
		return err
	}

	err = s.txr.RunInTx(ctx, func(tx ports.Tx) error {
		if err := s.purchases.Advance(ctx, tx, id, domain.PurchasePending, domain.PurchaseCanceled); err != nil {
			return err
		}
		return s.tickets.Release(ctx, tx, purchase.TicketIDs)
	})
	if err != nil {
		return err
	}

	s.invalidateEvents(ctx, tickets)
	return nil
}
