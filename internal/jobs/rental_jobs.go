package jobs

import (
	"context"
	"errors"

	"rental-backend/internal/domain"
	"rental-backend/internal/events"
	"rental-backend/internal/logger"
	"rental-backend/internal/utils"
)

// CancelStalePending cancels Pending rentals whose event date passed more
// than the grace period ago. Cancelling goes through the ledger, so their
// stock is returned. A rental staff moved on since the listing is skipped.
func (jr *JobRunner) CancelStalePending() {
	jr.runWithRecovery("CancelStalePending", func() {
		ctx := context.Background()

		rentals, err := jr.rentals.List(ctx, domain.RentalFilter{Status: domain.RentalStatusPending})
		if err != nil {
			logger.Error("Failed to list pending rentals", "error", err)
			return
		}

		cutoff := utils.StartOfDay(jr.now().UTC()).AddDate(0, 0, -jr.config.Rentals.StalePendingGraceDays)
		count := 0
		for _, r := range rentals {
			if !r.EventDate.Before(cutoff) {
				continue
			}
			_, err := jr.services.Ledger.TransitionStatusFrom(ctx, r.ID, domain.RentalStatusPending, domain.RentalStatusCancelled)
			if errors.Is(err, domain.ErrStatusChanged) {
				logger.Info("Rental left Pending before it could be cancelled", "rental_id", r.ID)
				continue
			}
			if err != nil {
				logger.Error("Failed to cancel stale rental", "rental_id", r.ID, "error", err)
				continue
			}
			count++
			logger.Debug("Cancelled stale rental", "rental_id", r.ID, "event_date", r.EventDate.Format(utils.DateLayout))

			payload := events.RentalStatusChangedPayload{
				RentalID: r.ID,
				From:     string(domain.RentalStatusPending),
				To:       string(domain.RentalStatusCancelled),
			}
			if err := jr.services.Publisher.Publish(ctx, events.RKRentalStatusChanged, payload); err != nil {
				logger.Warn("Failed to publish status change", "rental_id", r.ID, "error", err)
			}
		}

		logger.Info("Cancelled stale pending rentals", "count", count)
	})
}

// SendTeardownReminders emails staff the Confirmed rentals that are torn
// down tomorrow.
func (jr *JobRunner) SendTeardownReminders() {
	jr.runWithRecovery("SendTeardownReminders", func() {
		ctx := context.Background()

		rentals, err := jr.rentals.List(ctx, domain.RentalFilter{Status: domain.RentalStatusConfirmed})
		if err != nil {
			logger.Error("Failed to list confirmed rentals", "error", err)
			return
		}

		tomorrow := utils.StartOfDay(jr.now().UTC()).AddDate(0, 0, 1).Format(utils.DateLayout)
		var due []domain.Rental
		for _, r := range rentals {
			if r.TeardownDate.Format(utils.DateLayout) == tomorrow {
				due = append(due, r)
			}
		}

		if len(due) == 0 {
			logger.Info("No teardowns due tomorrow")
			return
		}
		if err := jr.services.Email.SendTeardownReminder(ctx, due); err != nil {
			logger.Error("Failed to send teardown reminder", "error", err)
			return
		}
		logger.Info("Sent teardown reminder", "count", len(due))
	})
}

// SendOutOfStockDigest emails staff the items with no stock left and
// announces them on the event bus.
func (jr *JobRunner) SendOutOfStockDigest() {
	jr.runWithRecovery("SendOutOfStockDigest", func() {
		ctx := context.Background()

		items, err := jr.items.List(ctx, domain.ItemFilter{})
		if err != nil {
			logger.Error("Failed to list items", "error", err)
			return
		}

		var empty []domain.Item
		var ids []int32
		for _, it := range items {
			if it.Quantity <= 0 {
				empty = append(empty, it)
				ids = append(ids, it.ID)
			}
		}

		if len(empty) == 0 {
			logger.Info("All items in stock")
			return
		}
		if err := jr.services.Email.SendOutOfStockDigest(ctx, empty); err != nil {
			logger.Error("Failed to send out of stock digest", "error", err)
		}
		if err := jr.services.Publisher.Publish(ctx, events.RKStockDepleted, events.StockDepletedPayload{ItemIDs: ids}); err != nil {
			logger.Warn("Failed to publish out of stock event", "error", err)
		}
		logger.Info("Reported out of stock items", "count", len(empty))
	})
}
