package service

import (
	"context"
	"testing"
	"time"

	"rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedScenarioC builds a Pending rental holding 3 and 5 units of a 10 unit
// item, leaving 2 on hand.
func seedScenarioC(t *testing.T, store *memStore, ledger *ledgerService) (itemID, rentalID int32, lineIDs []int32) {
	t.Helper()
	ctx := context.Background()
	itemID = store.addItem("Kursi", "5.00", 10)
	rentalID = store.addRental(store.addCustomer("Budi", "0812"), domain.RentalStatusPending)
	for _, q := range []int32{3, 5} {
		line, err := ledger.CreateLine(ctx, rentalID, itemID, q)
		require.NoError(t, err)
		lineIDs = append(lineIDs, line.ID)
	}
	require.Equal(t, int32(2), store.stock(itemID))
	return itemID, rentalID, lineIDs
}

func staleLedger(tx *staleTx) *ledgerService {
	return &ledgerService{tx: tx, now: func() time.Time { return fixedNow }}
}

func TestLedger_OverlappingTerminalTransitionsReturnStockOnce(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)
	ctx := context.Background()
	itemID, rentalID, _ := seedScenarioC(t, store, ledger)

	// The second writer read the rental while it was still Pending.
	late := staleLedger(newStaleTx(store, rentalID))

	_, err := ledger.TransitionStatus(ctx, rentalID, domain.RentalStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int32(10), store.stock(itemID))

	_, err = late.TransitionStatus(ctx, rentalID, domain.RentalStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, int32(10), store.stock(itemID), "stock must come back only once")
	assert.Equal(t, int32(0), stockOutstanding(store, itemID))
}

func TestLedger_DeleteLineAfterCompletionKeepsStock(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)
	ctx := context.Background()
	itemID, rentalID, lineIDs := seedScenarioC(t, store, ledger)

	late := staleLedger(newStaleTx(store, rentalID))

	_, err := ledger.TransitionStatus(ctx, rentalID, domain.RentalStatusCompleted)
	require.NoError(t, err)

	require.NoError(t, late.DeleteLine(ctx, lineIDs[0]))
	assert.Equal(t, int32(10), store.stock(itemID))
	assertTotal(t, store, rentalID, "25.00")
}

func TestLedger_DeleteRentalAfterCancelKeepsStock(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)
	ctx := context.Background()
	itemID, rentalID, _ := seedScenarioC(t, store, ledger)

	late := staleLedger(newStaleTx(store, rentalID))

	_, err := ledger.TransitionStatus(ctx, rentalID, domain.RentalStatusCancelled)
	require.NoError(t, err)

	require.NoError(t, late.DeleteRental(ctx, rentalID))
	assert.Equal(t, int32(10), store.stock(itemID))
	assert.Empty(t, store.rentalLines(rentalID))
}

func TestLedger_TransitionStatusFrom(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)
	ctx := context.Background()
	itemID, rentalID, _ := seedScenarioC(t, store, ledger)

	t.Run("StatusMovedOn", func(t *testing.T) {
		_, err := ledger.TransitionStatus(ctx, rentalID, domain.RentalStatusConfirmed)
		require.NoError(t, err)

		_, err = ledger.TransitionStatusFrom(ctx, rentalID, domain.RentalStatusPending, domain.RentalStatusCancelled)
		assert.ErrorIs(t, err, domain.ErrStatusChanged)
		assert.Equal(t, domain.RentalStatusConfirmed, store.rentals[rentalID].Status)
		assert.Equal(t, int32(2), store.stock(itemID))
	})

	t.Run("StatusAsExpected", func(t *testing.T) {
		rental, err := ledger.TransitionStatusFrom(ctx, rentalID, domain.RentalStatusConfirmed, domain.RentalStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCancelled, rental.Status)
		assert.Equal(t, int32(10), store.stock(itemID))
	})

	t.Run("UnknownFrom", func(t *testing.T) {
		_, err := ledger.TransitionStatusFrom(ctx, rentalID, "LATE", domain.RentalStatusCancelled)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestLedger_Restock(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)
	ctx := context.Background()
	itemID := store.addItem("Kursi", "5.00", 10)

	item, err := ledger.Restock(ctx, itemID, 5, "new delivery")
	require.NoError(t, err)
	assert.Equal(t, int32(15), item.Quantity)

	item, err = ledger.Restock(ctx, itemID, -3, "lost at venue")
	require.NoError(t, err)
	assert.Equal(t, int32(12), item.Quantity)

	_, err = ledger.Restock(ctx, itemID, -13, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int32(12), store.stock(itemID))

	_, err = ledger.Restock(ctx, itemID, 0, "")
	assert.True(t, domain.IsValidation(err))

	_, err = ledger.Restock(ctx, 999, 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
