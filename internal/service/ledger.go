package service

import (
	"context"
	"fmt"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"
	"rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type ledgerService struct {
	tx  repository.Transactor
	now func() time.Time
}

func NewLedgerService(tx repository.Transactor) LedgerService {
	return &ledgerService{tx: tx, now: time.Now}
}

// Run executes fn against a Book bound to a single transaction. The
// transaction commits only if fn returns nil.
func (s *ledgerService) Run(ctx context.Context, fn func(book *Book) error) error {
	return s.tx.WithinTx(ctx, func(repos repository.Repos) error {
		return fn(&Book{repos: repos, now: s.now})
	})
}

func (s *ledgerService) CreateLine(ctx context.Context, rentalID, itemID, quantity int32) (*domain.RentalLine, error) {
	var line *domain.RentalLine
	err := s.Run(ctx, func(b *Book) error {
		var err error
		line, err = b.CreateLine(ctx, rentalID, itemID, quantity)
		return err
	})
	return line, err
}

func (s *ledgerService) UpdateLine(ctx context.Context, lineID, quantity int32, condition domain.LineCondition) (*domain.RentalLine, error) {
	var line *domain.RentalLine
	err := s.Run(ctx, func(b *Book) error {
		var err error
		line, err = b.UpdateLine(ctx, lineID, quantity, condition)
		return err
	})
	return line, err
}

func (s *ledgerService) DeleteLine(ctx context.Context, lineID int32) error {
	return s.Run(ctx, func(b *Book) error {
		return b.DeleteLine(ctx, lineID)
	})
}

func (s *ledgerService) RecomputeTotal(ctx context.Context, rentalID int32) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.Run(ctx, func(b *Book) error {
		var err error
		total, err = b.RecomputeTotal(ctx, rentalID)
		return err
	})
	return total, err
}

func (s *ledgerService) TransitionStatus(ctx context.Context, rentalID int32, status domain.RentalStatus) (*domain.Rental, error) {
	logger.EnterMethod("LedgerService.TransitionStatus", "rental_id", rentalID, "status", status)

	var rental *domain.Rental
	err := s.Run(ctx, func(b *Book) error {
		var err error
		rental, err = b.TransitionStatus(ctx, rentalID, status)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("LedgerService.TransitionStatus", err, "rental_id", rentalID)
		return nil, err
	}

	logger.ExitMethod("LedgerService.TransitionStatus", "rental_id", rentalID)
	return rental, nil
}

// TransitionStatusFrom is TransitionStatus that only applies while the
// rental is still in from. Otherwise it fails with domain.ErrStatusChanged.
func (s *ledgerService) TransitionStatusFrom(ctx context.Context, rentalID int32, from, to domain.RentalStatus) (*domain.Rental, error) {
	var rental *domain.Rental
	err := s.Run(ctx, func(b *Book) error {
		var err error
		rental, err = b.TransitionStatusFrom(ctx, rentalID, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *ledgerService) Restock(ctx context.Context, itemID, delta int32, reason string) (*domain.Item, error) {
	var item *domain.Item
	err := s.Run(ctx, func(b *Book) error {
		var err error
		item, err = b.Restock(ctx, itemID, delta, reason)
		return err
	})
	return item, err
}

func (s *ledgerService) BatchApply(ctx context.Context, rentalID int32, batch domain.LineBatch) (*domain.Rental, error) {
	logger.EnterMethod("LedgerService.BatchApply", "rental_id", rentalID,
		"creates", len(batch.Create), "updates", len(batch.Update), "deletes", len(batch.Delete))

	var rental *domain.Rental
	err := s.Run(ctx, func(b *Book) error {
		var err error
		rental, err = b.BatchApply(ctx, rentalID, batch)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("LedgerService.BatchApply", err, "rental_id", rentalID)
		return nil, err
	}

	logger.ExitMethod("LedgerService.BatchApply", "rental_id", rentalID, "total", rental.TotalCharge.Decimal.StringFixed(2))
	return rental, nil
}

func (s *ledgerService) OpenRental(ctx context.Context, draft *domain.Rental, lines []domain.LineRequest) (*domain.Rental, error) {
	err := s.Run(ctx, func(b *Book) error {
		return b.OpenRental(ctx, draft, lines)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *ledgerService) DeleteRental(ctx context.Context, rentalID int32) error {
	return s.Run(ctx, func(b *Book) error {
		return b.DeleteRental(ctx, rentalID)
	})
}

// Book applies ledger rules against repositories bound to one transaction.
// Nothing it does is visible to other callers until the transaction commits.
//
// Every operation that reads a rental's lines first locks the rental row, so
// writers of one rental are serialized. Lock order is rental, then line, then
// item.
type Book struct {
	repos repository.Repos
	now   func() time.Time
}

// Repos exposes the transaction-bound repositories for work that has no
// stock or total effect, such as editing a rental header.
func (b *Book) Repos() repository.Repos {
	return b.repos
}

func (b *Book) CreateLine(ctx context.Context, rentalID, itemID, quantity int32) (*domain.RentalLine, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be greater than zero")
	}
	rental, err := b.repos.Rentals.GetForUpdate(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	line, err := b.addLine(ctx, rental, itemID, quantity)
	if err != nil {
		return nil, err
	}
	if _, err := b.RecomputeTotal(ctx, rentalID); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateLine changes quantity and, when non-empty, condition. The problem
// count policy is not applied here.
func (b *Book) UpdateLine(ctx context.Context, lineID, quantity int32, condition domain.LineCondition) (*domain.RentalLine, error) {
	if err := validateEdit(quantity, condition); err != nil {
		return nil, err
	}
	line, err := b.lockLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if condition == "" {
		condition = line.Condition
	}
	if err := b.editLine(ctx, line, quantity, condition); err != nil {
		return nil, err
	}
	if _, err := b.RecomputeTotal(ctx, line.RentalID); err != nil {
		return nil, err
	}
	return line, nil
}

func (b *Book) DeleteLine(ctx context.Context, lineID int32) error {
	line, err := b.lockLine(ctx, lineID)
	if err != nil {
		return err
	}
	if err := b.removeLine(ctx, line); err != nil {
		return err
	}
	_, err = b.RecomputeTotal(ctx, line.RentalID)
	return err
}

// RecomputeTotal writes the sum of line subtotals to the rental. A rental
// without lines gets 0.00.
func (b *Book) RecomputeTotal(ctx context.Context, rentalID int32) (decimal.Decimal, error) {
	total, lines, err := b.repos.Lines.SumSubtotals(ctx, rentalID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum rental lines: %w", err)
	}
	if err := b.repos.Rentals.SetTotalCharge(ctx, rentalID, total); err != nil {
		return decimal.Zero, err
	}
	logger.Debug("Rental total recomputed", "rental_id", rentalID, "lines", lines, "total", total.StringFixed(2))
	return total, nil
}

// TransitionStatus moves a rental to status. Entering Completed or Cancelled
// returns every line's outstanding stock; both are final.
func (b *Book) TransitionStatus(ctx context.Context, rentalID int32, status domain.RentalStatus) (*domain.Rental, error) {
	return b.transition(ctx, rentalID, "", status)
}

// TransitionStatusFrom moves a rental to status only if it is currently in
// from, as read under the rental lock.
func (b *Book) TransitionStatusFrom(ctx context.Context, rentalID int32, from, status domain.RentalStatus) (*domain.Rental, error) {
	if !from.Valid() {
		return nil, domain.NewValidationError("from", fmt.Sprintf("unknown status %q", from))
	}
	return b.transition(ctx, rentalID, from, status)
}

func (b *Book) transition(ctx context.Context, rentalID int32, from, status domain.RentalStatus) (*domain.Rental, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	rental, err := b.repos.Rentals.GetForUpdate(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if from != "" && rental.Status != from {
		return nil, fmt.Errorf("%w: rental %d is %s, expected %s", domain.ErrStatusChanged, rentalID, rental.Status, from)
	}
	if rental.Status == status {
		return rental, nil
	}
	if rental.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, rental.Status, status)
	}

	if err := b.repos.Rentals.UpdateStatus(ctx, rentalID, status); err != nil {
		return nil, err
	}
	if status.Terminal() {
		if err := b.returnStock(ctx, rentalID, "rental "+string(status)); err != nil {
			return nil, err
		}
	}

	logger.Info("Rental status changed", "rental_id", rentalID, "from", rental.Status, "to", status)
	rental.Status = status
	return rental, nil
}

// BatchApply applies a full edit of a rental's lines: deletions first, then
// updates under the problem count policy, then new lines. The total is
// recomputed once at the end.
func (b *Book) BatchApply(ctx context.Context, rentalID int32, batch domain.LineBatch) (*domain.Rental, error) {
	if err := validateBatch(batch); err != nil {
		return nil, err
	}
	rental, err := b.repos.Rentals.GetForUpdate(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	for _, lineID := range batch.Delete {
		line, err := b.lineOf(ctx, rentalID, lineID)
		if err != nil {
			return nil, err
		}
		if err := b.removeLine(ctx, line); err != nil {
			return nil, err
		}
	}

	for _, edit := range batch.Update {
		line, err := b.lineOf(ctx, rentalID, edit.LineID)
		if err != nil {
			return nil, err
		}
		condition := edit.Condition
		if condition == "" {
			condition = line.Condition
		}
		line.ProblemCount = edit.ProblemCount
		if err := b.editLine(ctx, line, edit.Quantity, domain.ApplyProblemPolicy(condition, edit.ProblemCount)); err != nil {
			return nil, err
		}
	}

	for _, req := range batch.Create {
		if _, err := b.addLine(ctx, rental, req.ItemID, req.Quantity); err != nil {
			return nil, err
		}
	}

	total, err := b.RecomputeTotal(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	rental.TotalCharge = decimal.NewNullDecimal(total)
	return rental, nil
}

// OpenRental creates draft and its lines. On return draft carries the new
// id, order date, teardown date and total.
func (b *Book) OpenRental(ctx context.Context, draft *domain.Rental, lines []domain.LineRequest) error {
	if err := validateDraft(draft); err != nil {
		return err
	}
	for _, req := range lines {
		if req.Quantity <= 0 {
			return domain.NewValidationError("quantity", "must be greater than zero")
		}
	}
	if _, err := b.repos.Customers.GetByID(ctx, draft.CustomerID); err != nil {
		return err
	}

	if draft.Status == "" {
		draft.Status = domain.RentalStatusPending
	}
	draft.OrderedOn = b.now()
	draft.TeardownDate = utils.TeardownDate(draft.EventDate, draft.DurationDays)
	draft.TotalCharge = decimal.NullDecimal{}
	if err := b.repos.Rentals.Create(ctx, draft); err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}

	for _, req := range lines {
		if _, err := b.addLine(ctx, draft, req.ItemID, req.Quantity); err != nil {
			return err
		}
	}

	total, err := b.RecomputeTotal(ctx, draft.ID)
	if err != nil {
		return err
	}
	draft.TotalCharge = decimal.NewNullDecimal(total)
	logger.Info("Rental opened", "rental_id", draft.ID, "customer_id", draft.CustomerID,
		"lines", len(lines), "total", total.StringFixed(2))
	return nil
}

// DeleteRental returns outstanding stock and removes the rental with its lines.
func (b *Book) DeleteRental(ctx context.Context, rentalID int32) error {
	if _, err := b.repos.Rentals.GetForUpdate(ctx, rentalID); err != nil {
		return err
	}
	if err := b.returnStock(ctx, rentalID, "rental deleted"); err != nil {
		return err
	}
	return b.repos.Rentals.Delete(ctx, rentalID)
}

// DeleteItem removes an item. Its lines cascade away, so the totals of the
// rentals that held them are recomputed.
func (b *Book) DeleteItem(ctx context.Context, itemID int32) error {
	rentalIDs, err := b.repos.Lines.RentalIDsByItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := b.repos.Items.Delete(ctx, itemID); err != nil {
		return err
	}
	for _, id := range rentalIDs {
		if _, err := b.RecomputeTotal(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Restock corrects an item's on-hand stock by delta, for units bought,
// found, lost or written off outside any rental.
func (b *Book) Restock(ctx context.Context, itemID, delta int32, reason string) (*domain.Item, error) {
	if delta == 0 {
		return nil, domain.NewValidationError("delta", "must not be zero")
	}
	if reason == "" {
		reason = "manual adjustment"
	}
	if err := b.adjust(ctx, itemID, delta, "restock: "+reason); err != nil {
		return nil, err
	}
	return b.repos.Items.GetByID(ctx, itemID)
}

func (b *Book) addLine(ctx context.Context, rental *domain.Rental, itemID, quantity int32) (*domain.RentalLine, error) {
	if rental.Status.Terminal() {
		return nil, domain.NewValidationError("rental", fmt.Sprintf("is %s and cannot take new lines", rental.Status))
	}
	item, err := b.repos.Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := b.adjust(ctx, itemID, -quantity, "line created"); err != nil {
		return nil, err
	}

	line := &domain.RentalLine{
		RentalID:  rental.ID,
		ItemID:    itemID,
		ItemName:  item.Name,
		Quantity:  quantity,
		Condition: domain.LineConditionGood,
		Subtotal:  utils.Subtotal(item.UnitPrice, quantity),
	}
	if err := b.repos.Lines.Create(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to create rental line: %w", err)
	}
	return line, nil
}

// editLine prices the line from the item's current unit price. Stock moves
// by old minus new quantity unless it was already returned.
func (b *Book) editLine(ctx context.Context, line *domain.RentalLine, quantity int32, condition domain.LineCondition) error {
	item, err := b.repos.Items.GetByID(ctx, line.ItemID)
	if err != nil {
		return err
	}
	if line.StockOutstanding() {
		if err := b.adjust(ctx, line.ItemID, line.Quantity-quantity, "line updated"); err != nil {
			return err
		}
	}

	line.Quantity = quantity
	line.Condition = condition
	line.Subtotal = utils.Subtotal(item.UnitPrice, quantity)
	if err := b.repos.Lines.Update(ctx, line); err != nil {
		return fmt.Errorf("failed to update rental line: %w", err)
	}
	return nil
}

func (b *Book) removeLine(ctx context.Context, line *domain.RentalLine) error {
	if line.StockOutstanding() {
		if err := b.giveBack(ctx, line, "line deleted"); err != nil {
			return err
		}
	}
	return b.repos.Lines.Delete(ctx, line.ID)
}

func (b *Book) returnStock(ctx context.Context, rentalID int32, reason string) error {
	lines, err := b.repos.Lines.ListByRental(ctx, rentalID)
	if err != nil {
		return fmt.Errorf("failed to list rental lines: %w", err)
	}
	for i := range lines {
		line := &lines[i]
		if !line.StockOutstanding() {
			continue
		}
		if err := b.giveBack(ctx, line, reason); err != nil {
			return err
		}
	}
	return nil
}

// giveBack stamps the line returned and only then returns its stock. A line
// someone else already stamped is left alone.
func (b *Book) giveBack(ctx context.Context, line *domain.RentalLine, reason string) error {
	now := b.now()
	claimed, err := b.repos.Lines.MarkStockReturned(ctx, line.ID, now)
	if err != nil {
		return fmt.Errorf("failed to mark stock returned: %w", err)
	}
	if !claimed {
		logger.Warn("Stock already returned", "line_id", line.ID, "rental_id", line.RentalID)
		return nil
	}
	line.StockReturnedOn = &now
	return b.adjust(ctx, line.ItemID, line.Quantity, reason)
}

func (b *Book) adjust(ctx context.Context, itemID, delta int32, reason string) error {
	if delta == 0 {
		return nil
	}
	onHand, err := b.repos.Items.AdjustQuantity(ctx, itemID, delta)
	if err != nil {
		return err
	}
	logger.StockAdjusted(itemID, delta, onHand, reason)
	return nil
}

// lockLine locks the rental that owns lineID, then the line itself, and
// returns the line as read under both locks.
func (b *Book) lockLine(ctx context.Context, lineID int32) (*domain.RentalLine, error) {
	peek, err := b.repos.Lines.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if _, err := b.repos.Rentals.GetForUpdate(ctx, peek.RentalID); err != nil {
		return nil, err
	}
	return b.repos.Lines.GetForUpdate(ctx, lineID)
}

// lineOf loads a line of a rental that is already locked and checks it
// belongs to that rental.
func (b *Book) lineOf(ctx context.Context, rentalID, lineID int32) (*domain.RentalLine, error) {
	line, err := b.repos.Lines.GetForUpdate(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.RentalID != rentalID {
		return nil, domain.NewValidationError("line_id", fmt.Sprintf("line %d does not belong to rental %d", lineID, rentalID))
	}
	return line, nil
}

func validateEdit(quantity int32, condition domain.LineCondition) error {
	if quantity <= 0 {
		return domain.NewValidationError("quantity", "must be greater than zero")
	}
	if condition != "" && !condition.Valid() {
		return domain.NewValidationError("condition", fmt.Sprintf("unknown condition %q", condition))
	}
	return nil
}

func validateBatch(batch domain.LineBatch) error {
	for _, req := range batch.Create {
		if req.Quantity <= 0 {
			return domain.NewValidationError("quantity", "must be greater than zero")
		}
	}
	for _, edit := range batch.Update {
		if err := validateEdit(edit.Quantity, edit.Condition); err != nil {
			return err
		}
		if edit.ProblemCount < 0 {
			return domain.NewValidationError("problem_count", "must not be negative")
		}
	}
	return nil
}

func validateDraft(draft *domain.Rental) error {
	if draft.EventDate.IsZero() {
		return domain.NewValidationError("event_date", "is required")
	}
	if draft.DurationDays <= 0 {
		return domain.NewValidationError("duration_days", "must be greater than zero")
	}
	switch draft.Status {
	case "", domain.RentalStatusPending, domain.RentalStatusConfirmed:
	default:
		return domain.NewValidationError("status", "a new rental must be pending or confirmed")
	}
	return nil
}
