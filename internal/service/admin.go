package service

import (
	"context"
	"errors"
	"io"

	"rental-backend/internal/domain"
	"rental-backend/internal/events"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"
	"rental-backend/internal/storage"
	"rental-backend/internal/utils"
)

type adminService struct {
	ledger       LedgerService
	itemRepo     repository.ItemRepository
	customerRepo repository.CustomerRepository
	rentalRepo   repository.RentalRepository
	lineRepo     repository.RentalLineRepository
	photos       storage.PhotoStorage
	publisher    events.Publisher
}

func NewAdminService(
	ledger LedgerService,
	repos repository.Repos,
	photos storage.PhotoStorage,
	publisher events.Publisher,
) AdminService {
	return &adminService{
		ledger:       ledger,
		itemRepo:     repos.Items,
		customerRepo: repos.Customers,
		rentalRepo:   repos.Rentals,
		lineRepo:     repos.Lines,
		photos:       photos,
		publisher:    publisher,
	}
}

func (s *adminService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown status")
	}
	return s.rentalRepo.List(ctx, filter)
}

func (s *adminService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, []domain.RentalLine, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.lineRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	return rental, lines, nil
}

func (s *adminService) CreateRental(ctx context.Context, draft *domain.Rental, lines []domain.LineRequest) (*domain.Rental, error) {
	return s.ledger.OpenRental(ctx, draft, lines)
}

// UpdateRental saves the header fields of a rental together with a batch of
// line edits, in one transaction. Status is changed through ChangeStatus.
func (s *adminService) UpdateRental(ctx context.Context, header *domain.Rental, batch domain.LineBatch) (*domain.Rental, error) {
	if header.EventDate.IsZero() {
		return nil, domain.NewValidationError("event_date", "is required")
	}
	if header.DurationDays <= 0 {
		return nil, domain.NewValidationError("duration_days", "must be greater than zero")
	}

	var rental *domain.Rental
	err := s.ledger.Run(ctx, func(b *Book) error {
		repos := b.Repos()
		current, err := repos.Rentals.GetForUpdate(ctx, header.ID)
		if err != nil {
			return err
		}
		current.EventDate = header.EventDate
		current.DurationDays = header.DurationDays
		current.TeardownDate = utils.TeardownDate(header.EventDate, header.DurationDays)
		current.InstallAddress = header.InstallAddress
		current.Feedback = header.Feedback
		if err := repos.Rentals.Update(ctx, current); err != nil {
			return err
		}
		if !batch.Empty() {
			if _, err := b.BatchApply(ctx, header.ID, batch); err != nil {
				return err
			}
		}
		rental, err = repos.Rentals.GetByID(ctx, header.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *adminService) ApplyLines(ctx context.Context, rentalID int32, batch domain.LineBatch) (*domain.Rental, error) {
	return s.ledger.BatchApply(ctx, rentalID, batch)
}

func (s *adminService) AddLine(ctx context.Context, rentalID int32, req domain.LineRequest) (*domain.RentalLine, error) {
	return s.ledger.CreateLine(ctx, rentalID, req.ItemID, req.Quantity)
}

func (s *adminService) EditLine(ctx context.Context, edit domain.LineEdit) (*domain.RentalLine, error) {
	return s.ledger.UpdateLine(ctx, edit.LineID, edit.Quantity, edit.Condition)
}

func (s *adminService) RemoveLine(ctx context.Context, lineID int32) error {
	return s.ledger.DeleteLine(ctx, lineID)
}

func (s *adminService) ChangeStatus(ctx context.Context, rentalID int32, status domain.RentalStatus) (*domain.Rental, error) {
	var from domain.RentalStatus
	var rental *domain.Rental
	err := s.ledger.Run(ctx, func(b *Book) error {
		current, err := b.Repos().Rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		from = current.Status
		rental, err = b.TransitionStatus(ctx, rentalID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	if from != rental.Status {
		payload := events.RentalStatusChangedPayload{RentalID: rentalID, From: string(from), To: string(rental.Status)}
		if err := s.publisher.Publish(ctx, events.RKRentalStatusChanged, payload); err != nil {
			logger.Warn("Failed to publish status change", "rental_id", rentalID, "error", err)
		}
	}
	return rental, nil
}

func (s *adminService) DeleteRental(ctx context.Context, rentalID int32) error {
	if err := s.ledger.DeleteRental(ctx, rentalID); err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, events.RKRentalDeleted, events.RentalDeletedPayload{RentalID: rentalID}); err != nil {
		logger.Warn("Failed to publish rental deletion", "rental_id", rentalID, "error", err)
	}
	return nil
}

func (s *adminService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	items, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		withPhotoURL(s.photos, &items[i])
	}
	return items, nil
}

func (s *adminService) CreateItem(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(true); err != nil {
		return err
	}
	item.UnitPrice = item.UnitPrice.Round(utils.MoneyPlaces)
	return s.itemRepo.Create(ctx, item)
}

// UpdateItem edits catalog fields. On-hand quantity is owned by the ledger
// and is not written.
func (s *adminService) UpdateItem(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(false); err != nil {
		return err
	}
	item.UnitPrice = item.UnitPrice.Round(utils.MoneyPlaces)
	return s.itemRepo.Update(ctx, item)
}

// AdjustStock corrects on-hand stock through the ledger. delta is signed; a
// correction that would leave negative stock fails with
// domain.ErrInsufficientStock.
func (s *adminService) AdjustStock(ctx context.Context, itemID, delta int32, reason string) (*domain.Item, error) {
	item, err := s.ledger.Restock(ctx, itemID, delta, reason)
	if err != nil {
		return nil, err
	}
	if item.Quantity == 0 {
		payload := events.StockDepletedPayload{ItemIDs: []int32{itemID}}
		if err := s.publisher.Publish(ctx, events.RKStockDepleted, payload); err != nil {
			logger.Warn("Failed to publish out of stock event", "item_id", itemID, "error", err)
		}
	}
	withPhotoURL(s.photos, item)
	return item, nil
}

func (s *adminService) DeleteItem(ctx context.Context, itemID int32) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.ledger.Run(ctx, func(b *Book) error { return b.DeleteItem(ctx, itemID) }); err != nil {
		return err
	}
	if item.PhotoKey != "" && s.photos != nil {
		if err := s.photos.Delete(ctx, item.PhotoKey); err != nil {
			logger.Warn("Failed to delete item photo", "item_id", itemID, "error", err)
		}
	}
	return nil
}

func (s *adminService) UploadItemPhoto(ctx context.Context, itemID int32, contentType string, photo io.Reader) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	key, err := storage.NewPhotoKey(itemID, contentType)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return nil, domain.NewValidationError("photo", err.Error())
	}
	if err != nil {
		return nil, err
	}
	if err := s.photos.Save(ctx, key, photo); err != nil {
		return nil, err
	}
	if err := s.itemRepo.SetPhoto(ctx, itemID, key); err != nil {
		return nil, err
	}

	if old := item.PhotoKey; old != "" {
		if err := s.photos.Delete(ctx, old); err != nil {
			logger.Warn("Failed to delete replaced photo", "item_id", itemID, "key", old, "error", err)
		}
	}
	item.PhotoKey = key
	withPhotoURL(s.photos, item)
	return item, nil
}

func (s *adminService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customerRepo.List(ctx)
}
