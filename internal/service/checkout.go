package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/events"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"
	"rental-backend/internal/utils"
)

type checkoutService struct {
	ledger     LedgerService
	carts      repository.CartRepository
	itemRepo   repository.ItemRepository
	rentalRepo repository.RentalRepository
	lineRepo   repository.RentalLineRepository
	emailSvc   EmailService
	publisher  events.Publisher
	now        func() time.Time
}

func NewCheckoutService(
	ledger LedgerService,
	carts repository.CartRepository,
	itemRepo repository.ItemRepository,
	rentalRepo repository.RentalRepository,
	lineRepo repository.RentalLineRepository,
	emailSvc EmailService,
	publisher events.Publisher,
) CheckoutService {
	return &checkoutService{
		ledger:     ledger,
		carts:      carts,
		itemRepo:   itemRepo,
		rentalRepo: rentalRepo,
		lineRepo:   lineRepo,
		emailSvc:   emailSvc,
		publisher:  publisher,
		now:        time.Now,
	}
}

// Submit turns the customer's cart into a Pending rental. The total is the
// plain sum of unit price x quantity; duration does not multiply it.
func (s *checkoutService) Submit(ctx context.Context, customerID int32, cartID string, form domain.CheckoutForm) (*domain.Rental, error) {
	logger.EnterMethod("CheckoutService.Submit", "customer_id", customerID)

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, domain.ErrEmptyCart
	}

	draft, err := s.draftFromForm(customerID, form)
	if err != nil {
		return nil, err
	}

	requests := make([]domain.LineRequest, 0, len(cart.Items))
	for itemID, qty := range cart.Items {
		requests = append(requests, domain.LineRequest{ItemID: itemID, Quantity: qty})
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ItemID < requests[j].ItemID })

	// Fail early with the visible stock; the ledger re-checks atomically.
	for _, req := range requests {
		item, err := s.itemRepo.GetByID(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if req.Quantity > item.Quantity {
			return nil, &domain.StockError{ItemID: item.ID, Requested: req.Quantity}
		}
	}

	rental, err := s.ledger.OpenRental(ctx, draft, requests)
	if err != nil {
		logger.ExitMethodWithError("CheckoutService.Submit", err, "customer_id", customerID)
		return nil, err
	}

	if err := s.carts.Delete(ctx, cartID); err != nil {
		logger.Warn("Failed to clear cart after checkout", "cart_id", cartID, "error", err)
	}
	s.announce(ctx, rental)

	logger.ExitMethod("CheckoutService.Submit", "rental_id", rental.ID)
	return rental, nil
}

func (s *checkoutService) draftFromForm(customerID int32, form domain.CheckoutForm) (*domain.Rental, error) {
	eventDate, err := utils.ParseDate(form.EventDate)
	if err != nil {
		return nil, domain.NewValidationError("event_date", err.Error())
	}
	if eventDate.Before(utils.StartOfDay(s.now().UTC())) {
		return nil, domain.NewValidationError("event_date", "cannot be in the past")
	}
	if form.DurationDays <= 0 {
		return nil, domain.NewValidationError("duration_days", "must be greater than zero")
	}
	address := strings.TrimSpace(form.InstallAddress)
	if address == "" {
		return nil, domain.NewValidationError("install_address", "is required")
	}

	return &domain.Rental{
		CustomerID:     customerID,
		EventDate:      eventDate,
		DurationDays:   form.DurationDays,
		InstallAddress: address,
		Feedback:       strings.TrimSpace(form.Feedback),
		Status:         domain.RentalStatusPending,
	}, nil
}

// announce notifies staff and publishes rental.submitted. Failures are
// logged; the rental is already committed.
func (s *checkoutService) announce(ctx context.Context, rental *domain.Rental) {
	lines, err := s.lineRepo.ListByRental(ctx, rental.ID)
	if err != nil {
		logger.Warn("Failed to load lines for rental notice", "rental_id", rental.ID, "error", err)
		return
	}

	if err := s.emailSvc.SendNewRentalNotice(ctx, rental, lines); err != nil {
		logger.Warn("Failed to send new rental notice", "rental_id", rental.ID, "error", err)
	}

	payload := events.RentalSubmittedPayload{
		RentalID:     rental.ID,
		CustomerID:   rental.CustomerID,
		EventDate:    rental.EventDate,
		DurationDays: rental.DurationDays,
		TotalCharge:  rental.TotalCharge.Decimal,
	}
	for _, l := range lines {
		payload.Lines = append(payload.Lines, events.RentalLinePayload{
			ItemID:   l.ItemID,
			ItemName: l.ItemName,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal,
		})
	}
	if err := s.publisher.Publish(ctx, events.RKRentalSubmitted, payload); err != nil {
		logger.Warn("Failed to publish rental.submitted", "rental_id", rental.ID, "error", err)
	}
}

func (s *checkoutService) ListMyRentals(ctx context.Context, customerID int32) ([]domain.Rental, error) {
	return s.rentalRepo.List(ctx, domain.RentalFilter{CustomerID: customerID})
}

// GetMyRental hides other customers' rentals behind a not-found error.
func (s *checkoutService) GetMyRental(ctx context.Context, customerID, rentalID int32) (*domain.Rental, []domain.RentalLine, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	if rental.CustomerID != customerID {
		return nil, nil, domain.NewReferenceError("rental", rentalID)
	}
	lines, err := s.lineRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	return rental, lines, nil
}
