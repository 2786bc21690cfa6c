package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"
	"rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type cartService struct {
	carts    repository.CartRepository
	itemRepo repository.ItemRepository
}

func NewCartService(carts repository.CartRepository, itemRepo repository.ItemRepository) CartService {
	return &cartService{carts: carts, itemRepo: itemRepo}
}

// Add puts quantity more units of an item in the cart. The resulting cart
// quantity may not exceed the item's visible stock.
func (s *cartService) Add(ctx context.Context, cartID string, itemID, quantity int32) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be greater than zero")
	}
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	inCart := cart.Items[itemID]
	if inCart+quantity > item.Quantity {
		return nil, domain.NewValidationError("quantity",
			fmt.Sprintf("only %d of %s available, %d already in cart", item.Quantity, item.Name, inCart))
	}
	cart.Items[itemID] = inCart + quantity

	if err := s.carts.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity replaces the cart quantity of an item; zero or less removes it.
func (s *cartService) SetQuantity(ctx context.Context, cartID string, itemID, quantity int32) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, cartID, itemID)
	}
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if quantity > item.Quantity {
		return nil, domain.NewValidationError("quantity",
			fmt.Sprintf("only %d of %s available", item.Quantity, item.Name))
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Items[itemID] = quantity
	if err := s.carts.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) Remove(ctx context.Context, cartID string, itemID int32) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.Items[itemID]; !ok {
		return cart, nil
	}
	delete(cart.Items, itemID)
	if err := s.carts.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// View prices the cart at current unit prices. Items deleted since they were
// added are dropped from the cart.
func (s *cartService) View(ctx context.Context, cartID string) (*domain.CartView, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{Lines: []domain.CartLine{}, Total: decimal.Zero}
	stale := false
	for itemID, qty := range cart.Items {
		item, err := s.itemRepo.GetByID(ctx, itemID)
		if errors.Is(err, domain.ErrNotFound) {
			delete(cart.Items, itemID)
			stale = true
			continue
		}
		if err != nil {
			return nil, err
		}
		subtotal := utils.Subtotal(item.UnitPrice, qty)
		view.Lines = append(view.Lines, domain.CartLine{Item: *item, Quantity: qty, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
		view.Count += qty
	}
	sort.Slice(view.Lines, func(i, j int) bool { return view.Lines[i].Item.Name < view.Lines[j].Item.Name })

	if stale {
		if err := s.carts.Save(ctx, cartID, cart); err != nil {
			logger.Warn("Failed to drop stale cart lines", "cart_id", cartID, "error", err)
		}
	}
	return view, nil
}

func (s *cartService) Count(ctx context.Context, cartID string) (int32, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

func (s *cartService) Clear(ctx context.Context, cartID string) error {
	return s.carts.Delete(ctx, cartID)
}
